// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stats

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/metrics"
	"github.com/matt-FFFFFF/mapfbatch/internal/scenario"
	"github.com/spf13/afero"
)

// ErrNoAgentCount is recorded for result files whose name carries no agent count.
var ErrNoAgentCount = errors.New("result file name has no agent count")

// Problem is a result file that could not contribute samples.
type Problem struct {
	Path string
	Err  error
}

// LoadReport describes what Load found.
type LoadReport struct {
	Groups   int
	Files    int
	Loaded   int
	Problems []Problem
}

// Err combines every problem into one error, or returns nil.
func (r LoadReport) Err() error {
	var result *multierror.Error

	for _, p := range r.Problems {
		result = multierror.Append(result, fmt.Errorf("%s: %w", p.Path, p.Err))
	}

	return result.ErrorOrNil()
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Lines is the statistics prefix length passed to ReadStatistics.
	Lines int
	// Metrics restricts the samples returned. Empty means every metric.
	Metrics []metrics.Metric
}

// Load reads every result file of layout's solver below root and returns one sample
// per (file, metric). Files that cannot be read or named are logged and skipped.
func Load(ctx context.Context, fsys afero.Fs, root string, layout scenario.Layout, opts LoadOptions) (metrics.Samples, LoadReport, error) {
	var (
		samples metrics.Samples
		report  LoadReport
	)

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, report, errors.Join(scenario.ErrNotFound, err)
	}

	if !info.IsDir() {
		return nil, report, fmt.Errorf("%w: %s", scenario.ErrNotDir, root)
	}

	entries, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, report, errors.Join(scenario.ErrList, err)
	}

	wanted := opts.Metrics
	if len(wanted) == 0 {
		wanted = metrics.All
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return samples, report, ctx.Err()
		}

		if !e.IsDir() || e.Name()[0] == '.' {
			continue
		}

		dir := layout.OutputDir(filepath.Join(root, e.Name()))

		files, err := afero.Glob(fsys, filepath.Join(dir, layout.OutputGlob()))
		if err != nil || len(files) == 0 {
			continue
		}

		report.Groups++
		st := scenario.ScenarioType(e.Name())

		slices.SortFunc(files, scenario.NaturalCompare)

		for _, path := range files {
			report.Files++

			agents, ok := scenario.AgentCount(filepath.Base(path))
			if !ok {
				report.Problems = append(report.Problems, Problem{Path: path, Err: ErrNoAgentCount})
				ctxlog.Warn(ctx, "skipping result without agent count", "path", path)

				continue
			}

			values, err := ReadStatistics(fsys, path, opts.Lines)
			if err != nil {
				report.Problems = append(report.Problems, Problem{Path: path, Err: err})
				ctxlog.Warn(ctx, "skipping unreadable result", "path", path, "error", err.Error())

				continue
			}

			report.Loaded++

			for _, m := range wanted {
				v, ok := values[m]
				if !ok {
					continue
				}

				samples = append(samples, metrics.Sample{
					Metric:       m,
					ScenarioType: st,
					Agents:       agents,
					Value:        v,
				})
			}
		}
	}

	ctxlog.Debug(ctx, "loaded results",
		"groups", report.Groups, "files", report.Files, "loaded", report.Loaded, "samples", len(samples))

	return samples, report, nil
}
