// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package compare contains the compare subcommand, which prints summaries of several solvers side by side.
package compare

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/metrics"
	"github.com/matt-FFFFFF/mapfbatch/internal/summary"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	dirArg      = "dir"
	metricsFlag = "metrics"
	solversFlag = "solvers"
	cliExitStr  = ""
)

// FsFactory returns the filesystem summaries are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// CompareCmd is the command that compares the summaries of several solvers.
var CompareCmd = newCmd()

func newCmd() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Compare the summaries of several solvers",
		Description: `Read the global_averages_<type>.yaml files from every subdirectory of ANALYSIS_DIR,
one subdirectory per solver as written by 'mapfbatch aggregate --out ANALYSIS_DIR/<solver>',
and print each metric as a table with one column per solver.`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      dirArg,
				UsageText: "ANALYSIS_DIR",
			},
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    metricsFlag,
				Aliases: []string{"m"},
				Usage:   "Metrics to compare, by name or summary key",
				Value:   []string{metrics.Cost.AverageKey(), metrics.Makespan.AverageKey()},
			},
			&cli.StringSliceFlag{
				Name:  solversFlag,
				Usage: "Only compare these solver subdirectories. Defaults to all",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	dir := cmd.StringArg(dirArg)
	if dir == "" {
		logger.Error("Please specify the analysis directory.")
		return cli.Exit(cliExitStr, 1)
	}

	keys, err := summaryKeys(cmd.StringSlice(metricsFlag))
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	bySolver, err := load(FsFactory(), dir, cmd.StringSlice(solversFlag))
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if len(bySolver) == 0 {
		logger.Warn(fmt.Sprintf("No summaries found below %s", dir))
		return nil
	}

	w := cmd.Root().Writer

	for i, key := range keys {
		if i > 0 {
			fmt.Fprintln(w) //nolint:errcheck
		}

		if err := summary.PrintComparison(w, key, bySolver); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	return nil
}

// summaryKeys maps metric names to average keys. Other summary keys pass through.
func summaryKeys(names []string) ([]string, error) {
	keys := make([]string, 0, len(names))

	for _, n := range names {
		switch m, err := metrics.Parse(n); {
		case err == nil:
			keys = append(keys, m.AverageKey())
		case n == summary.NumScenariosKey || isExtraKey(n):
			keys = append(keys, n)
		default:
			return nil, err
		}
	}

	return keys, nil
}

func isExtraKey(key string) bool {
	rest, ok := strings.CutPrefix(key, "solved_under_")
	if !ok {
		return false
	}

	th, err := strconv.ParseFloat(strings.TrimSuffix(rest, "s"), 64)

	return err == nil && summary.FastKey(th) == key
}

// load reads the summaries of every solver subdirectory of dir.
func load(fsys afero.Fs, dir string, only []string) (map[string][]summary.Summary, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	out := make(map[string][]summary.Summary)

	for _, e := range entries {
		if !e.IsDir() || (len(only) > 0 && !slices.Contains(only, e.Name())) {
			continue
		}

		summaries, err := summary.ReadDir(fsys, filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}

		if len(summaries) > 0 {
			out[e.Name()] = summaries
		}
	}

	return out, nil
}
