// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package summary

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// ErrReadFailure is returned when a summary file cannot be read or parsed.
var ErrReadFailure = errors.New("failed to read summary")

// Summary is the content of one summary file.
type Summary struct {
	ScenarioType string
	Rows         []Row
}

// Read parses a summary file. Rows are sorted by agent count and fields by key.
func Read(fsys afero.Fs, path string) (Summary, error) {
	s := Summary{ScenarioType: scenarioTypeFromFile(filepath.Base(path))}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return s, errors.Join(ErrReadFailure, err)
	}

	var raw map[int]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return s, fmt.Errorf("%w: %s: %w", ErrReadFailure, path, err)
	}

	for _, n := range slices.Sorted(maps.Keys(raw)) {
		r := Row{Agents: n}

		for _, k := range slices.Sorted(maps.Keys(raw[n])) {
			v, ok := number(raw[n][k])
			if !ok {
				continue
			}

			r.Fields = append(r.Fields, Field{Key: k, Value: v})
		}

		s.Rows = append(s.Rows, r)
	}

	return s, nil
}

// ReadDir reads every summary file in dir, sorted by scenario type.
func ReadDir(fsys afero.Fs, dir string) ([]Summary, error) {
	paths, err := afero.Glob(fsys, filepath.Join(dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, errors.Join(ErrReadFailure, err)
	}

	slices.Sort(paths)

	out := make([]Summary, 0, len(paths))

	for _, p := range paths {
		s, err := Read(fsys, p)
		if err != nil {
			return out, err
		}

		out = append(out, s)
	}

	return out, nil
}

func scenarioTypeFromFile(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
