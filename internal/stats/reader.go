// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/mapfbatch/internal/metrics"
	"github.com/spf13/afero"
)

// DefaultLines is the number of leading lines that hold the statistics block.
const DefaultLines = 6

var (
	// ErrRead is returned when the result file cannot be opened or read.
	ErrRead = errors.New("failed to read result file")
	// ErrMalformedResult is returned when the leading lines are not valid YAML.
	ErrMalformedResult = errors.New("malformed result file")
	// ErrNoStatistics is returned when the leading lines hold no usable statistics block.
	ErrNoStatistics = errors.New("no statistics block in result file")
)

type resultHeader struct {
	Statistics map[string]any `yaml:"statistics"`
}

// ReadStatistics parses the statistics block from the first maxLines lines of path.
// Fields that are not numeric or do not name a known metric are ignored.
// On error the returned map is empty, never nil.
func ReadStatistics(fsys afero.Fs, path string, maxLines int) (map[metrics.Metric]float64, error) {
	out := make(map[metrics.Metric]float64)

	if maxLines <= 0 {
		maxLines = DefaultLines
	}

	prefix, err := readPrefix(fsys, path, maxLines)
	if err != nil {
		return out, errors.Join(ErrRead, err)
	}

	var hdr resultHeader
	if err := yaml.Unmarshal(prefix, &hdr); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrMalformedResult, path, err)
	}

	for k, v := range hdr.Statistics {
		m, err := metrics.Parse(k)
		if err != nil {
			continue
		}

		f, ok := toFloat(v)
		if !ok {
			continue
		}

		out[m] = f
	}

	if len(out) == 0 {
		return out, fmt.Errorf("%w: %s", ErrNoStatistics, path)
	}

	return out, nil
}

func readPrefix(fsys afero.Fs, path string, maxLines int) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var buf bytes.Buffer

	sc := bufio.NewScanner(f)
	for i := 0; i < maxLines && sc.Scan(); i++ {
		buf.Write(sc.Bytes())
		buf.WriteByte('\n')
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
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
