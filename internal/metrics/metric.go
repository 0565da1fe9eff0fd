// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// Metric is one of the statistics reported by the solver.
type Metric int

const (
	// Cost is the sum of path costs over all agents.
	Cost Metric = iota
	// Makespan is the length of the longest agent path.
	Makespan
	// Runtime is the solver's self-reported wall clock time in seconds.
	Runtime
	// HighLevelExpanded is the number of nodes expanded by the high level search.
	HighLevelExpanded
	// LowLevelExpanded is the number of nodes expanded by the low level search.
	LowLevelExpanded
)

const (
	costStr              = "cost"
	makespanStr          = "makespan"
	runtimeStr           = "runtime"
	highLevelExpandedStr = "highLevelExpanded"
	lowLevelExpandedStr  = "lowLevelExpanded"
	unknownStr           = "unknown"
)

// ErrUnknownMetric is returned when a metric name is not part of the fixed set.
var ErrUnknownMetric = errors.New("unknown metric")

// All lists every metric in reporting order.
var All = []Metric{Cost, Makespan, Runtime, HighLevelExpanded, LowLevelExpanded}

// String returns the name the solver uses for the metric in its statistics block.
func (m Metric) String() string {
	switch m {
	case Cost:
		return costStr
	case Makespan:
		return makespanStr
	case Runtime:
		return runtimeStr
	case HighLevelExpanded:
		return highLevelExpandedStr
	case LowLevelExpanded:
		return lowLevelExpandedStr
	default:
		return unknownStr
	}
}

// Valid reports whether m is one of the known metrics.
func (m Metric) Valid() bool {
	return m >= Cost && m <= LowLevelExpanded
}

// Parse returns the metric with the given statistics block name.
// Names are matched exactly; an `average_` prefix is accepted and ignored.
func Parse(s string) (Metric, error) {
	switch strings.TrimPrefix(s, averagePrefix) {
	case costStr:
		return Cost, nil
	case makespanStr:
		return Makespan, nil
	case runtimeStr:
		return Runtime, nil
	case highLevelExpandedStr:
		return HighLevelExpanded, nil
	case lowLevelExpandedStr:
		return LowLevelExpanded, nil
	default:
		return Metric(-1), fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// ParseList parses each name, failing on the first unknown one.
// An empty list yields All.
func ParseList(names []string) ([]Metric, error) {
	if len(names) == 0 {
		return All, nil
	}

	out := make([]Metric, 0, len(names))

	for _, n := range names {
		m, err := Parse(n)
		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, nil
}

const averagePrefix = "average_"

// AverageKey is the summary record key holding the metric's average.
func (m Metric) AverageKey() string {
	return averagePrefix + m.String()
}

// CountKey is the summary record key holding the metric's sample count.
func (m Metric) CountKey() string {
	return "num_scenarios_" + m.String()
}
