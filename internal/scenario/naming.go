// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	// TypeSeparator separates the scenario type from the rest of a group directory name.
	TypeSeparator = "-"
	// SchedulesDir is the directory inside a group that holds solver outputs.
	SchedulesDir = "schedules"
)

const scheduleInfix = "_schedule_"

var agentCountRe = regexp.MustCompile(`_(\d+)_agents`)

// AgentCount extracts the agent count encoded as `_<N>_agents` in a file name.
// The boolean is false when the name does not follow the convention.
func AgentCount(name string) (int, bool) {
	m := agentCountRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}

	return n, true
}

// ScenarioType returns the part of a group directory name before the first separator,
// e.g. "random" for "random-3". A name without a separator is its own type.
func ScenarioType(dirName string) string {
	t, _, _ := strings.Cut(dirName, TypeSeparator)
	return t
}

// Layout describes where a solver writes its output for each input file.
type Layout struct {
	// Solver is the path to the solver executable; only its base name is used.
	Solver string
	// Weight is the suboptimality weight passed to weighted solvers.
	Weight float64
	// Weighted is true when the solver takes a weight argument.
	Weighted bool
}

// SolverName is the base name of the solver executable.
func (l Layout) SolverName() string {
	return filepath.Base(l.Solver)
}

// ResultDir is the name of the directory holding this solver's outputs.
// Weighted solvers include the weight, e.g. "ecbs_w_1.10".
func (l Layout) ResultDir() string {
	if !l.Weighted {
		return l.SolverName()
	}

	return l.SolverName() + "_w_" + strconv.FormatFloat(l.Weight, 'f', 2, 64)
}

// OutputDir is the output directory for a group.
func (l Layout) OutputDir(groupDir string) string {
	return filepath.Join(groupDir, SchedulesDir, l.ResultDir())
}

// OutputPath is the expected output file for an input file of a group.
func (l Layout) OutputPath(g Group, f File) string {
	return filepath.Join(l.OutputDir(g.Dir), l.SolverName()+scheduleInfix+f.Name)
}

// OutputGlob matches every output file of this solver inside a group output directory.
func (l Layout) OutputGlob() string {
	return l.SolverName() + scheduleInfix + "*"
}

// IsWeighted reports whether solver's base name is in the list of weighted solvers.
func IsWeighted(solver string, weighted []string) bool {
	base := filepath.Base(solver)

	for _, w := range weighted {
		if base == w {
			return true
		}
	}

	return false
}
