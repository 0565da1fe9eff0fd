// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package batch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/cancellation"
	"github.com/matt-FFFFFF/mapfbatch/internal/scenario"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
	"github.com/matt-FFFFFF/mapfbatch/internal/stats"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSolver writes a statistics block to the -o path; inputs named *slow* hang.
const fakeSolver = `#!/bin/sh
case "$2" in
  *slow*) sleep 10 ;;
esac
printf 'statistics:\n  cost: 7\n  runtime: 0.1\nschedule:\n' > "$4"
`

func TestRun_RealSolverWithTimeout(t *testing.T) {
	root := t.TempDir()
	solverPath := filepath.Join(t.TempDir(), "ecbs")
	require.NoError(t, os.WriteFile(solverPath, []byte(fakeSolver), 0o755))

	for _, p := range []string{
		"random-1/inputs_2_agents.yaml",
		"random-1/inputs_3_agents_slow.yaml",
		"random-1/inputs_4_agents.yaml",
	} {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("agents: []\n"), 0o644))
	}

	cfg := Config{
		Root:    root,
		Layout:  scenario.Layout{Solver: solverPath, Weight: 1.5, Weighted: true},
		Timeout: 200 * time.Millisecond,
	}
	runner := &solver.Runner{GracePeriod: 200 * time.Millisecond, TickInterval: time.Second}

	start := time.Now()
	report, err := New(cfg, runner, cancellation.New()).Run(quietCtx())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, []solver.Kind{solver.Completed, solver.TimedOut, solver.Completed}, kinds(report))

	out := filepath.Join(root, "random-1", "schedules", "ecbs_w_1.50", "ecbs_schedule_inputs_4_agents.yaml")
	got, err := stats.ReadStatistics(afero.NewOsFs(), out, stats.DefaultLines)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
