// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stats

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/metrics"
	"github.com/matt-FFFFFF/mapfbatch/internal/scenario"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietCtx() context.Context {
	return ctxlog.New(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "/results/random-1/schedules/ecbs_w_1.10/"
	writeFile(t, fsys, dir+"ecbs_schedule_inputs_5_agents.yaml", "statistics:\n  cost: 10\n  runtime: 0.5\n")
	writeFile(t, fsys, dir+"ecbs_schedule_inputs_10_agents.yaml", "statistics:\n  cost: 30\n  runtime: 2\n")
	writeFile(t, fsys, dir+"ecbs_schedule_noagents.yaml", "statistics:\n  cost: 1\n")
	writeFile(t, fsys, dir+"ecbs_schedule_inputs_7_agents.yaml", "garbage: true\n")
	writeFile(t, fsys, "/results/random-2/schedules/ecbs_w_1.10/ecbs_schedule_inputs_5_agents.yaml", "statistics:\n  cost: 20\n")
	writeFile(t, fsys, "/results/even-1/schedules/cbs/cbs_schedule_inputs_5_agents.yaml", "statistics:\n  cost: 99\n")
	writeFile(t, fsys, "/results/even-1/inputs_5_agents.yaml", "agents: []\n")

	layout := scenario.Layout{Solver: "./build/ecbs", Weight: 1.1, Weighted: true}

	samples, report, err := Load(quietCtx(), fsys, "/results", layout, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Groups)
	assert.Equal(t, 5, report.Files)
	assert.Equal(t, 3, report.Loaded)
	require.Len(t, report.Problems, 2)
	require.Error(t, report.Err())
	assert.ErrorIs(t, report.Err(), ErrNoAgentCount)
	assert.ErrorIs(t, report.Err(), ErrNoStatistics)

	avg, _ := metrics.Compute(samples, []metrics.Metric{metrics.Cost})
	v, ok := avg.Lookup(metrics.Cost, "random", 5)
	require.True(t, ok)
	assert.InDelta(t, 15.0, v, 1e-9)

	assert.Len(t, samples, 5)
	assert.NotContains(t, avg[metrics.Cost], "even")
}

func TestLoad_MetricFilter(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/r/random-1/schedules/cbs/cbs_schedule_inputs_2_agents.yaml", "statistics:\n  cost: 1\n  runtime: 2\n")

	samples, report, err := Load(quietCtx(), fsys, "/r", scenario.Layout{Solver: "cbs"}, LoadOptions{
		Metrics: []metrics.Metric{metrics.Runtime},
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Len(t, samples, 1)
	assert.Equal(t, metrics.Runtime, samples[0].Metric)
	assert.Equal(t, 2, samples[0].Agents)
}

func TestLoad_MissingRoot(t *testing.T) {
	_, _, err := Load(quietCtx(), afero.NewMemMapFs(), "/nope", scenario.Layout{Solver: "cbs"}, LoadOptions{})
	require.ErrorIs(t, err, scenario.ErrNotFound)
}
