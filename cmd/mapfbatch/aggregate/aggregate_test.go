// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package aggregate

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/mapfbatch/internal/color"
	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/summary"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func quietCtx() context.Context {
	return ctxlog.New(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRoot(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:           "mapfbatch",
		Commands:       []*cli.Command{newCmd()},
		Writer:         stdout,
		ErrWriter:      io.Discard,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func result(cost, runtime string) string {
	return "statistics:\n  cost: " + cost + "\n  makespan: 4\n  runtime: " + runtime + "\nschedule:\n  agent0: []\n"
}

func resultsFs(t *testing.T, resultDir string) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"random-1/a_10_agents.yaml": result("10", "0.5"),
		"random-1/b_10_agents.yaml": result("20", "2"),
		"random-2/c_20_agents.yaml": result("30", "0.2"),
		"room-1/d_10_agents.yaml":   result("5", "0.1"),
		"room-1/e_10_agents.yaml":   "statistics: [\n",
	}

	for name, content := range files {
		group, file := filepath.Split(name)
		path := filepath.Join("/results", group, "schedules", resultDir, "ecbs_schedule_"+file)
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}

	stubs := gostub.StubFunc(&FsFactory, fsys)
	t.Cleanup(stubs.Reset)

	return fsys
}

func TestAggregate_WritesSummaries(t *testing.T) {
	defer color.SetEnabled(false)()

	fsys := resultsFs(t, "ecbs_w_1.10")

	var out bytes.Buffer
	require.NoError(t, testRoot(&out).Run(quietCtx(), []string{"mapfbatch", "aggregate", "/results"}))

	random, err := summary.Read(fsys, "/results/global_averages_random.yaml")
	require.NoError(t, err)
	require.Len(t, random.Rows, 2)

	row := random.Rows[0]
	assert.Equal(t, 10, row.Agents)

	cost, ok := row.Get("average_cost")
	require.True(t, ok)
	assert.InDelta(t, 15.0, cost, 1e-9)

	n, ok := row.Get(summary.NumScenariosKey)
	require.True(t, ok)
	assert.InDelta(t, 2.0, n, 1e-9)

	fast, ok := row.Get(summary.FastKey(1))
	require.True(t, ok)
	assert.InDelta(t, 1.0, fast, 1e-9)

	room, err := summary.Read(fsys, "/results/global_averages_room.yaml")
	require.NoError(t, err)
	require.Len(t, room.Rows, 1, "the broken result is skipped")

	assert.Contains(t, out.String(), "random")
	assert.Contains(t, out.String(), "average_cost")
}

func TestAggregate_Options(t *testing.T) {
	fsys := resultsFs(t, "ecbs")

	var out bytes.Buffer
	require.NoError(t, testRoot(&out).Run(quietCtx(), []string{
		"mapfbatch", "aggregate",
		"--weighted=false", "--out", "/analysis/ecbs", "--metrics", "runtime",
		"--fast-threshold", "0.3", "--fast-threshold", "10", "--quiet",
		"/results",
	}))
	assert.Empty(t, out.String())

	random, err := summary.Read(fsys, "/analysis/ecbs/global_averages_random.yaml")
	require.NoError(t, err)

	row := random.Rows[0]
	_, ok := row.Get("average_cost")
	assert.False(t, ok, "only the requested metric is written")

	runtime, ok := row.Get("average_runtime")
	require.True(t, ok)
	assert.InDelta(t, 1.25, runtime, 1e-9)

	under, ok := row.Get(summary.FastKey(0.3))
	require.True(t, ok)
	assert.Zero(t, under)

	under, ok = row.Get(summary.FastKey(10))
	require.True(t, ok)
	assert.InDelta(t, 2.0, under, 1e-9)
}

func TestAggregate_NoResults(t *testing.T) {
	fsys := resultsFs(t, "cbs")

	require.NoError(t, testRoot(io.Discard).Run(quietCtx(), []string{"mapfbatch", "aggregate", "/results"}))

	exists, err := afero.Exists(fsys, "/results/global_averages_random.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAggregate_Errors(t *testing.T) {
	resultsFs(t, "ecbs_w_1.10")

	tests := []struct {
		name string
		args []string
	}{
		{"missing directory", []string{"/nope"}},
		{"no directory", nil},
		{"unknown metric", []string{"--metrics", "throughput", "/results"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testRoot(io.Discard).Run(quietCtx(), append([]string{"mapfbatch", "aggregate"}, tt.args...))

			var exitErr cli.ExitCoder
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 1, exitErr.ExitCode())
		})
	}
}
