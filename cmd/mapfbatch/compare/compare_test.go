// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package compare

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/matt-FFFFFF/mapfbatch/internal/color"
	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
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

func analysisFs(t *testing.T) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/analysis/ecbs/global_averages_random.yaml": "10:\n  average_cost: 15\n  num_scenarios: 2\n20:\n  average_cost: 30.5\n  num_scenarios: 1\n",
		"/analysis/cbs/global_averages_random.yaml":  "10:\n  average_cost: 12\n  average_makespan: 6\n  num_scenarios: 2\n",
		"/analysis/cbs/global_averages_room.yaml":    "5:\n  average_cost: 7\n  solved_under_1s: 1\n",
		"/analysis/notes.txt":                        "not a solver",
	}

	for p, content := range files {
		require.NoError(t, afero.WriteFile(fsys, p, []byte(content), 0o644))
	}

	stubs := gostub.StubFunc(&FsFactory, fsys)
	t.Cleanup(stubs.Reset)
}

func TestCompare(t *testing.T) {
	t.Cleanup(color.SetEnabled(false))
	analysisFs(t)

	var out bytes.Buffer
	require.NoError(t, testRoot(&out).Run(quietCtx(), []string{"mapfbatch", "compare", "/analysis"}))

	got := out.String()
	assert.Contains(t, got, "average_cost\n")
	assert.Contains(t, got, "average_makespan\n")
	assert.Regexp(t, `TYPE\s+AGENTS\s+cbs\s+ecbs`, got)
	assert.Regexp(t, `random\s+10\s+12\s+15\n`, got)
	assert.Regexp(t, `random\s+20\s+-\s+30\.500\n`, got)
	assert.Regexp(t, `room\s+5\s+7\s+-\n`, got)
}

func TestCompare_Filters(t *testing.T) {
	t.Cleanup(color.SetEnabled(false))
	analysisFs(t)

	var out bytes.Buffer
	require.NoError(t, testRoot(&out).Run(quietCtx(), []string{
		"mapfbatch", "compare", "--metrics", "solved_under_1s", "--metrics", "cost", "--solvers", "cbs", "/analysis",
	}))

	got := out.String()
	assert.Regexp(t, `room\s+5\s+1\n`, got)
	assert.NotContains(t, got, "ecbs")
	assert.Contains(t, got, "average_cost\n")
}

func TestSummaryKeys(t *testing.T) {
	keys, err := summaryKeys([]string{"runtime", "average_cost", "num_scenarios", "solved_under_0.5s"})
	require.NoError(t, err)
	assert.Equal(t, []string{"average_runtime", "average_cost", "num_scenarios", "solved_under_0.5s"}, keys)

	_, err = summaryKeys([]string{"solved_under_fast"})
	require.Error(t, err)
}

func TestCompare_Errors(t *testing.T) {
	analysisFs(t)

	for _, args := range [][]string{nil, {"/missing"}, {"--metrics", "throughput", "/analysis"}} {
		err := testRoot(io.Discard).Run(quietCtx(), append([]string{"mapfbatch", "compare"}, args...))

		var exitErr cli.ExitCoder
		require.ErrorAs(t, err, &exitErr, args)
		assert.Equal(t, 1, exitErr.ExitCode())
	}
}
