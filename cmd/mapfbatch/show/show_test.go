// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/batch"
	"github.com/matt-FFFFFF/mapfbatch/internal/color"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func testRoot(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:           "mapfbatch",
		Commands:       []*cli.Command{newCmd()},
		Writer:         stdout,
		ErrWriter:      io.Discard,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func savedReport(t *testing.T) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	r := &batch.Report{
		Root:   "/in",
		Solver: "ecbs",
		Entries: []batch.Entry{
			{Group: "random-1", File: "a_5_agents.yaml", Outcome: solver.Outcome{Kind: solver.Completed, Elapsed: time.Second}},
			{Group: "random-1", File: "b_10_agents.yaml", Outcome: solver.Outcome{Kind: solver.TimedOut, Elapsed: 3 * time.Second, Err: errors.New("solver timed out")}},
			{Group: "random-2", File: "c_5_agents.yaml", Outcome: solver.Outcome{Kind: solver.SkippedExisting}},
		},
	}
	require.NoError(t, r.Save(fsys, "/out/report.yaml"))

	stubs := gostub.StubFunc(&FsFactory, fsys)
	t.Cleanup(stubs.Reset)
}

func TestShow(t *testing.T) {
	t.Cleanup(color.SetEnabled(false))
	savedReport(t)

	var out bytes.Buffer
	require.NoError(t, testRoot(&out).Run(context.Background(), []string{"mapfbatch", "show", "/out/report.yaml"}))

	assert.Contains(t, out.String(), "  ✓ a_5_agents.yaml (1s)\n")
	assert.Contains(t, out.String(), "    ➜ Error: solver timed out\n")
	assert.Contains(t, out.String(), "c_5_agents.yaml")
	assert.Contains(t, out.String(), "3 files:")
}

func TestShow_Failures(t *testing.T) {
	t.Cleanup(color.SetEnabled(false))
	savedReport(t)

	var out bytes.Buffer
	require.NoError(t, testRoot(&out).Run(context.Background(), []string{"mapfbatch", "show", "--failures", "/out/report.yaml"}))

	assert.Contains(t, out.String(), "b_10_agents.yaml")
	assert.NotContains(t, out.String(), "a_5_agents.yaml")
	assert.NotContains(t, out.String(), "random-2")
	assert.Contains(t, out.String(), "1 files: 1 timed_out")
}

func TestShow_Errors(t *testing.T) {
	savedReport(t)

	for _, args := range [][]string{nil, {"/out/missing.yaml"}} {
		err := testRoot(io.Discard).Run(context.Background(), append([]string{"mapfbatch", "show"}, args...))

		var exitErr cli.ExitCoder
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.ExitCode())
	}
}
