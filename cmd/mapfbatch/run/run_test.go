// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/config"
	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func quietCtx() context.Context {
	return ctxlog.New(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRoot(cmd *cli.Command, stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:           "mapfbatch",
		Commands:       []*cli.Command{cmd},
		Reader:         strings.NewReader(""),
		Writer:         stdout,
		ErrWriter:      io.Discard,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// captureConfig runs the run command with args and returns the merged configuration.
func captureConfig(t *testing.T, args ...string) (config.Batch, error) {
	t.Helper()

	var (
		got    config.Batch
		gotErr error
	)

	cmd := newCmd()
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		got, gotErr = buildConfig(c)
		return nil
	}

	require.NoError(t, testRoot(cmd, io.Discard).Run(quietCtx(), append([]string{"mapfbatch", "run"}, args...)))

	return got, gotErr
}

func TestBuildConfig_Defaults(t *testing.T) {
	got, err := captureConfig(t, "--inputs", "scenarios")
	require.NoError(t, err)

	assert.Equal(t, "scenarios", got.Inputs)
	assert.Equal(t, config.DefaultSolver, got.Solver)
	assert.Equal(t, config.Duration(config.DefaultTimeout), got.Timeout)
	assert.True(t, got.IsWeighted(), "ecbs is weighted by default")
	assert.Equal(t, "ecbs_w_1.10", got.Layout().ResultDir())
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`inputs: from-file
solver: ./build/cbs
timeout: 60
limit: 3
report: report.yaml
`), 0o644))

	got, err := captureConfig(t, "--config", path, "--timeout", "5s", "--weighted", "--weight", "2")
	require.NoError(t, err)

	assert.Equal(t, "from-file", got.Inputs)
	assert.Equal(t, "./build/cbs", got.Solver)
	assert.Equal(t, 3, got.Limit)
	assert.Equal(t, "report.yaml", got.Report)
	assert.Equal(t, config.Duration(5*time.Second), got.Timeout)
	assert.Equal(t, "cbs_w_2.00", got.Layout().ResultDir())
}

func TestBuildConfig_Invalid(t *testing.T) {
	_, err := captureConfig(t, "--timeout", "0s")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "inputs directory is required")
	assert.Contains(t, err.Error(), "timeout must be positive")

	_, err = captureConfig(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, config.ErrReadConfig)
}

func TestRun_InvalidConfigExits(t *testing.T) {
	var out bytes.Buffer

	err := testRoot(newCmd(), &out).Run(quietCtx(), []string{"mapfbatch", "run"})

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Empty(t, out.String())
}
