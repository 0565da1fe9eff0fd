// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the mapfbatch command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/mapfbatch"
	"github.com/matt-FFFFFF/mapfbatch/cmd/mapfbatch/aggregate"
	"github.com/matt-FFFFFF/mapfbatch/cmd/mapfbatch/compare"
	"github.com/matt-FFFFFF/mapfbatch/cmd/mapfbatch/config"
	"github.com/matt-FFFFFF/mapfbatch/cmd/mapfbatch/run"
	"github.com/matt-FFFFFF/mapfbatch/cmd/mapfbatch/show"
	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		aggregate.AggregateCmd,
		compare.CompareCmd,
		show.ShowCmd,
		config.ConfigCmd,
	},
	Reader:    os.Stdin,
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "mapfbatch",
	Description: `mapfbatch runs a multi-agent path finding solver over directories of scenario
files and aggregates the statistics the solver writes into per-scenario-type summaries.

Runs are resumable: files whose output already exists are skipped, so an interrupted
batch can simply be started again.`,
	Usage:     "mapfbatch run --inputs ./scenarios",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", mapfbatch.Version, mapfbatch.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1) //nolint:gocritic
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
