// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show contains the show subcommand, which prints a saved batch report.
package show

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/mapfbatch/internal/batch"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	fileArg      = "file"
	failuresFlag = "failures"
)

var (
	// ErrNoFile is returned when no report file is given.
	ErrNoFile = errors.New("no report file given")
	// ErrWriteResults is returned when the report cannot be written to stdout.
	ErrWriteResults = errors.New("failed to write report to stdout")
)

// FsFactory returns the filesystem reports are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// ShowCmd is the command that shows a report saved by run --report.
var ShowCmd = newCmd()

func newCmd() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show a previously saved batch report",
		Description: "Show a batch report saved with 'mapfbatch run --report FILE'.",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      fileArg,
				UsageText: "REPORT_FILE",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  failuresFlag,
				Usage: "Only show files that errored or timed out",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.StringArg(fileArg)
			if path == "" {
				return cli.Exit(ErrNoFile.Error(), 1)
			}

			report, err := batch.LoadReport(FsFactory(), path)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if cmd.Bool(failuresFlag) {
				report = failures(report)
			}

			if err := report.WriteText(cmd.Root().Writer); err != nil {
				return cli.Exit(fmt.Sprintf("%s: %s", ErrWriteResults, err), 1)
			}

			return nil
		},
	}
}

func failures(r *batch.Report) *batch.Report {
	out := *r
	out.Entries = nil

	for _, e := range r.Entries {
		if e.Outcome.Kind == solver.Errored || e.Outcome.Kind == solver.TimedOut {
			out.Entries = append(out.Entries, e)
		}
	}

	return &out
}
