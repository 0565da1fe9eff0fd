// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the run subcommand, which runs the solver over a scenario tree.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/batch"
	"github.com/matt-FFFFFF/mapfbatch/internal/cancellation"
	"github.com/matt-FFFFFF/mapfbatch/internal/config"
	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/progress"
	"github.com/matt-FFFFFF/mapfbatch/internal/scenario"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
	"github.com/matt-FFFFFF/mapfbatch/internal/tui"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	configFlag         = "config"
	inputsFlag         = "inputs"
	limitFlag          = "n"
	patternFlag        = "pattern"
	solverFlag         = "solver"
	weightFlag         = "weight"
	weightedFlag       = "weighted"
	timeoutFlag        = "timeout"
	graceFlag          = "grace"
	tickFlag           = "tick"
	verifyExistingFlag = "verify-existing"
	reportFlag         = "report"
	tuiFlag            = "tui"
	tuiExitFlag        = "tui-exit"
	outputFlag         = "log-output"
	cliExitStr         = ""
	logBufferSize      = 1024
)

// FsFactory returns the filesystem the batch reads scenarios from and writes reports to.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// RunCmd is the command that runs the solver over every scenario file.
var RunCmd = newCmd()

func newCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the solver over every scenario file below a directory",
		Description: `Run the solver once per scenario file, one file at a time, in natural order of
group and file name. Outputs are written to <group>/schedules/<solver>[_w_<weight>]/.
Files whose output already exists are skipped, so an interrupted batch can be resumed.

While the batch runs, type 's' + Enter to skip the current file or 'S' + Enter to skip
the rest of the current group. In the interactive view the same keys work without Enter.

Flags override values from the config file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Read batch settings from a YAML config file",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:      inputsFlag,
				Aliases:   []string{"i"},
				Usage:     "Directory containing one subdirectory per scenario group",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.IntFlag{
				Name:    limitFlag,
				Aliases: []string{"limit"},
				Usage:   "Run only the first N files of each group. 0 runs all files",
			},
			&cli.StringFlag{
				Name:  patternFlag,
				Usage: "Glob matching scenario files inside a group",
				Value: scenario.DefaultPattern,
			},
			&cli.StringFlag{
				Name:      solverFlag,
				Aliases:   []string{"s"},
				Usage:     "Path to the solver executable",
				Value:     config.DefaultSolver,
				TakesFile: true,
			},
			&cli.FloatFlag{
				Name:    weightFlag,
				Aliases: []string{"w"},
				Usage:   "Suboptimality weight passed to weighted solvers",
				Value:   config.DefaultWeight,
			},
			&cli.BoolFlag{
				Name:        weightedFlag,
				Usage:       "Force passing the weight, overriding the list of weighted solvers",
				DefaultText: "by solver name",
			},
			&cli.DurationFlag{
				Name:    timeoutFlag,
				Aliases: []string{"t"},
				Usage:   "Maximum run time of one solver process",
				Value:   config.DefaultTimeout,
			},
			&cli.DurationFlag{
				Name:  graceFlag,
				Usage: "Time a solver gets to exit after SIGTERM before it is killed",
				Value: config.DefaultGrace,
			},
			&cli.DurationFlag{
				Name:  tickFlag,
				Usage: "Interval between 'still running' log lines",
				Value: config.DefaultTickInterval,
			},
			&cli.BoolFlag{
				Name:  verifyExistingFlag,
				Usage: "Re-run files whose existing output has no readable statistics block",
			},
			&cli.StringFlag{
				Name:      reportFlag,
				Usage:     "Save the batch report to this YAML file",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:    tuiFlag,
				Aliases: []string{"interactive"},
				Usage:   "Run with an interactive terminal view showing live progress",
			},
			&cli.BoolFlag{
				Name:  tuiExitFlag,
				Usage: "Close the interactive view as soon as the batch finishes",
			},
			&cli.BoolFlag{
				Name:  outputFlag,
				Usage: "Log every solver output line at debug level",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	cfg, err := buildConfig(cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	logger.Debug("configuration", "inputs", cfg.Inputs, "solver", cfg.Solver, "result_dir", cfg.Layout().ResultDir())

	fsys := FsFactory()
	ctrl := cancellation.New()
	runner := &solver.Runner{
		GracePeriod:  time.Duration(cfg.Grace),
		TickInterval: time.Duration(cfg.TickInterval),
	}

	batchCfg := batch.Config{
		Root: cfg.Inputs,
		Discover: scenario.Options{
			Limit:   cfg.Limit,
			Pattern: cfg.Pattern,
		},
		Layout:          cfg.Layout(),
		Timeout:         time.Duration(cfg.Timeout),
		VerifyExisting:  cfg.VerifyExisting,
		StatisticsLines: cfg.StatisticsLines,
	}

	work := func(ctx context.Context, reporter progress.Reporter) (*batch.Report, error) {
		orch := batch.New(batchCfg, runner, ctrl, batch.WithReporter(reporter), batch.WithFs(fsys))
		return orch.Run(ctx)
	}

	var (
		report *batch.Report
		runErr error
	)

	switch cmd.Bool(tuiFlag) {
	case true:
		logger.Info("Starting interactive TUI mode...")

		buf := new(bytes.Buffer)
		tuiCtx := ctxlog.NewForTUI(ctx, buf)

		var opts []tui.RunnerOption
		if cmd.Bool(tuiExitFlag) {
			opts = append(opts, tui.WithExitOnComplete())
		}

		report, runErr = tui.NewRunner(tuiCtx, ctrl, opts...).Run(tuiCtx, work)

		buf.WriteTo(cmd.Root().ErrWriter) //nolint:errcheck
	default:
		report, runErr = runWithLog(ctx, cmd, ctrl, work)
	}

	if report != nil {
		if err := report.WriteText(cmd.Root().Writer); err != nil {
			logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
		}

		logger.Info(report.Summary())

		if cfg.Report != "" {
			if err := report.Save(fsys, cfg.Report); err != nil {
				logger.Error(fmt.Sprintf("Failed to save report to %s: %s", cfg.Report, err.Error()))
				return cli.Exit(cliExitStr, 1)
			}

			logger.Info(fmt.Sprintf("Report written to %s", cfg.Report))
		}
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		logger.Warn("Batch cancelled, rerun the same command to resume")
		return cli.Exit(cliExitStr, 1)
	case runErr != nil:
		logger.Error(runErr.Error())
		return cli.Exit(cliExitStr, 1)
	case report != nil && report.Counts()[solver.Errored] > 0:
		logger.Error("Some solver runs failed. See above for details.")
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// runWithLog runs the batch with progress going to the log and skip commands read from stdin.
func runWithLog(ctx context.Context, cmd *cli.Command, ctrl *cancellation.Controller, work tui.Work) (*batch.Report, error) {
	logReporter := progress.NewLogReporter(ctx)
	logReporter.Output = cmd.Bool(outputFlag)

	reporter := progress.NewChannelReporter(logBufferSize)
	reporter.Listen(logReporter)

	listenCtx, stopListening := context.WithCancel(ctx)
	defer stopListening()

	if r := cmd.Root().Reader; r != nil {
		ctxlog.Info(ctx, cancellation.Usage)

		go func(r io.Reader) {
			if err := ctrl.Listen(listenCtx, r); err != nil && !errors.Is(err, context.Canceled) {
				ctxlog.Warn(ctx, "stopped reading skip commands", "error", err)
			}
		}(r)
	}

	report, err := work(ctx, reporter)
	reporter.Close()

	return report, err
}

// buildConfig loads the config file, if any, and applies the flags that were set.
func buildConfig(cmd *cli.Command) (config.Batch, error) {
	cfg := config.Default()

	if path := cmd.String(configFlag); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if cmd.IsSet(inputsFlag) {
		cfg.Inputs = cmd.String(inputsFlag)
	}

	if cmd.IsSet(limitFlag) {
		cfg.Limit = cmd.Int(limitFlag)
	}

	if cmd.IsSet(patternFlag) {
		cfg.Pattern = cmd.String(patternFlag)
	}

	if cmd.IsSet(solverFlag) {
		cfg.Solver = cmd.String(solverFlag)
	}

	if cmd.IsSet(weightFlag) {
		cfg.Weight = cmd.Float(weightFlag)
	}

	if cmd.IsSet(weightedFlag) {
		w := cmd.Bool(weightedFlag)
		cfg.Weighted = &w
	}

	if cmd.IsSet(timeoutFlag) {
		cfg.Timeout = config.Duration(cmd.Duration(timeoutFlag))
	}

	if cmd.IsSet(graceFlag) {
		cfg.Grace = config.Duration(cmd.Duration(graceFlag))
	}

	if cmd.IsSet(tickFlag) {
		cfg.TickInterval = config.Duration(cmd.Duration(tickFlag))
	}

	if cmd.IsSet(verifyExistingFlag) {
		cfg.VerifyExisting = cmd.Bool(verifyExistingFlag)
	}

	if cmd.IsSet(reportFlag) {
		cfg.Report = cmd.String(reportFlag)
	}

	return cfg, cfg.Validate()
}
