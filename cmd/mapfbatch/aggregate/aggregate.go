// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package aggregate contains the aggregate subcommand, which summarises solver statistics.
package aggregate

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/mapfbatch/internal/config"
	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/metrics"
	"github.com/matt-FFFFFF/mapfbatch/internal/stats"
	"github.com/matt-FFFFFF/mapfbatch/internal/summary"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	resultsArg        = "results"
	configFlag        = "config"
	solverFlag        = "solver"
	weightFlag        = "weight"
	weightedFlag      = "weighted"
	outFlag           = "out"
	fastThresholdFlag = "fast-threshold"
	metricsFlag       = "metrics"
	linesFlag         = "lines"
	quietFlag         = "quiet"
	cliExitStr        = ""
)

// FsFactory returns the filesystem results are read from and summaries written to.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// AggregateCmd is the command that averages solver statistics per scenario type and agent count.
var AggregateCmd = newCmd()

func newCmd() *cli.Command {
	return &cli.Command{
		Name:  "aggregate",
		Usage: "Average the statistics of a solver's results per scenario type and agent count",
		Description: `Read the statistics block of every result the solver wrote below RESULTS_DIR and
write one global_averages_<type>.yaml file per scenario type. Each file maps agent counts
to the average of every metric and to the number of scenarios behind each average.

Results that cannot be read are reported and skipped.`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      resultsArg,
				UsageText: "RESULTS_DIR",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Read settings from a YAML config file",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:    solverFlag,
				Aliases: []string{"s"},
				Usage:   "Solver whose results are aggregated; only its base name is used",
				Value:   config.DefaultSolver,
			},
			&cli.FloatFlag{
				Name:    weightFlag,
				Aliases: []string{"w"},
				Usage:   "Weight the results were produced with, for weighted solvers",
				Value:   config.DefaultWeight,
			},
			&cli.BoolFlag{
				Name:        weightedFlag,
				Usage:       "Force reading the weighted result directory",
				DefaultText: "by solver name",
			},
			&cli.StringFlag{
				Name:      outFlag,
				Aliases:   []string{"o"},
				Usage:     "Directory for the summary files. Defaults to RESULTS_DIR",
				TakesFile: true,
			},
			&cli.FloatSliceFlag{
				Name:  fastThresholdFlag,
				Usage: "Also count scenarios solved in under this many seconds. Repeat for several thresholds",
				Value: []float64{config.DefaultFastThreshold},
			},
			&cli.StringSliceFlag{
				Name:    metricsFlag,
				Aliases: []string{"m"},
				Usage:   "Metrics to aggregate. Defaults to every metric",
			},
			&cli.IntFlag{
				Name:  linesFlag,
				Usage: "Number of lines at the top of each result that hold the statistics block",
				Value: config.DefaultStatisticsLines,
			},
			&cli.BoolFlag{
				Name:    quietFlag,
				Aliases: []string{"q"},
				Usage:   "Do not print the summary tables",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running aggregate command")

	cfg, requested, err := buildConfig(cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	layout := cfg.Layout()
	fsys := FsFactory()

	samples, report, err := stats.Load(ctx, fsys, cfg.Inputs, layout, stats.LoadOptions{
		Lines:   cfg.StatisticsLines,
		Metrics: requested,
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to load results from %s: %s", cfg.Inputs, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	logger.Info("results loaded",
		"result_dir", layout.ResultDir(),
		"groups", report.Groups,
		"files", report.Files,
		"loaded", report.Loaded,
		"skipped", len(report.Problems),
	)

	if report.Loaded == 0 {
		logger.Warn(fmt.Sprintf("No %s results found below %s", layout.ResultDir(), cfg.Inputs))
		return nil
	}

	table := summary.Build(samples, requested, cfg.FastThresholds)

	out := cfg.SummaryDir
	if out == "" {
		out = cfg.Inputs
	}

	written, writeErr := summary.Write(fsys, out, table)
	for _, p := range written {
		logger.Info(fmt.Sprintf("Summary written to %s", p))
	}

	if !cmd.Bool(quietFlag) {
		if err := summary.Print(cmd.Root().Writer, table.Summaries()...); err != nil {
			logger.Error(fmt.Sprintf("Failed to print summary: %s", err.Error()))
		}
	}

	if writeErr != nil {
		logger.Error(writeErr.Error())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// buildConfig loads the config file, if any, applies the flags that were set and
// returns the metrics to aggregate. The results directory takes the place of the
// inputs directory.
func buildConfig(cmd *cli.Command) (config.Batch, []metrics.Metric, error) {
	cfg := config.Default()

	if path := cmd.String(configFlag); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, nil, err
		}
	}

	if dir := cmd.StringArg(resultsArg); dir != "" {
		cfg.Inputs = dir
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

	if cmd.IsSet(outFlag) {
		cfg.SummaryDir = cmd.String(outFlag)
	}

	if cmd.IsSet(fastThresholdFlag) {
		cfg.FastThresholds = cmd.FloatSlice(fastThresholdFlag)
	}

	if cmd.IsSet(metricsFlag) {
		cfg.Metrics = cmd.StringSlice(metricsFlag)
	}

	if cmd.IsSet(linesFlag) {
		cfg.StatisticsLines = cmd.Int(linesFlag)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	requested, err := cfg.MetricList()

	return cfg, requested, err
}
