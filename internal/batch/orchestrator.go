// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/cancellation"
	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/linewriter"
	"github.com/matt-FFFFFF/mapfbatch/internal/progress"
	"github.com/matt-FFFFFF/mapfbatch/internal/scenario"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
	"github.com/matt-FFFFFF/mapfbatch/internal/stats"
	"github.com/spf13/afero"
)

const outputDirPerm = 0o755

// ErrCatalog is returned when the scenario catalog cannot be read.
var ErrCatalog = errors.New("failed to discover scenarios")

// Runner runs one solver invocation. *solver.Runner implements it.
type Runner interface {
	Run(ctx context.Context, inv solver.Invocation, reg solver.Registrar) solver.Outcome
}

// Controller is the source of skip requests. *cancellation.Controller implements it.
type Controller interface {
	solver.Registrar
	Take(k cancellation.Kind) bool
}

// Config describes one batch.
type Config struct {
	Root     string
	Discover scenario.Options
	Layout   scenario.Layout
	Timeout  time.Duration
	// VerifyExisting re-runs files whose existing output has no readable statistics.
	VerifyExisting  bool
	StatisticsLines int
}

// Orchestrator runs a batch.
type Orchestrator struct {
	cfg      Config
	runner   Runner
	ctrl     Controller
	reporter progress.Reporter
	fs       afero.Fs
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sends progress events to r.
func WithReporter(r progress.Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// WithFs sets the filesystem used for output checks. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(o *Orchestrator) {
		o.fs = fsys
	}
}

// New returns an Orchestrator. ctrl may be nil when there is no interactive control.
func New(cfg Config, runner Runner, ctrl Controller, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		runner:   runner,
		ctrl:     ctrl,
		reporter: progress.NullReporter{},
		fs:       afero.NewOsFs(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run processes every file of every group in order and returns the report.
// Solver failures are recorded in the report, never returned. The only errors are
// a catalog failure and cancellation of ctx, in which case the partial report is returned.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Root:      o.cfg.Root,
		Solver:    o.cfg.Layout.SolverName(),
		ResultDir: o.cfg.Layout.ResultDir(),
		Started:   time.Now(),
	}

	defer func() { report.Finished = time.Now() }()

	opts := o.cfg.Discover
	if opts.Fs == nil {
		opts.Fs = o.fs
	}

	groups, err := scenario.Discover(ctx, o.cfg.Root, opts)
	if err != nil {
		return report, errors.Join(ErrCatalog, err)
	}

	total := 0
	for _, g := range groups {
		total += len(g.Files)
	}

	o.reporter.Report(progress.Event{
		Type:      progress.EventBatchStarted,
		Timestamp: time.Now(),
		Data:      progress.EventData{Groups: len(groups), Files: total},
	})

	defer func() {
		o.reporter.Report(progress.Event{
			Type:      progress.EventBatchFinished,
			Message:   report.Summary(),
			Timestamp: time.Now(),
		})
	}()

	for _, g := range groups {
		if err := o.runGroup(ctx, g, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (o *Orchestrator) runGroup(ctx context.Context, g scenario.Group, report *Report) error {
	o.reporter.Report(progress.Event{
		Type:      progress.EventGroupStarted,
		Group:     g.Name,
		Timestamp: time.Now(),
	})

	skipGroup := false

	for _, f := range g.Files {
		if err := ctx.Err(); err != nil {
			return err
		}

		out := o.cfg.Layout.OutputPath(g, f)

		var outcome solver.Outcome

		switch {
		case skipGroup || o.take(cancellation.SkipGroup):
			skipGroup = true
			outcome = solver.Outcome{Kind: solver.SkippedGroup}
		case o.take(cancellation.SkipFile):
			outcome = solver.Outcome{Kind: solver.SkippedByUser}
		case o.outputExists(ctx, out):
			outcome = solver.Outcome{Kind: solver.SkippedExisting}
		default:
			outcome = o.runFile(ctx, g, f, out)
			if outcome.Kind == solver.SkippedGroup {
				skipGroup = true
			}
		}

		o.record(report, g, f, out, outcome)

		// A file skip made while the group is being skipped belongs to this group.
		if skipGroup {
			o.take(cancellation.SkipFile)
		}

		if errors.Is(outcome.Err, solver.ErrCancelled) {
			return ctx.Err()
		}
	}

	return nil
}

func (o *Orchestrator) take(k cancellation.Kind) bool {
	return o.ctrl != nil && o.ctrl.Take(k)
}

// outputExists treats any existing file as done, even an empty one, unless
// VerifyExisting is set.
func (o *Orchestrator) outputExists(ctx context.Context, path string) bool {
	if _, err := o.fs.Stat(path); err != nil {
		return false
	}

	if !o.cfg.VerifyExisting {
		return true
	}

	if _, err := stats.ReadStatistics(o.fs, path, o.cfg.StatisticsLines); err != nil {
		ctxlog.Warn(ctx, "existing output has no statistics, running again", "path", path, "error", err.Error())
		return false
	}

	return true
}

func (o *Orchestrator) runFile(ctx context.Context, g scenario.Group, f scenario.File, out string) solver.Outcome {
	if err := o.fs.MkdirAll(o.cfg.Layout.OutputDir(g.Dir), outputDirPerm); err != nil {
		return solver.Outcome{
			Kind:     solver.Errored,
			ExitCode: -1,
			Err:      fmt.Errorf("creating output directory: %w", err),
		}
	}

	o.reporter.Report(progress.Event{
		Type:      progress.EventStarted,
		Group:     g.Name,
		File:      f.Name,
		Timestamp: time.Now(),
	})

	stdout := o.outputWriter(g, f, false)
	stderr := o.outputWriter(g, f, true)

	l := o.cfg.Layout
	outcome := o.runner.Run(ctx, solver.Invocation{
		Path:    l.Solver,
		Args:    solver.Args(f.Path, out, l.Weight, l.Weighted),
		Timeout: o.cfg.Timeout,
		Stdout:  stdout,
		Stderr:  stderr,
		Label:   g.Name + string(os.PathSeparator) + f.Name,
	}, o.registrar())

	stdout.Flush()
	stderr.Flush()

	return outcome
}

// registrar avoids handing the runner a typed nil interface.
func (o *Orchestrator) registrar() solver.Registrar {
	if o.ctrl == nil {
		return nil
	}

	return o.ctrl
}

func (o *Orchestrator) outputWriter(g scenario.Group, f scenario.File, isStderr bool) *linewriter.Writer {
	return linewriter.New(func(line string) {
		o.reporter.Report(progress.Event{
			Type:      progress.EventOutput,
			Group:     g.Name,
			File:      f.Name,
			Timestamp: time.Now(),
			Data:      progress.EventData{OutputLine: line, IsStderr: isStderr},
		})
	})
}

func (o *Orchestrator) record(report *Report, g scenario.Group, f scenario.File, out string, outcome solver.Outcome) {
	report.add(Entry{
		Group:   g.Name,
		File:    f.Name,
		Input:   f.Path,
		Output:  out,
		Outcome: outcome,
	})

	o.reporter.Report(progress.Event{
		Type:      progress.EventFinished,
		Group:     g.Name,
		File:      f.Name,
		Timestamp: time.Now(),
		Data:      progress.EventData{Outcome: outcome},
	})
}
