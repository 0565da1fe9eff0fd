// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/mapfbatch/internal/batch"
	"github.com/matt-FFFFFF/mapfbatch/internal/progress"
)

// Work runs the batch, reporting progress to reporter.
type Work func(ctx context.Context, reporter progress.Reporter) (*batch.Report, error)

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *TUIReporter
	mutex    sync.Mutex
}

var _ progress.Reporter = (*TUIReporter)(nil)

// TUIReporter implements progress.Reporter and forwards events to the TUI.
type TUIReporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewTUIReporter creates a new TUI progress reporter.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{
		program: program,
	}
}

// Report implements progress.Reporter.
func (tr *TUIReporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *TUIReporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()
	tr.closed = true
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	exitOnComplete bool
	program        []tea.ProgramOption
}

// WithExitOnComplete quits the view as soon as the batch returns
// instead of waiting for the user to press q.
func WithExitOnComplete() RunnerOption {
	return func(o *runnerOptions) {
		o.exitOnComplete = true
	}
}

// WithProgramOptions passes extra options to the tea program.
func WithProgramOptions(opts ...tea.ProgramOption) RunnerOption {
	return func(o *runnerOptions) {
		o.program = append(o.program, opts...)
	}
}

// NewRunner creates a new TUI runner. Skip keys are forwarded to ctrl.
func NewRunner(ctx context.Context, ctrl Requester, opts ...RunnerOption) *Runner {
	o := &runnerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	model := NewModel(ctx, ctrl)
	model.exitOnComplete = o.exitOnComplete

	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, o.program...)...)

	return &Runner{
		model:    model,
		program:  program,
		reporter: NewTUIReporter(program),
	}
}

// Reporter returns the progress reporter for this TUI runner.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

// Run starts the TUI and executes work with progress reporting.
// Quitting the view before the batch returns cancels the batch.
func (r *Runner) Run(ctx context.Context, work Work) (*batch.Report, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.model.SetCancel(cancel)

	type result struct {
		report *batch.Report
		err    error
	}

	resultChan := make(chan result, 1)

	go func() {
		report, err := work(ctx, r.reporter)
		resultChan <- result{report: report, err: err}
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		res    result
		tuiErr error
	)

	select {
	case res = <-resultChan:
		// Let the user look at the final state until they quit.
		r.program.Send(BatchCompletedMsg{Report: res.report, Err: res.err})

		tuiErr = <-tuiDone

		r.reporter.Close()

	case tuiErr = <-tuiDone:
		// The view is gone, stop sending to it and wait for the batch to unwind.
		r.reporter.Close()
		cancel()

		res = <-resultChan
	}

	if res.err != nil {
		return res.report, res.err
	}

	return res.report, tuiErr
}
