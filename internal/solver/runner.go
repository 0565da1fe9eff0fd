// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
)

const (
	// DefaultGracePeriod is how long a terminated process has to exit before it is killed.
	DefaultGracePeriod = 2 * time.Second
	// DefaultTickInterval is how often a running process is reported.
	DefaultTickInterval = 10 * time.Second
)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrCouldNotKillProcess is returned when the process did not exit after being killed.
	ErrCouldNotKillProcess = errors.New("could not kill process")
	// ErrTimeout is returned when the process exceeded its timeout.
	ErrTimeout = errors.New("timeout exceeded")
	// ErrNonZeroExit is returned when the process exited with a non-zero status.
	ErrNonZeroExit = errors.New("process exited with non-zero status")
	// ErrStopRequested is returned when the process was terminated on request.
	ErrStopRequested = errors.New("process terminated on request")
	// ErrCancelled is returned when the parent context was cancelled.
	ErrCancelled = errors.New("run cancelled")
)

// Invocation describes one solver run.
type Invocation struct {
	Path string
	Args []string
	// Timeout of zero means no timeout.
	Timeout time.Duration
	// Stdout and Stderr receive the process output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
	Label  string
}

// Runner runs solver processes. The zero value uses the default intervals.
type Runner struct {
	GracePeriod  time.Duration
	TickInterval time.Duration
}

// Args builds the solver command line: `-i <input> -o <output> [-w <weight>]`.
func Args(input, output string, weight float64, weighted bool) []string {
	args := []string{"-i", input, "-o", output}
	if weighted {
		args = append(args, "-w", strconv.FormatFloat(weight, 'f', -1, 64))
	}

	return args
}

type stopCause int

const (
	causeNone stopCause = iota
	causeTimeout
	causeRequest
	causeCancel
)

// Run starts the process and blocks until it has exited or been abandoned after kill.
// It never returns an error; every failure is described by the Outcome.
func (r *Runner) Run(ctx context.Context, inv Invocation, reg Registrar) Outcome {
	grace := r.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	tick := r.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}

	logger := ctxlog.Logger(ctx).With("label", inv.Label)
	logger.Debug("command info", "path", inv.Path, "args", inv.Args, "timeout", inv.Timeout)

	cmd := exec.Command(inv.Path, inv.Args...) //nolint:gosec
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	cmd.WaitDelay = grace
	configureProcess(cmd)

	start := time.Now()

	if err := cmd.Start(); err != nil {
		return Outcome{
			Kind:     Errored,
			ExitCode: -1,
			Err:      errors.Join(ErrCouldNotStartProcess, err),
		}
	}

	logger.Debug("process started", "pid", cmd.Process.Pid)

	h := NewHandle(inv.Label)
	if reg != nil {
		release := reg.Register(h)
		defer release()
	}

	waitCh := make(chan error, 1)

	go func() {
		waitCh <- cmd.Wait()
	}()

	var timeoutC <-chan time.Time

	if inv.Timeout > 0 {
		timer := time.NewTimer(inv.Timeout)
		defer timer.Stop()

		timeoutC = timer.C
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	cause := causeNone

	for cause == causeNone {
		select {
		case err := <-waitCh:
			return exitOutcome(err, cmd, h.Revoke(), time.Since(start))

		case <-ticker.C:
			logger.Info("still running", "elapsed", time.Since(start).Round(time.Second).String())

		case <-timeoutC:
			logger.Info("timeout exceeded, terminating process", "timeout", inv.Timeout.String())
			cause = causeTimeout

		case <-h.stop:
			logger.Info("termination requested", "reason", reasonString(h.reasonNow()))
			cause = causeRequest

		case <-ctx.Done():
			logger.Info("context done, terminating process")
			cause = causeCancel
		}
	}

	killErr := terminate(ctx, cmd, waitCh, grace)
	reason := h.Revoke()
	elapsed := time.Since(start)

	o := Outcome{ExitCode: -1, Elapsed: elapsed}

	switch {
	case cause == causeCancel:
		o.Kind = Errored
		o.Err = errors.Join(ErrCancelled, ctx.Err())
	case reason == StopSkipGroup:
		o.Kind = SkippedGroup
		o.Err = ErrStopRequested
	case cause == causeTimeout:
		o.Kind = TimedOut
		o.Err = fmt.Errorf("%w after %s", ErrTimeout, inv.Timeout)
	default:
		o.Kind = SkippedByUser
		o.Err = ErrStopRequested
	}

	if killErr != nil {
		o.Err = errors.Join(o.Err, killErr)
	}

	return o
}

// terminate asks the process group to exit, kills it after grace and gives up after
// a second grace period.
func terminate(ctx context.Context, cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	logger := ctxlog.Logger(ctx)

	if err := interruptProcess(cmd); err != nil {
		logger.Debug("interrupt failed", "pid", cmd.Process.Pid, "error", err.Error())
	}

	graceTimer := time.NewTimer(grace)
	defer graceTimer.Stop()

	select {
	case <-waitCh:
		return nil
	case <-graceTimer.C:
	}

	logger.Info("process did not exit after interrupt, killing", "pid", cmd.Process.Pid)

	if err := killProcess(cmd); err != nil {
		logger.Error("process kill error", "pid", cmd.Process.Pid, "error", err.Error())
	}

	graceTimer.Reset(grace)

	select {
	case <-waitCh:
		return nil
	case <-graceTimer.C:
		logger.Error("process did not exit after kill, abandoning", "pid", cmd.Process.Pid)
		return ErrCouldNotKillProcess
	}
}

func exitOutcome(err error, cmd *exec.Cmd, reason StopReason, elapsed time.Duration) Outcome {
	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	o := Outcome{ExitCode: code, Elapsed: elapsed}

	// A request accepted just before the process exited on its own still decides the outcome.
	switch reason {
	case StopSkipGroup:
		o.Kind = SkippedGroup
		o.Err = ErrStopRequested

		return o
	case StopSkipFile:
		o.Kind = SkippedByUser
		o.Err = ErrStopRequested

		return o
	}

	var exitErr *exec.ExitError

	switch {
	case err == nil:
		o.Kind = Completed
	case errors.As(err, &exitErr):
		o.Kind = Errored
		o.Err = fmt.Errorf("%w: exit code %d", ErrNonZeroExit, code)
	default:
		o.Kind = Errored
		o.Err = err
	}

	return o
}

func reasonString(r StopReason) string {
	switch r {
	case StopSkipFile:
		return "skip file"
	case StopSkipGroup:
		return "skip group"
	default:
		return "none"
	}
}
