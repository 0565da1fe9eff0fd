// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS signals that should stop a batch run.
// By default it listens for os.Interrupt, syscall.SIGTERM and syscall.SIGQUIT.
//
// Solver processes run in their own process group, so a terminal Ctrl-C only reaches
// the batch process. Watch turns the second signal of a kind into a context
// cancellation, which the orchestrator honours by terminating the active solver.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
)

var termSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// New creates a channel that receives the given signals, or the default termination signals.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop stops delivery of signals to ch.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
