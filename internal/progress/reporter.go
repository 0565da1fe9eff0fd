// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
)

// ChannelReporter implements Reporter using a buffered channel.
// Events are dropped rather than block when the buffer is full.
type ChannelReporter struct {
	mu     sync.RWMutex
	closed bool
	ch     chan Event
	wg     sync.WaitGroup
}

// NewChannelReporter creates a ChannelReporter with the given buffer size.
func NewChannelReporter(bufferSize int) *ChannelReporter {
	return &ChannelReporter{
		ch: make(chan Event, bufferSize),
	}
}

// Report sends the event without blocking. Events reported after Close are dropped.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	default:
	}
}

// ReportBlocking sends the event and waits for buffer space.
// Used for events that must not be dropped, such as outcomes.
func (cr *ChannelReporter) ReportBlocking(ctx context.Context, event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	case <-ctx.Done():
	}
}

// Close closes the channel and waits for a running Listen to drain it.
func (cr *ChannelReporter) Close() {
	cr.mu.Lock()

	if cr.closed {
		cr.mu.Unlock()
		return
	}

	cr.closed = true
	close(cr.ch)
	cr.mu.Unlock()

	cr.wg.Wait()
}

// Listen forwards events to listener in a new goroutine until the reporter is closed.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for event := range cr.ch {
			listener.OnEvent(event)
		}
	}()
}

// Events returns the event channel for callers that consume events directly.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}

// LogReporter writes events to the context logger. It is used when there is
// no interactive view.
type LogReporter struct {
	ctx context.Context //nolint:containedctx
	// Output logs solver output lines at debug level when true.
	Output bool
}

// NewLogReporter returns a reporter that logs through the logger in ctx.
func NewLogReporter(ctx context.Context) *LogReporter {
	return &LogReporter{ctx: ctx}
}

// Report logs the event.
func (lr *LogReporter) Report(e Event) {
	switch e.Type {
	case EventBatchStarted:
		ctxlog.Info(lr.ctx, "batch started", "groups", e.Data.Groups, "files", e.Data.Files)
	case EventGroupStarted:
		ctxlog.Info(lr.ctx, "group started", "group", e.Group)
	case EventStarted:
		ctxlog.Info(lr.ctx, "solver started", "group", e.Group, "file", e.File)
	case EventOutput:
		if lr.Output {
			ctxlog.Debug(lr.ctx, "solver output", "file", e.File, "line", e.Data.OutputLine)
		}
	case EventFinished:
		lr.finished(e)
	case EventBatchFinished:
		ctxlog.Info(lr.ctx, "batch finished", "message", e.Message)
	}
}

// OnEvent implements Listener so a LogReporter can drain a ChannelReporter.
func (lr *LogReporter) OnEvent(e Event) {
	lr.Report(e)
}

func (lr *LogReporter) finished(e Event) {
	o := e.Data.Outcome
	args := []any{
		"group", e.Group,
		"file", e.File,
		"outcome", o.Kind.String(),
		"elapsed", o.Elapsed.Round(time.Millisecond).String(),
	}

	if o.Err != nil {
		args = append(args, "error", o.Err.Error())
	}

	switch o.Kind {
	case solver.Errored, solver.TimedOut:
		ctxlog.Warn(lr.ctx, "file finished", args...)
	default:
		ctxlog.Info(lr.ctx, "file finished", args...)
	}
}

// Close does nothing.
func (lr *LogReporter) Close() {}
