// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
)

// Event is a real-time update from the batch.
type Event struct {
	Type      EventType
	Group     string
	File      string
	Message   string
	Timestamp time.Time
	Data      EventData
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventBatchStarted is sent once with the totals of the batch.
	EventBatchStarted EventType = iota
	// EventGroupStarted is sent before the first file of a group.
	EventGroupStarted
	// EventStarted indicates a solver process is about to start.
	EventStarted
	// EventOutput carries one line of solver output.
	EventOutput
	// EventFinished is sent once per file with its outcome, including skipped files.
	EventFinished
	// EventBatchFinished is sent once after the last file.
	EventBatchFinished
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventBatchStarted:
		return "batch_started"
	case EventGroupStarted:
		return "group_started"
	case EventStarted:
		return "started"
	case EventOutput:
		return "output"
	case EventFinished:
		return "finished"
	case EventBatchFinished:
		return "batch_finished"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for progress events.
type EventData struct {
	// For EventBatchStarted.
	Groups int
	Files  int

	// For EventOutput.
	OutputLine string
	IsStderr   bool

	// For EventFinished.
	Outcome solver.Outcome
}

// Reporter receives progress events.
type Reporter interface {
	// Report must not block the batch.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener consumes events from a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// NullReporter drops every event.
type NullReporter struct{}

// Report does nothing.
func (NullReporter) Report(Event) {}

// Close does nothing.
func (NullReporter) Close() {}
