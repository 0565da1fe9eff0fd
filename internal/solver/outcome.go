// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package solver

import (
	"fmt"
	"time"
)

// Kind is the kind of outcome of one scenario file.
type Kind int

const (
	// Completed means the solver exited with status zero within the timeout.
	Completed Kind = iota
	// TimedOut means the solver was terminated after exceeding the timeout.
	TimedOut
	// SkippedExisting means the output already existed and the solver was not run.
	SkippedExisting
	// SkippedByUser means the user skipped the file.
	SkippedByUser
	// SkippedGroup means the user skipped the rest of the group.
	SkippedGroup
	// Errored means the solver could not be run or exited with a non-zero status.
	Errored
)

var kindNames = map[Kind]string{
	Completed:       "completed",
	TimedOut:        "timed_out",
	SkippedExisting: "skipped_existing",
	SkippedByUser:   "skipped_by_user",
	SkippedGroup:    "skipped_group",
	Errored:         "errored",
}

// Kinds lists every kind in reporting order.
var Kinds = []Kind{Completed, TimedOut, SkippedExisting, SkippedByUser, SkippedGroup, Errored}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown outcome kind %d", int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}

	return fmt.Errorf("unknown outcome kind %q", string(b))
}

// Outcome is the result of one scenario file. It is never modified once created.
type Outcome struct {
	Kind     Kind
	ExitCode int
	Err      error
	Elapsed  time.Duration
}

// Skipped reports whether the solver did not run to completion because of a skip.
func (o Outcome) Skipped() bool {
	return o.Kind == SkippedExisting || o.Kind == SkippedByUser || o.Kind == SkippedGroup
}
