// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package solver

import "sync"

// StopReason is why a running process was asked to terminate.
// A larger value takes priority when several requests arrive.
type StopReason int

const (
	// StopNone means nobody asked the process to stop.
	StopNone StopReason = iota
	// StopSkipFile skips the current file only.
	StopSkipFile
	// StopSkipGroup skips the rest of the current group.
	StopSkipGroup
)

// Registrar is told about each running process.
// The returned func is called once the process has exited.
type Registrar interface {
	Register(h *Handle) (release func())
}

// Handle is a revocable capability to terminate one running process.
type Handle struct {
	label string

	mu      sync.Mutex
	revoked bool
	reason  StopReason
	stop    chan struct{}
}

// NewHandle returns a live handle for the process identified by label.
func NewHandle(label string) *Handle {
	return &Handle{
		label: label,
		stop:  make(chan struct{}),
	}
}

// Label identifies the process being run.
func (h *Handle) Label() string {
	return h.label
}

// Terminate asks the process to stop and reports whether the request was accepted.
// It returns false once the process has exited.
func (h *Handle) Terminate(reason StopReason) bool {
	if reason == StopNone {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.revoked {
		return false
	}

	if h.reason == StopNone {
		close(h.stop)
	}

	h.reason = max(h.reason, reason)

	return true
}

// Revoke makes the handle inert and returns the strongest reason recorded.
func (h *Handle) Revoke() StopReason {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.revoked = true

	return h.reason
}

// reasonNow returns the strongest reason recorded so far.
func (h *Handle) reasonNow() StopReason {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.reason
}
