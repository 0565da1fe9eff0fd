// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cancellation

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
)

// Usage describes the interactive commands.
const Usage = "type 's' + Enter to skip the current file, 'S' + Enter to skip the current group"

// Kind is the kind of skip request.
type Kind int

const (
	// SkipFile skips the current file.
	SkipFile Kind = iota
	// SkipGroup skips the rest of the current group.
	SkipGroup
)

func (k Kind) String() string {
	switch k {
	case SkipFile:
		return "skip file"
	case SkipGroup:
		return "skip group"
	default:
		return "unknown"
	}
}

func (k Kind) reason() solver.StopReason {
	if k == SkipGroup {
		return solver.StopSkipGroup
	}

	return solver.StopSkipFile
}

// Delivery describes what happened to a request.
type Delivery int

const (
	// Delivered means the running solver accepted the request.
	Delivered Delivery = iota
	// Queued means the request waits for the next checkpoint.
	Queued
)

var _ solver.Registrar = (*Controller)(nil)

// Controller holds the running solver's handle and any pending requests.
type Controller struct {
	mu     sync.Mutex
	active *solver.Handle

	skipFile  chan struct{}
	skipGroup chan struct{}
}

// New returns a controller with no pending requests.
func New() *Controller {
	return &Controller{
		skipFile:  make(chan struct{}, 1),
		skipGroup: make(chan struct{}, 1),
	}
}

// Register makes h the active handle until the returned func is called.
// Requests queued since the orchestrator's last checkpoint are delivered to h,
// since they were made while h's file was already the current one.
func (c *Controller) Register(h *solver.Handle) func() {
	c.mu.Lock()
	c.active = h

	for _, k := range []Kind{SkipGroup, SkipFile} {
		if c.Take(k) {
			h.Terminate(k.reason())
		}
	}

	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.active == h {
			c.active = nil
		}
	}
}

// Request delivers a skip to the running solver, or queues it when nothing is running
// or the solver has already exited. Queued requests of the same kind coalesce.
func (c *Controller) Request(k Kind) Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil && c.active.Terminate(k.reason()) {
		return Delivered
	}

	select {
	case c.pending(k) <- struct{}{}:
	default:
	}

	return Queued
}

// Take consumes a pending request of kind k if there is one.
func (c *Controller) Take(k Kind) bool {
	select {
	case <-c.pending(k):
		return true
	default:
		return false
	}
}

func (c *Controller) pending(k Kind) chan struct{} {
	if k == SkipGroup {
		return c.skipGroup
	}

	return c.skipFile
}

// Listen reads commands from r, one per line, until r is exhausted or ctx is done.
// The goroutine reading r exits only when r returns EOF or an error.
func (c *Controller) Listen(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}

		errCh <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					return err
				default:
					return ctx.Err()
				}
			}

			c.handle(ctx, line)
		}
	}
}

func (c *Controller) handle(ctx context.Context, line string) {
	cmd := strings.TrimSpace(line)

	var k Kind

	switch cmd {
	case "":
		return
	case "s", "skip":
		k = SkipFile
	case "S", "skip-group":
		k = SkipGroup
	default:
		ctxlog.Warn(ctx, "unknown command", "command", cmd, "usage", Usage)
		return
	}

	switch c.Request(k) {
	case Delivered:
		ctxlog.Info(ctx, "skip requested", "kind", k.String())
	case Queued:
		ctxlog.Info(ctx, "skip queued for the next file", "kind", k.String())
	}
}
