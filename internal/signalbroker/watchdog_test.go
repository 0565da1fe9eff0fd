// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"go.uber.org/goleak"
)

func quietContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	return ctxlog.New(ctx, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))), cancel
}

func TestWatch_FirstSignalNoCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := quietContext()
	defer cancel()

	sigCh := make(chan os.Signal, 1)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()

	sigCh <- os.Interrupt

	time.Sleep(50 * time.Millisecond)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled after first signal")
	default:
	}

	close(sigCh)
	wg.Wait()
}

func TestWatch_SecondSignalCancels(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := quietContext()
	defer cancel()

	sigCh := make(chan os.Signal, 2)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()

	sigCh <- os.Interrupt
	sigCh <- os.Interrupt

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context should be cancelled after second signal")
	}

	wg.Wait()
}

func TestWatch_DifferentSignalsNoCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := quietContext()
	defer cancel()

	sigCh := make(chan os.Signal, 2)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()

	sigCh <- os.Interrupt
	sigCh <- os.Kill

	time.Sleep(50 * time.Millisecond)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled for different signals")
	default:
	}

	close(sigCh)
	wg.Wait()
}

func TestWatch_ReturnsOnContextDone(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := quietContext()
	sigCh := make(chan os.Signal, 1)

	done := make(chan struct{})

	go func() {
		defer close(done)
		Watch(ctx, sigCh, cancel)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch should return when the context is done")
	}
}
