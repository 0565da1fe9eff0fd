// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
)

// Watch monitors the signal channel until it is closed or ctx is done.
// The first signal of a given type is only logged; the second one cancels the context.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, again := seen[sig]; again {
				ctxlog.Warn(ctx, "watchdog", "detail", "received second signal of type, stopping batch", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Warn(ctx, "watchdog", "detail", "received signal, send it again to stop the batch", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
