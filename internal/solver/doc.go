// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package solver runs a single solver process with a timeout.
//
// While the process is alive a Handle is registered with a Registrar so that another
// goroutine can ask for it to be terminated. The handle is revoked as soon as the
// process exits; terminating a revoked handle is a no-op that reports false, which lets
// the caller queue the request for the next file instead.
package solver
