// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cancellation turns interactive skip commands into requests for the batch.
//
// A request is delivered to the running solver when there is one, otherwise it is
// queued until the batch next checks for it. Each request is consumed exactly once.
package cancellation
