// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries batch lifecycle events from the orchestrator to
// the interactive view or the log.
package progress
