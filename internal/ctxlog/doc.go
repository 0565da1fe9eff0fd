// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a structured slog logger in a context.Context.
//
// The default logger writes to stdout through PrettyHandler, which renders the level,
// a timestamp and the message, followed by the record attributes as indented JSON.
// The level is read from MAPFBATCH_LOG_LEVEL at start up and defaults to INFO.
package ctxlog
