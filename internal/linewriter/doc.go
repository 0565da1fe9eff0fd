// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package linewriter provides an io.Writer that splits solver output into lines
// and remembers the last complete one for progress display.
package linewriter
