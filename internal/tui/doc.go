// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a live terminal view of a batch run. It shows every scenario
// group as a tree of files with their outcomes, the running solver with its last
// line of output, and forwards the s and S keys to the skip controller.
//
// Quitting the view before the batch has finished cancels the batch.
package tui
