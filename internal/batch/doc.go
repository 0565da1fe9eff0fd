// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch runs the solver over every scenario file, one at a time, and records
// an outcome for each. It is resumable: files whose output already exists are skipped.
package batch
