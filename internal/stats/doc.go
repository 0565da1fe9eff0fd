// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package stats reads the statistics block that the solver writes at the top of each
// output file, and loads every result of a results tree into metric samples.
package stats
