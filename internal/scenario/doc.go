// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scenario discovers scenario groups and files on disk and
// knows the naming conventions that link an input file to its solver output.
package scenario
