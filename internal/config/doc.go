// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config holds the batch configuration file format and its defaults.
//
// Example:
//
//	inputs: ./scenarios
//	solver: ./build/libMultiRobotPlanning/ecbs
//	weight: 1.1
//	timeout: 3m
//	limit: 10
//	metrics: [cost, runtime]
//	fast_thresholds: [1, 10]
package config
