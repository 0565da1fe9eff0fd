// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package summary turns aggregated metrics into per-scenario-type summary records,
// writes them to `global_averages_<type>.yaml` files and reads them back.
//
// A record is keyed by agent count and holds, for every metric with data,
// `average_<metric>` and `num_scenarios_<metric>`, plus `num_scenarios` and any extra
// counts such as `solved_under_1s`.
package summary
