// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package metrics aggregates solver statistics by metric, scenario type and agent count.
//
// Samples are grouped into buckets and averaged per agent count. Metadata carries the
// average pooled over all agent counts of a scenario type, which is not the same as the
// mean of the per-agent-count averages when sample counts differ. Missing data is never
// reported as zero: a (metric, scenario type, agent count) without samples is absent.
package metrics
