// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package metrics

import (
	"maps"
	"slices"
)

// Sample is one value of one metric reported for one scenario file.
type Sample struct {
	Metric       Metric
	ScenarioType string
	Agents       int
	Value        float64
}

// Samples is a multiset of samples. Order is irrelevant.
type Samples []Sample

// Key identifies an aggregation bucket.
type Key struct {
	Metric       Metric
	ScenarioType string
	Agents       int
}

// Bucket accumulates the samples that share a Key.
type Bucket struct {
	Count int
	Sum   float64
}

// Mean returns the arithmetic mean of the bucket.
// It must not be called on an empty bucket.
func (b Bucket) Mean() float64 {
	return b.Sum / float64(b.Count)
}

// Averages maps metric -> scenario type -> agent count -> mean value.
// Only agent counts with at least one sample are present.
type Averages map[Metric]map[string]map[int]float64

// TypeMeta describes all samples of one metric for one scenario type.
type TypeMeta struct {
	// Average pools every sample of the scenario type, so agent counts with
	// more samples weigh more.
	Average         float64
	MaxAgentCount   int
	NumAgentCounts  int
	SamplesPerAgent map[int]int
}

// Metadata maps metric -> scenario type -> summary of that metric.
type Metadata map[Metric]map[string]TypeMeta

// FastCounts maps scenario type -> agent count -> number of runtime samples below a threshold.
type FastCounts map[string]map[int]int

// Buckets groups samples by (metric, scenario type, agent count).
// Samples with an unknown metric are ignored.
func Buckets(samples Samples) map[Key]Bucket {
	out := make(map[Key]Bucket)

	for _, s := range samples {
		if !s.Metric.Valid() {
			continue
		}

		k := Key{Metric: s.Metric, ScenarioType: s.ScenarioType, Agents: s.Agents}
		b := out[k]
		b.Count++
		b.Sum += s.Value
		out[k] = b
	}

	return out
}

// Compute averages the samples of the requested metrics.
// Every call recomputes from the full sample set.
func Compute(samples Samples, requested []Metric) (Averages, Metadata) {
	avg := make(Averages, len(requested))
	meta := make(Metadata, len(requested))

	wanted := make(map[Metric]struct{}, len(requested))

	for _, m := range requested {
		wanted[m] = struct{}{}
		avg[m] = make(map[string]map[int]float64)
		meta[m] = make(map[string]TypeMeta)
	}

	type pooled struct {
		count int
		sum   float64
	}

	pools := make(map[Metric]map[string]*pooled)

	for k, b := range Buckets(samples) {
		if _, ok := wanted[k.Metric]; !ok {
			continue
		}

		byType, ok := avg[k.Metric][k.ScenarioType]
		if !ok {
			byType = make(map[int]float64)
			avg[k.Metric][k.ScenarioType] = byType
		}

		byType[k.Agents] = b.Mean()

		tm, ok := meta[k.Metric][k.ScenarioType]
		if !ok {
			tm = TypeMeta{SamplesPerAgent: make(map[int]int)}
		}

		tm.SamplesPerAgent[k.Agents] = b.Count
		tm.NumAgentCounts = len(tm.SamplesPerAgent)
		tm.MaxAgentCount = max(tm.MaxAgentCount, k.Agents)
		meta[k.Metric][k.ScenarioType] = tm

		if pools[k.Metric] == nil {
			pools[k.Metric] = make(map[string]*pooled)
		}

		p, ok := pools[k.Metric][k.ScenarioType]
		if !ok {
			p = &pooled{}
			pools[k.Metric][k.ScenarioType] = p
		}

		p.count += b.Count
		p.sum += b.Sum
	}

	for m, byType := range pools {
		for st, p := range byType {
			tm := meta[m][st]
			tm.Average = p.sum / float64(p.count)
			meta[m][st] = tm
		}
	}

	return avg, meta
}

// CountFast counts, per scenario type and agent count, the runtime samples
// strictly below threshold. Only agent counts with runtime samples are present.
func CountFast(samples Samples, threshold float64) FastCounts {
	out := make(FastCounts)

	for _, s := range samples {
		if s.Metric != Runtime {
			continue
		}

		byAgents, ok := out[s.ScenarioType]
		if !ok {
			byAgents = make(map[int]int)
			out[s.ScenarioType] = byAgents
		}

		n := byAgents[s.Agents]
		if s.Value < threshold {
			n++
		}

		byAgents[s.Agents] = n
	}

	return out
}

// ScenarioTypes returns every scenario type present for any metric, sorted.
func (a Averages) ScenarioTypes() []string {
	set := make(map[string]struct{})

	for _, byType := range a {
		for st := range byType {
			set[st] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(set))
}

// AgentCounts returns every agent count present for the scenario type, ascending.
func (a Averages) AgentCounts(scenarioType string) []int {
	set := make(map[int]struct{})

	for _, byType := range a {
		for n := range byType[scenarioType] {
			set[n] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(set))
}

// Lookup returns the average for a bucket and whether it exists.
func (a Averages) Lookup(m Metric, scenarioType string, agents int) (float64, bool) {
	v, ok := a[m][scenarioType][agents]
	return v, ok
}
