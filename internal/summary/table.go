// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package summary

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/token"
	"github.com/matt-FFFFFF/mapfbatch/internal/metrics"
)

// NumScenariosKey holds the largest per-metric sample count of a record.
const NumScenariosKey = "num_scenarios"

// Extra is an additional per (scenario type, agent count) count written into each record.
type Extra struct {
	Key    string
	Counts map[string]map[int]int
}

// Table is everything needed to write the summary of one results tree.
type Table struct {
	Metrics  []metrics.Metric
	Averages metrics.Averages
	Metadata metrics.Metadata
	Extras   []Extra
}

// Field is one key/value pair of a record.
type Field struct {
	Key   string
	Value float64
	// Count fields are written as integers.
	Count bool
}

// Row is the record of a single agent count.
type Row struct {
	Agents int
	Fields []Field
}

// Get returns the value of key and whether the row has it.
func (r Row) Get(key string) (float64, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}

	return 0, false
}

// FastKey names the extra count of runtimes below threshold seconds, e.g. "solved_under_1s".
func FastKey(threshold float64) string {
	return "solved_under_" + strconv.FormatFloat(threshold, 'f', -1, 64) + "s"
}

// Build aggregates samples for the requested metrics and adds one fast-solve
// count per threshold.
func Build(samples metrics.Samples, requested []metrics.Metric, fastThresholds []float64) Table {
	avg, meta := metrics.Compute(samples, requested)

	t := Table{
		Metrics:  requested,
		Averages: avg,
		Metadata: meta,
	}

	for _, th := range fastThresholds {
		t.Extras = append(t.Extras, Extra{
			Key:    FastKey(th),
			Counts: metrics.CountFast(samples, th),
		})
	}

	return t
}

// ScenarioTypes returns every scenario type with at least one row, sorted.
func (t Table) ScenarioTypes() []string {
	set := make(map[string]struct{})

	for _, st := range t.Averages.ScenarioTypes() {
		set[st] = struct{}{}
	}

	for _, e := range t.Extras {
		for st := range e.Counts {
			set[st] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(set))
}

// Rows returns the records of a scenario type in ascending agent count order.
func (t Table) Rows(scenarioType string) []Row {
	set := make(map[int]struct{})

	for _, n := range t.Averages.AgentCounts(scenarioType) {
		set[n] = struct{}{}
	}

	for _, e := range t.Extras {
		for n := range e.Counts[scenarioType] {
			set[n] = struct{}{}
		}
	}

	agents := slices.Sorted(maps.Keys(set))
	rows := make([]Row, 0, len(agents))

	for _, n := range agents {
		rows = append(rows, t.row(scenarioType, n))
	}

	return rows
}

func (t Table) row(scenarioType string, agents int) Row {
	r := Row{Agents: agents}
	most := 0

	for _, m := range t.Metrics {
		v, ok := t.Averages.Lookup(m, scenarioType, agents)
		if !ok {
			continue
		}

		n := t.Metadata[m][scenarioType].SamplesPerAgent[agents]
		most = max(most, n)

		r.Fields = append(r.Fields,
			Field{Key: m.AverageKey(), Value: v},
			Field{Key: m.CountKey(), Value: float64(n), Count: true},
		)
	}

	r.Fields = append(r.Fields, Field{Key: NumScenariosKey, Value: float64(most), Count: true})

	for _, e := range t.Extras {
		n, ok := e.Counts[scenarioType][agents]
		if !ok {
			continue
		}

		r.Fields = append(r.Fields, Field{Key: e.Key, Value: float64(n), Count: true})
	}

	return r
}

// marshalRows renders rows as a YAML mapping keyed by agent count in ascending order.
// The mapping is built from string keys and then given integer key nodes, so the
// counts are written as plain numbers and decode into integer keys.
func marshalRows(rows []Row) ([]byte, error) {
	out := make(yaml.MapSlice, 0, len(rows))

	for _, r := range rows {
		rec := make(yaml.MapSlice, 0, len(r.Fields))

		for _, f := range r.Fields {
			rec = append(rec, yaml.MapItem{Key: f.Key, Value: yamlNumber(f)})
		}

		out = append(out, yaml.MapItem{Key: strconv.Itoa(r.Agents), Value: rec})
	}

	node, err := yaml.ValueToNode(out)
	if err != nil {
		return nil, err
	}

	mapping, ok := node.(*ast.MappingNode)
	if !ok || len(mapping.Values) != len(rows) {
		return nil, fmt.Errorf("unexpected summary node %T", node)
	}

	for i, mv := range mapping.Values {
		n := strconv.Itoa(rows[i].Agents)
		mv.Key = ast.Integer(token.New(n, n, mv.Key.GetToken().Position))
	}

	return []byte(mapping.String() + "\n"), nil
}

func yamlNumber(f Field) any {
	if f.Count {
		return int(f.Value)
	}

	return f.Value
}
