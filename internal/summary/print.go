// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package summary

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/matt-FFFFFF/mapfbatch/internal/color"
)

// Summaries returns the table as one Summary per scenario type.
func (t Table) Summaries() []Summary {
	types := t.ScenarioTypes()
	out := make([]Summary, 0, len(types))

	for _, st := range types {
		out = append(out, Summary{ScenarioType: st, Rows: t.Rows(st)})
	}

	return out
}

// Print renders each summary as an aligned table.
func Print(w io.Writer, summaries ...Summary) error {
	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(w) //nolint:errcheck
		}

		fmt.Fprintln(w, color.Colorize(s.ScenarioType, color.Bold, color.FgHiCyan)) //nolint:errcheck

		keys := columns(s.Rows)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

		fmt.Fprintln(tw, "AGENTS\t"+strings.Join(keys, "\t")) //nolint:errcheck

		for _, r := range s.Rows {
			cells := make([]string, 0, len(keys)+1)
			cells = append(cells, strconv.Itoa(r.Agents))

			for _, k := range keys {
				v, ok := r.Get(k)
				if !ok {
					cells = append(cells, "-")
					continue
				}

				cells = append(cells, formatValue(v))
			}

			fmt.Fprintln(tw, strings.Join(cells, "\t")) //nolint:errcheck
		}

		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

// PrintComparison renders key side by side for several solvers.
// bySolver maps a solver result directory name to its summaries.
func PrintComparison(w io.Writer, key string, bySolver map[string][]Summary) error {
	solvers := slices.Sorted(maps.Keys(bySolver))

	type cell struct {
		st     string
		agents int
	}

	values := make(map[cell]map[string]float64)

	for _, name := range solvers {
		for _, s := range bySolver[name] {
			for _, r := range s.Rows {
				v, ok := r.Get(key)
				if !ok {
					continue
				}

				c := cell{st: s.ScenarioType, agents: r.Agents}
				if values[c] == nil {
					values[c] = make(map[string]float64)
				}

				values[c][name] = v
			}
		}
	}

	cells := slices.SortedFunc(maps.Keys(values), func(a, b cell) int {
		if c := strings.Compare(a.st, b.st); c != 0 {
			return c
		}

		return a.agents - b.agents
	})

	fmt.Fprintln(w, color.Colorize(key, color.Bold, color.FgHiCyan)) //nolint:errcheck

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tAGENTS\t"+strings.Join(solvers, "\t")) //nolint:errcheck

	for _, c := range cells {
		row := []string{c.st, strconv.Itoa(c.agents)}

		for _, name := range solvers {
			v, ok := values[c][name]
			if !ok {
				row = append(row, "-")
				continue
			}

			row = append(row, formatValue(v))
		}

		fmt.Fprintln(tw, strings.Join(row, "\t")) //nolint:errcheck
	}

	return tw.Flush()
}

// columns returns every field key in first-seen order.
func columns(rows []Row) []string {
	var keys []string

	seen := make(map[string]struct{})

	for _, r := range rows {
		for _, f := range r.Fields {
			if _, ok := seen[f.Key]; ok {
				continue
			}

			seen[f.Key] = struct{}{}
			keys = append(keys, f.Key)
		}
	}

	return keys
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}

	return strconv.FormatFloat(v, 'f', 3, 64)
}
