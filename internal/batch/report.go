// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/mapfbatch/internal/color"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
	"github.com/spf13/afero"
)

var (
	// ErrSaveReport is returned when the report cannot be written.
	ErrSaveReport = errors.New("failed to save report")
	// ErrLoadReport is returned when a saved report cannot be read.
	ErrLoadReport = errors.New("failed to load report")
)

// Entry is the recorded outcome of one scenario file.
type Entry struct {
	Group   string
	File    string
	Input   string
	Output  string
	Outcome solver.Outcome
}

// Report collects every outcome of one batch run in execution order.
type Report struct {
	Root      string
	Solver    string
	ResultDir string
	Started   time.Time
	Finished  time.Time
	Entries   []Entry
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Counts returns the number of entries per outcome kind.
func (r *Report) Counts() map[solver.Kind]int {
	out := make(map[solver.Kind]int, len(solver.Kinds))
	for _, e := range r.Entries {
		out[e.Outcome.Kind]++
	}

	return out
}

// HasFailures reports whether any file errored or timed out.
func (r *Report) HasFailures() bool {
	c := r.Counts()
	return c[solver.Errored] > 0 || c[solver.TimedOut] > 0
}

// Summary is a one-line description of the counts, e.g. "4 files: 3 completed, 1 timed_out".
func (r *Report) Summary() string {
	c := r.Counts()
	parts := make([]string, 0, len(solver.Kinds))

	for _, k := range solver.Kinds {
		if c[k] == 0 {
			continue
		}

		parts = append(parts, fmt.Sprintf("%d %s", c[k], k))
	}

	if len(parts) == 0 {
		return "0 files"
	}

	return fmt.Sprintf("%d files: %s", len(r.Entries), strings.Join(parts, ", "))
}

// WriteText writes the report as a tree of groups and files.
func (r *Report) WriteText(w io.Writer) error {
	var (
		group string
		start int
	)

	for i, e := range r.Entries {
		if i == 0 || e.Group != group {
			group = e.Group
			start = i

			end := i
			for end < len(r.Entries) && r.Entries[end].Group == group {
				end++
			}

			writeGroupLine(w, group, r.Entries[start:end])
		}

		writeEntry(w, e)
	}

	_, err := fmt.Fprintf(w, "%s\n", color.Colorize(r.Summary(), color.Bold))

	return err
}

func writeGroupLine(w io.Writer, group string, entries []Entry) {
	status := solver.Completed
	skipped := 0

	for _, e := range entries {
		switch {
		case e.Outcome.Kind == solver.Errored || e.Outcome.Kind == solver.TimedOut:
			status = solver.Errored
		case e.Outcome.Skipped():
			skipped++
		}
	}

	if status != solver.Errored && skipped == len(entries) {
		status = solver.SkippedExisting
	}

	mark, prefix := marker(status)
	fmt.Fprintf(w, "%s %s%s%s\n", mark, prefix, group, color.ControlString(color.Reset)) //nolint:errcheck
}

func writeEntry(w io.Writer, e Entry) {
	o := e.Outcome
	mark, prefix := marker(o.Kind)

	fmt.Fprintf(w, "  %s %s%s%s", mark, prefix, e.File, color.ControlString(color.Reset)) //nolint:errcheck

	switch o.Kind {
	case solver.Completed, solver.TimedOut:
		fmt.Fprintf(w, " (%s)", o.Elapsed.Round(time.Millisecond)) //nolint:errcheck
	case solver.Errored:
		if o.ExitCode > 0 {
			fmt.Fprintf(w, " (exit code: %d)", o.ExitCode) //nolint:errcheck
		}
	}

	if o.Skipped() {
		fmt.Fprintf(w, " %s", color.Colorize(skipReason(o.Kind), color.Faint)) //nolint:errcheck
	}

	fmt.Fprintln(w) //nolint:errcheck

	if o.Err != nil && (o.Kind == solver.Errored || o.Kind == solver.TimedOut) {
		fmt.Fprintf(w, "    %s %s\n", color.Colorize("➜ Error:", color.FgRed), o.Err.Error()) //nolint:errcheck
	}
}

func marker(k solver.Kind) (string, string) {
	switch k {
	case solver.Completed:
		return color.Colorize("✓", color.FgGreen), color.ControlString(color.Bold, color.FgGreen)
	case solver.Errored, solver.TimedOut:
		return color.Colorize("✗", color.FgRed), color.ControlString(color.Bold, color.FgRed)
	default:
		return color.Colorize("~", color.FgYellow), color.ControlString(color.Bold, color.FgYellow)
	}
}

func skipReason(k solver.Kind) string {
	switch k {
	case solver.SkippedExisting:
		return "output exists"
	case solver.SkippedByUser:
		return "skipped by user"
	case solver.SkippedGroup:
		return "group skipped"
	default:
		return ""
	}
}

type reportDoc struct {
	Root      string     `yaml:"root"`
	Solver    string     `yaml:"solver"`
	ResultDir string     `yaml:"result_dir"`
	Started   string     `yaml:"started"`
	Finished  string     `yaml:"finished"`
	Entries   []entryDoc `yaml:"entries"`
}

type entryDoc struct {
	Group          string  `yaml:"group"`
	File           string  `yaml:"file"`
	Input          string  `yaml:"input"`
	Output         string  `yaml:"output"`
	Outcome        string  `yaml:"outcome"`
	ExitCode       int     `yaml:"exit_code"`
	ElapsedSeconds float64 `yaml:"elapsed_seconds"`
	Error          string  `yaml:"error,omitempty"`
}

// Save writes the report as YAML.
func (r *Report) Save(fsys afero.Fs, path string) error {
	doc := reportDoc{
		Root:      r.Root,
		Solver:    r.Solver,
		ResultDir: r.ResultDir,
		Started:   formatTime(r.Started),
		Finished:  formatTime(r.Finished),
		Entries:   make([]entryDoc, 0, len(r.Entries)),
	}

	for _, e := range r.Entries {
		ed := entryDoc{
			Group:          e.Group,
			File:           e.File,
			Input:          e.Input,
			Output:         e.Output,
			Outcome:        e.Outcome.Kind.String(),
			ExitCode:       e.Outcome.ExitCode,
			ElapsedSeconds: e.Outcome.Elapsed.Seconds(),
		}

		if e.Outcome.Err != nil {
			ed.Error = e.Outcome.Err.Error()
		}

		doc.Entries = append(doc.Entries, ed)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Join(ErrSaveReport, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return errors.Join(ErrSaveReport, err)
		}
	}

	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return errors.Join(ErrSaveReport, err)
	}

	return nil
}

// LoadReport reads a report written by Save.
func LoadReport(fsys afero.Fs, path string) (*Report, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Join(ErrLoadReport, err)
	}

	var doc reportDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadReport, path, err)
	}

	r := &Report{
		Root:      doc.Root,
		Solver:    doc.Solver,
		ResultDir: doc.ResultDir,
		Started:   parseTime(doc.Started),
		Finished:  parseTime(doc.Finished),
		Entries:   make([]Entry, 0, len(doc.Entries)),
	}

	for _, ed := range doc.Entries {
		var kind solver.Kind
		if err := kind.UnmarshalText([]byte(ed.Outcome)); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadReport, path, err)
		}

		o := solver.Outcome{
			Kind:     kind,
			ExitCode: ed.ExitCode,
			Elapsed:  time.Duration(ed.ElapsedSeconds * float64(time.Second)),
		}

		if ed.Error != "" {
			o.Err = errors.New(ed.Error)
		}

		r.Entries = append(r.Entries, Entry{
			Group:   ed.Group,
			File:    ed.File,
			Input:   ed.Input,
			Output:  ed.Output,
			Outcome: o,
		})
	}

	return r, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
