// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/mapfbatch/internal/batch"
	"github.com/matt-FFFFFF/mapfbatch/internal/cancellation"
	"github.com/matt-FFFFFF/mapfbatch/internal/linewriter"
	"github.com/matt-FFFFFF/mapfbatch/internal/progress"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
)

const (
	// title, blank line, border top and bottom, status, notice, help.
	reservedLines     = 7
	minViewportHeight = 3
	maxOutputWidth    = 120
	minOutputWidth    = 10
	statusPadding     = 20
	durationRounding  = 100 * time.Millisecond
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// BatchCompletedMsg indicates that the batch has returned.
type BatchCompletedMsg struct {
	Report *batch.Report
	Err    error
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case ProgressEventMsg:
		m.processProgressEvent(msg.Event)
		m.refresh()

		return m, nil

	case BatchCompletedMsg:
		m.completed = true
		m.report = msg.Report
		m.err = msg.Err
		m.current = nil
		m.refresh()

		if m.exitOnComplete {
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if !m.completed && m.cancel != nil {
			m.cancel()
		}

		m.quitting = true

		return m, tea.Quit

	case "s":
		m.request(cancellation.SkipFile)
		return m, nil

	case "S":
		m.request(cancellation.SkipGroup)
		return m, nil

	case "end", "G":
		m.follow = true
		m.viewport.GotoBottom()

		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.follow = m.viewport.AtBottom()

	return m, cmd
}

func (m *Model) request(k cancellation.Kind) {
	if m.completed || m.ctrl == nil {
		return
	}

	switch m.ctrl.Request(k) {
	case cancellation.Delivered:
		m.notice = fmt.Sprintf("%s requested, stopping solver", k)
	case cancellation.Queued:
		m.notice = fmt.Sprintf("%s queued for the next file", k)
	}
}

func (m *Model) processProgressEvent(e progress.Event) {
	switch e.Type {
	case progress.EventBatchStarted:
		m.totalGroups = e.Data.Groups
		m.totalFiles = e.Data.Files

	case progress.EventGroupStarted:
		m.group(e.Group)

	case progress.EventStarted:
		g := m.group(e.Group)
		f := &fileNode{name: e.File, running: true, started: e.Timestamp}
		g.files = append(g.files, f)
		m.current = f
		m.notice = ""

	case progress.EventOutput:
		if m.current != nil && m.current.name == e.File {
			if line := strings.TrimSpace(e.Data.OutputLine); line != "" {
				m.current.lastOutput = line
			}
		}

	case progress.EventFinished:
		g := m.group(e.Group)

		f := g.file(e.File)
		if f == nil {
			f = &fileNode{name: e.File}
			g.files = append(g.files, f)
		}

		f.running = false
		f.outcome = e.Data.Outcome
		m.done++
		m.counts[f.outcome.Kind]++

		if m.current == f {
			m.current = nil
		}

	case progress.EventBatchFinished:
		m.notice = e.Message
	}
}

func (m *Model) updateViewportSize() {
	h := m.height - reservedLines
	if h < minViewportHeight {
		h = minViewportHeight
	}

	// Border takes two columns.
	w := m.width - 2
	if w < 1 {
		w = 1
	}

	if !m.ready {
		m.viewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}

	m.refresh()
}

// refresh re-renders the tree into the viewport.
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.renderTree())

	if m.follow {
		m.viewport.GotoBottom()
	}
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Starting batch...\n"
	}

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("MAPF batch"))
	view.WriteString("  ")
	view.WriteString(m.renderCounts())
	view.WriteString("\n\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))
	view.WriteString("\n")
	view.WriteString(m.renderStatus())
	view.WriteString("\n")
	view.WriteString(m.styles.Notice.Render(m.notice))
	view.WriteString("\n")

	help := "s skip file · S skip group · ↑/↓ scroll · q stop and quit"
	if m.completed {
		help = "↑/↓ scroll · q quit"
	}

	view.WriteString(m.styles.Help.Render(help))

	return view.String()
}

func (m *Model) renderCounts() string {
	failed := m.counts[solver.Errored] + m.counts[solver.TimedOut]
	skipped := m.counts[solver.SkippedExisting] + m.counts[solver.SkippedByUser] + m.counts[solver.SkippedGroup]

	return fmt.Sprintf("%d/%d files in %d groups  %s  %s  %s",
		m.done, m.totalFiles, m.totalGroups,
		m.styles.Success.Render(fmt.Sprintf("✓ %d", m.counts[solver.Completed])),
		m.styles.Failed.Render(fmt.Sprintf("✗ %d", failed)),
		m.styles.Skipped.Render(fmt.Sprintf("~ %d", skipped)),
	)
}

func (m *Model) renderStatus() string {
	switch {
	case m.completed && m.err != nil:
		return m.styles.Failed.Render("Batch stopped: " + m.err.Error())
	case m.completed && m.report != nil && m.report.HasFailures():
		return m.styles.Failed.Render("Batch finished with failures")
	case m.completed:
		return m.styles.Success.Render("Batch finished")
	case m.current == nil:
		return m.styles.Skipped.Render("waiting")
	}

	elapsed := time.Since(m.current.started).Round(durationRounding)
	status := fmt.Sprintf("%s %s (%v)", m.spinner.View(), m.styles.Running.Render(m.current.name), elapsed)

	if m.current.lastOutput != "" {
		width := maxOutputWidth
		if m.width > 0 {
			width = min(width, max(m.width-len(m.current.name)-statusPadding, minOutputWidth))
		}

		status += "  " + m.styles.Output.Render(linewriter.Truncate(m.current.lastOutput, width))
	}

	return status
}

func (m *Model) renderTree() string {
	var b strings.Builder

	for _, g := range m.groups {
		finished := 0

		for _, f := range g.files {
			if !f.running {
				finished++
			}
		}

		fmt.Fprintf(&b, "%s (%d)\n", m.styles.Title.Render(g.name), finished)

		for i, f := range g.files {
			connector := "├── "
			if i == len(g.files)-1 {
				connector = "└── "
			}

			b.WriteString(m.styles.TreeBranch.Render(connector))
			b.WriteString(m.renderFile(f))
			b.WriteString("\n")
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m *Model) renderFile(f *fileNode) string {
	if f.running {
		return m.styles.Running.Render("⚡ " + f.name)
	}

	o := f.outcome

	switch o.Kind {
	case solver.Completed:
		return m.styles.Success.Render(fmt.Sprintf("✓ %s (%v)", f.name, o.Elapsed.Round(durationRounding)))
	case solver.TimedOut:
		return m.styles.Failed.Render(fmt.Sprintf("✗ %s timed out after %v", f.name, o.Elapsed.Round(durationRounding)))
	case solver.Errored:
		line := "✗ " + f.name
		if o.Err != nil {
			line += ": " + o.Err.Error()
		}

		return m.styles.Failed.Render(line)
	default:
		return m.styles.Skipped.Render(fmt.Sprintf("~ %s (%s)", f.name, o.Kind))
	}
}
