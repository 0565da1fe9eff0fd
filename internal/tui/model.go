// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/mapfbatch/internal/batch"
	"github.com/matt-FFFFFF/mapfbatch/internal/cancellation"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
)

// Requester accepts skip requests from the keyboard.
type Requester interface {
	Request(k cancellation.Kind) cancellation.Delivery
}

// fileNode is one scenario file in the view.
type fileNode struct {
	name       string
	running    bool
	outcome    solver.Outcome
	started    time.Time
	lastOutput string
}

// groupNode is one scenario group in the view, holding the files seen so far.
type groupNode struct {
	name  string
	files []*fileNode
}

func (g *groupNode) file(name string) *fileNode {
	for _, f := range g.files {
		if f.name == name {
			return f
		}
	}

	return nil
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	ctrl   Requester
	cancel context.CancelFunc

	groups      []*groupNode
	current     *fileNode
	totalGroups int
	totalFiles  int
	done        int
	counts      map[solver.Kind]int
	notice      string

	completed      bool
	report         *batch.Report
	err            error
	exitOnComplete bool

	width    int
	height   int
	ready    bool
	follow   bool
	quitting bool

	spinner  spinner.Model
	viewport viewport.Model
	styles   *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title      lipgloss.Style
	Running    lipgloss.Style
	Success    lipgloss.Style
	Skipped    lipgloss.Style
	Failed     lipgloss.Style
	Output     lipgloss.Style
	Notice     lipgloss.Style
	Help       lipgloss.Style
	TreeBranch lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Skipped: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		TreeBranch: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")),
	}
}

// NewModel creates a new TUI model. Skip keys are forwarded to ctrl.
func NewModel(ctx context.Context, ctrl Requester) *Model {
	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		counts:  make(map[solver.Kind]int),
		follow:  true,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:  NewStyles(),
	}
}

// SetCancel sets the function called when the user quits before the batch is done.
func (m *Model) SetCancel(cancel context.CancelFunc) {
	m.cancel = cancel
}

// Done returns the number of finished files and the batch total.
func (m *Model) Done() (int, int) {
	return m.done, m.totalFiles
}

// Completed reports whether the batch has returned.
func (m *Model) Completed() bool {
	return m.completed
}

func (m *Model) group(name string) *groupNode {
	if n := len(m.groups); n > 0 && m.groups[n-1].name == name {
		return m.groups[n-1]
	}

	g := &groupNode{name: name}
	m.groups = append(m.groups, g)

	return g
}
