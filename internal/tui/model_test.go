// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/mapfbatch/internal/batch"
	"github.com/matt-FFFFFF/mapfbatch/internal/cancellation"
	"github.com/matt-FFFFFF/mapfbatch/internal/progress"
	"github.com/matt-FFFFFF/mapfbatch/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	delivery cancellation.Delivery
	got      []cancellation.Kind
}

func (f *fakeRequester) Request(k cancellation.Kind) cancellation.Delivery {
	f.got = append(f.got, k)
	return f.delivery
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, events ...progress.Event) {
	for _, e := range events {
		m.Update(ProgressEventMsg{Event: e})
	}
}

func sampleEvents() []progress.Event {
	now := time.Now()

	return []progress.Event{
		{Type: progress.EventBatchStarted, Data: progress.EventData{Groups: 2, Files: 3}},
		{Type: progress.EventGroupStarted, Group: "random-1"},
		{Type: progress.EventStarted, Group: "random-1", File: "a_10_agents.yaml", Timestamp: now},
		{Type: progress.EventOutput, Group: "random-1", File: "a_10_agents.yaml", Data: progress.EventData{OutputLine: "  expanded 42  "}},
		{Type: progress.EventFinished, Group: "random-1", File: "a_10_agents.yaml", Data: progress.EventData{
			Outcome: solver.Outcome{Kind: solver.Completed, Elapsed: 1500 * time.Millisecond},
		}},
		{Type: progress.EventFinished, Group: "random-1", File: "b_20_agents.yaml", Data: progress.EventData{
			Outcome: solver.Outcome{Kind: solver.SkippedExisting},
		}},
		{Type: progress.EventGroupStarted, Group: "random-2"},
		{Type: progress.EventStarted, Group: "random-2", File: "c_30_agents.yaml", Timestamp: now},
		{Type: progress.EventOutput, Group: "random-2", File: "c_30_agents.yaml", Data: progress.EventData{OutputLine: "searching"}},
	}
}

func TestModel_ProgressEvents(t *testing.T) {
	m := NewModel(context.Background(), &fakeRequester{})
	assert.Equal(t, "Starting batch...\n", m.View())

	send(m, sampleEvents()...)

	done, total := m.Done()
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, total)
	require.Len(t, m.groups, 2)
	require.Len(t, m.groups[0].files, 2)
	assert.Equal(t, solver.SkippedExisting, m.groups[0].files[1].outcome.Kind)
	require.NotNil(t, m.current)
	assert.Equal(t, "c_30_agents.yaml", m.current.name)
	assert.Equal(t, "searching", m.current.lastOutput)
	assert.Equal(t, 1, m.counts[solver.Completed])

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	assert.Contains(t, view, "2/3 files in 2 groups")
	assert.Contains(t, view, "random-1")
	assert.Contains(t, view, "a_10_agents.yaml")
	assert.Contains(t, view, "b_20_agents.yaml (skipped_existing)")
	assert.Contains(t, view, "c_30_agents.yaml")
	assert.Contains(t, view, "searching")
	assert.Contains(t, view, "s skip file")
}

func TestModel_OutputForOtherFileIgnored(t *testing.T) {
	m := NewModel(context.Background(), nil)
	send(m,
		progress.Event{Type: progress.EventStarted, Group: "g", File: "a.yaml"},
		progress.Event{Type: progress.EventOutput, Group: "g", File: "b.yaml", Data: progress.EventData{OutputLine: "stray"}},
		progress.Event{Type: progress.EventOutput, Group: "g", File: "a.yaml", Data: progress.EventData{OutputLine: "   "}},
	)

	require.NotNil(t, m.current)
	assert.Empty(t, m.current.lastOutput)
}

func TestModel_SkipKeys(t *testing.T) {
	req := &fakeRequester{delivery: cancellation.Queued}
	m := NewModel(context.Background(), req)

	_, cmd := m.Update(key("s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.notice, "skip file queued")

	req.delivery = cancellation.Delivered
	m.Update(key("S"))
	assert.Contains(t, m.notice, "skip group requested")

	assert.Equal(t, []cancellation.Kind{cancellation.SkipFile, cancellation.SkipGroup}, req.got)

	// A new file clears the notice.
	send(m, progress.Event{Type: progress.EventStarted, Group: "g", File: "a.yaml"})
	assert.Empty(t, m.notice)
}

func TestModel_QuitBeforeCompletionCancels(t *testing.T) {
	m := NewModel(context.Background(), &fakeRequester{})

	cancelled := false
	m.SetCancel(func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, cancelled)
	assert.Empty(t, m.View())
}

func TestModel_Completed(t *testing.T) {
	req := &fakeRequester{}
	m := NewModel(context.Background(), req)

	cancelled := false
	m.SetCancel(func() { cancelled = true })
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	report := &batch.Report{Entries: []batch.Entry{{
		Group: "g", File: "a.yaml", Outcome: solver.Outcome{Kind: solver.Errored, Err: errors.New("boom")},
	}}}

	_, cmd := m.Update(BatchCompletedMsg{Report: report})
	assert.Nil(t, cmd)
	assert.True(t, m.Completed())
	assert.Contains(t, m.View(), "Batch finished with failures")

	m.Update(key("s"))
	assert.Empty(t, req.got, "skip keys are ignored once the batch is done")

	_, cmd = m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.False(t, cancelled)
}

func TestModel_CompletedWithError(t *testing.T) {
	m := NewModel(context.Background(), nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(BatchCompletedMsg{Err: context.Canceled})

	assert.Contains(t, m.View(), "Batch stopped: context canceled")
}

func TestModel_ExitOnComplete(t *testing.T) {
	m := NewModel(context.Background(), nil)
	m.exitOnComplete = true

	_, cmd := m.Update(BatchCompletedMsg{Report: &batch.Report{}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_RenderFile(t *testing.T) {
	m := NewModel(context.Background(), nil)

	tests := []struct {
		name string
		node fileNode
		want string
	}{
		{"running", fileNode{name: "a", running: true}, "⚡ a"},
		{"completed", fileNode{name: "a", outcome: solver.Outcome{Kind: solver.Completed, Elapsed: time.Second}}, "✓ a (1s)"},
		{"timeout", fileNode{name: "a", outcome: solver.Outcome{Kind: solver.TimedOut, Elapsed: 3 * time.Second}}, "✗ a timed out after 3s"},
		{"errored", fileNode{name: "a", outcome: solver.Outcome{Kind: solver.Errored, Err: errors.New("exit 2")}}, "✗ a: exit 2"},
		{"skipped", fileNode{name: "a", outcome: solver.Outcome{Kind: solver.SkippedGroup}}, "~ a (skipped_group)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, m.renderFile(&tt.node), tt.want)
		})
	}
}

func TestTUIReporter_Closed(t *testing.T) {
	r := NewTUIReporter(nil)
	r.Report(progress.Event{Type: progress.EventStarted})
	r.Close()
	r.Report(progress.Event{Type: progress.EventStarted})
}

func TestRunner_Run(t *testing.T) {
	runner := NewRunner(context.Background(), &fakeRequester{},
		WithExitOnComplete(),
		WithProgramOptions(tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler()),
	)

	assert.Equal(t, progress.Reporter(runner.reporter), runner.Reporter())

	want := &batch.Report{Solver: "ecbs"}

	type result struct {
		report *batch.Report
		err    error
	}

	done := make(chan result, 1)

	go func() {
		report, err := runner.Run(context.Background(), func(_ context.Context, r progress.Reporter) (*batch.Report, error) {
			for _, e := range sampleEvents() {
				r.Report(e)
			}

			return want, nil
		})
		done <- result{report, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Same(t, want, res.report)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not return")
	}

	finished, total := runner.model.Done()
	assert.Equal(t, 2, finished)
	assert.Equal(t, 3, total)
}
