package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/chladni/internal/pattern"
)

func noopJob(cancel pattern.Canceler, progress func(done, total int)) (float32, bool) {
	return 0, true
}

func TestComputeQuitKeyCancelsWithoutQuitting(t *testing.T) {
	m := NewCompute("plate.chl", noopJob)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd != nil {
		t.Fatal("expected no command until the job returns")
	}
	m = model.(ComputeModel)
	if !m.canceling || !m.Canceler().Canceled() {
		t.Fatalf("canceling = %v flag = %v", m.canceling, m.Canceler().Canceled())
	}
	if !strings.Contains(m.View(), "Canceling...") {
		t.Fatalf("view lacks cancel state: %q", m.View())
	}
}

func TestComputeProgressUpdatesView(t *testing.T) {
	m := NewCompute("plate.chl", noopJob)

	model, cmd := m.Update(computeProgressMsg{done: 25, total: 100})
	if cmd == nil {
		t.Fatal("expected waitForProgress command")
	}
	m = model.(ComputeModel)
	if m.fraction() != 0.25 {
		t.Fatalf("fraction = %v, want 0.25", m.fraction())
	}
	if !strings.Contains(m.View(), "row 25 of 100") {
		t.Fatalf("view lacks row counter: %q", m.View())
	}
}

func TestComputeFrameMovesTowardTarget(t *testing.T) {
	m := NewCompute("plate.chl", noopJob)
	model, _ := m.Update(computeProgressMsg{done: 100, total: 100})
	m = model.(ComputeModel)

	model, cmd := m.Update(frameMsg(time.Now()))
	m = model.(ComputeModel)
	if cmd == nil {
		t.Fatal("expected next frame command")
	}
	if m.shown <= 0 || m.shown > 1.5 {
		t.Fatalf("shown = %v, want a step toward 1", m.shown)
	}
}

func TestComputeDoneStoresResultAndQuits(t *testing.T) {
	m := NewCompute("plate.chl", noopJob)
	if m.Result().Completed {
		t.Fatal("result before completion should not be completed")
	}

	model, cmd := m.Update(computeDoneMsg{peak: 200, completed: true, elapsed: time.Second})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	m = model.(ComputeModel)
	got := m.Result()
	if got.Peak != 200 || !got.Completed || got.Elapsed != time.Second {
		t.Fatalf("Result() = %+v", got)
	}
	if m.View() != "" {
		t.Fatalf("view after completion = %q, want empty", m.View())
	}
}

func TestComputeJobReportsProgressAndCancel(t *testing.T) {
	var seen pattern.Canceler
	job := func(cancel pattern.Canceler, progress func(done, total int)) (float32, bool) {
		seen = cancel
		progress(1, 2)
		progress(2, 2)
		return 42, !cancel.Canceled()
	}
	m := NewCompute("plate.chl", job)

	done, ok := m.startJob()().(computeDoneMsg)
	if !ok {
		t.Fatal("expected computeDoneMsg")
	}
	if done.peak != 42 || !done.completed {
		t.Fatalf("done = %+v", done)
	}
	if seen != m.Canceler() {
		t.Fatal("job did not receive the model's cancel flag")
	}

	msg, ok := m.waitForProgress()().(computeProgressMsg)
	if !ok || msg.done != 2 || msg.total != 2 {
		t.Fatalf("latest progress = %+v, %v; want 2 of 2", msg, ok)
	}
	if m.waitForProgress()() != nil {
		t.Fatal("expected nil once the channel is closed")
	}
}

func TestComputeWindowSizeClampsBar(t *testing.T) {
	m := NewCompute("plate.chl", noopJob)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	if got := model.(ComputeModel).progress.Width; got != 60 {
		t.Fatalf("progress width = %d, want 60", got)
	}
	model, _ = m.Update(tea.WindowSizeMsg{Width: 10, Height: 40})
	if got := model.(ComputeModel).progress.Width; got != 20 {
		t.Fatalf("progress width = %d, want 20", got)
	}
}
