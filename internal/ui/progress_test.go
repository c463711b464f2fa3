package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"offload/internal/pipeline"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("offload opt", []string{"a.ir", "b.ir"}, events)

	steps := []struct {
		ev   pipeline.Event
		want float64
	}{
		{pipeline.Event{File: "a.ir", Stage: pipeline.StageParse, Status: pipeline.StatusWorking}, 0.1},
		{pipeline.Event{File: "a.ir", Stage: pipeline.StagePasses, Status: pipeline.StatusWorking}, 0.25},
		{pipeline.Event{File: "b.ir", Stage: pipeline.StageParse, Status: pipeline.StatusError, Err: errors.New("boom")}, 0.75},
		{pipeline.Event{File: "a.ir", Stage: pipeline.StageEmit, Status: pipeline.StatusDone, Elapsed: 3 * time.Millisecond}, 1},
		{pipeline.Event{File: "unknown.ir", Status: pipeline.StatusDone}, 1},
	}
	for i, step := range steps {
		m.Update(eventMsg(step.ev))
		if got := m.fraction(); got != step.want {
			t.Errorf("step %d: fraction = %v, want %v", i, got, step.want)
		}
	}

	view := m.View()
	for _, want := range []string{"2/2, 1 failed", "a.ir", "done", "error", "boom", "3ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(closedMsg{})
	if cmd == nil {
		t.Fatal("closing the event channel should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !strings.HasPrefix(m.View(), titleStyle.Render("done: offload opt  2/2, 1 failed")) {
		t.Errorf("final header:\n%s", m.View())
	}
}

func TestFileStateLabel(t *testing.T) {
	tests := []struct {
		f    fileState
		want string
	}{
		{fileState{}, "queued"},
		{fileState{status: pipeline.StatusQueued}, "queued"},
		{fileState{status: pipeline.StatusWorking, stage: pipeline.StagePasses}, "optimizing"},
		{fileState{status: pipeline.StatusWorking, stage: "custom"}, "custom"},
		{fileState{status: pipeline.StatusError}, "error"},
	}
	for _, tt := range tests {
		if got := tt.f.label(); got != tt.want {
			t.Errorf("label(%+v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.ir", 20, "short.ir"},
		{"a/very/long/path.ir", 10, "a/very/..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
