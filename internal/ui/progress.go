// Package ui renders pipeline progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"offload/internal/pipeline"
)

// stageInfo is how a working stage is labelled and how far through a file
// it counts.
type stageInfo struct {
	label  string
	weight float64
}

var stages = map[pipeline.Stage]stageInfo{
	pipeline.StageParse:  {"parsing", 0.2},
	pipeline.StagePasses: {"optimizing", 0.5},
	pipeline.StageEmit:   {"emitting", 0.9},
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

const statusWidth = 12

// ProgressModel is a Bubble Tea model listing every file of a pipeline run
// with its current stage, above an overall progress bar. It quits when the
// event channel is closed.
type ProgressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model
	files   []fileState
	index   map[string]int
	width   int
	done    bool
}

type fileState struct {
	path    string
	status  pipeline.Status
	stage   pipeline.Stage
	elapsed time.Duration
	err     error
}

func (f fileState) finished() bool {
	return f.status == pipeline.StatusDone || f.status == pipeline.StatusError
}

func (f fileState) label() string {
	switch f.status {
	case pipeline.StatusWorking:
		if info, ok := stages[f.stage]; ok {
			return info.label
		}
		return string(f.stage)
	case "":
		return string(pipeline.StatusQueued)
	default:
		return string(f.status)
	}
}

func (f fileState) style() lipgloss.Style {
	switch f.status {
	case pipeline.StatusDone:
		return doneStyle
	case pipeline.StatusError:
		return errorStyle
	case pipeline.StatusWorking:
		return workingStyle
	default:
		return idleStyle
	}
}

type eventMsg pipeline.Event

type closedMsg struct{}

// NewProgressModel returns a model for files fed by events.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) *ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &ProgressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		files:   make([]fileState, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, path := range files {
		m.files[i] = fileState{path: path, status: pipeline.StatusQueued}
		m.index[path] = i
	}
	return m
}

func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *ProgressModel) View() string {
	if len(m.files) == 0 {
		return ""
	}

	finished, failed := m.counts()
	header := fmt.Sprintf("%s  %d/%d", m.title, finished, len(m.files))
	if failed > 0 {
		header += fmt.Sprintf(", %d failed", failed)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-16, 20)
	for _, f := range m.files {
		status := f.style().Render(fmt.Sprintf("%*s", statusWidth, f.label()))
		fmt.Fprintf(&b, "  %s %s", status, truncate(f.path, nameWidth))
		if f.status == pipeline.StatusDone && f.elapsed > 0 {
			b.WriteString(dimStyle.Render(" " + f.elapsed.Round(time.Millisecond).String()))
		}
		if f.status == pipeline.StatusError && f.err != nil {
			b.WriteString(errorStyle.Render(" " + truncate(f.err.Error(), m.width/2)))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *ProgressModel) counts() (finished, failed int) {
	for _, f := range m.files {
		if f.finished() {
			finished++
		}
		if f.status == pipeline.StatusError {
			failed++
		}
	}
	return finished, failed
}

// next waits for the following event.
func (m *ProgressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *ProgressModel) apply(ev pipeline.Event) tea.Cmd {
	i, ok := m.index[ev.File]
	if !ok || ev.Status == "" {
		return nil
	}
	f := &m.files[i]
	f.status, f.stage, f.err = ev.Status, ev.Stage, ev.Err
	if ev.Elapsed > 0 {
		f.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.fraction())
}

// fraction is the overall progress: finished files count fully, working
// ones by the weight of their stage.
func (m *ProgressModel) fraction() float64 {
	var sum float64
	for _, f := range m.files {
		switch {
		case f.finished():
			sum++
		case f.status == pipeline.StatusWorking:
			sum += stages[f.stage].weight
		}
	}
	return sum / float64(len(m.files))
}

func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	default:
		return runewidth.Truncate(value, width, "...")
	}
}
