// Package ui renders annotation-run progress as a terminal interface.
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

	"typedoc/internal/pipeline"
)

// maxVisibleFiles bounds the file list; large runs collapse into the
// summary line instead of scrolling the terminal.
const maxVisibleFiles = 16

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

type fileState struct {
	path    string
	stage   pipeline.Stage
	status  pipeline.Status
	elapsed time.Duration
}

func (f fileState) label() string {
	switch f.status {
	case pipeline.StatusDone:
		return "done"
	case pipeline.StatusError:
		return "error"
	case pipeline.StatusWorking:
		switch f.stage {
		case pipeline.StageScan:
			return "scanning"
		case pipeline.StageResolve:
			return "resolving"
		case pipeline.StageRender:
			return "rendering"
		case pipeline.StageSplice:
			return "splicing"
		}
	}
	return "queued"
}

func (f fileState) style() lipgloss.Style {
	switch f.status {
	case pipeline.StatusDone:
		return okStyle
	case pipeline.StatusError:
		return errStyle
	case pipeline.StatusWorking:
		return busyStyle
	default:
		return idleStyle
	}
}

// fraction maps a file's position in the pipeline onto run progress.
func (f fileState) fraction() float64 {
	switch f.status {
	case pipeline.StatusDone, pipeline.StatusError:
		return 1.0
	case pipeline.StatusWorking:
		switch f.stage {
		case pipeline.StageScan:
			return 0.25
		case pipeline.StageResolve:
			return 0.5
		case pipeline.StageRender:
			return 0.7
		case pipeline.StageSplice:
			return 0.9
		}
	}
	return 0.0
}

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model
	files   []fileState
	index   map[string]int
	width   int
	done    bool
}

type eventMsg pipeline.Event
type drainedMsg struct{}

// NewProgressModel returns a Bubble Tea model tracking the given files
// through the annotation pipeline.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = busyStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	states := make([]fileState, len(files))
	index := make(map[string]int, len(files))
	for i, path := range files {
		states[i] = fileState{path: path, status: pipeline.StatusQueued}
		index[path] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		files:   states,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.nextEvent())
}

func (m *progressModel) nextEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return drainedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		barCmd := m.apply(pipeline.Event(msg))
		return m, tea.Batch(barCmd, m.nextEvent())
	case drainedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		m.bar = updated.(progress.Model)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	}
	return m, nil
}

func (m *progressModel) apply(ev pipeline.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	f := &m.files[idx]
	f.stage = ev.Stage
	f.status = ev.Status
	if ev.Elapsed > 0 {
		f.elapsed = ev.Elapsed
	}

	var total float64
	for _, f := range m.files {
		total += f.fraction()
	}
	return m.bar.SetPercent(total / float64(len(m.files)))
}

func (m *progressModel) counts() (done, failed, working int) {
	for _, f := range m.files {
		switch f.status {
		case pipeline.StatusDone:
			done++
		case pipeline.StatusError:
			failed++
		case pipeline.StatusWorking:
			working++
		}
	}
	return done, failed, working
}

func (m *progressModel) View() string {
	if len(m.files) == 0 {
		return ""
	}

	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	done, failed, working := m.counts()
	summary := fmt.Sprintf("%d/%d files", done+failed, len(m.files))
	if working > 0 {
		summary += fmt.Sprintf(" · %d in flight", working)
	}
	if failed > 0 {
		summary += fmt.Sprintf(" · %d failed", failed)
	}
	b.WriteString(summaryStyle.Render(summary))
	b.WriteString("\n\n")

	nameWidth := m.width - 16
	if nameWidth < 20 {
		nameWidth = 20
	}
	for _, f := range m.visible() {
		line := fmt.Sprintf("  %s %s", f.style().Render(fmt.Sprintf("%-9s", f.label())), clip(f.path, nameWidth))
		if f.elapsed > 0 && f.status == pipeline.StatusDone {
			line += summaryStyle.Render(" " + f.elapsed.Round(time.Millisecond).String())
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

// visible picks the files worth a line of their own: everything on small
// runs, active and failed files first on large ones.
func (m *progressModel) visible() []fileState {
	if len(m.files) <= maxVisibleFiles {
		return m.files
	}
	out := make([]fileState, 0, maxVisibleFiles)
	for _, f := range m.files {
		if f.status == pipeline.StatusWorking || f.status == pipeline.StatusError {
			out = append(out, f)
			if len(out) == maxVisibleFiles {
				return out
			}
		}
	}
	for _, f := range m.files {
		if f.status == pipeline.StatusQueued {
			out = append(out, f)
			if len(out) == maxVisibleFiles {
				break
			}
		}
	}
	return out
}

func clip(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
