package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Stage enumerates the phases of a long-running operation.
type Stage int

const (
	StageStarting Stage = iota
	StageFetchImage
	StageCheckVersion
	StageDownloadUpdate
	StageVerify
	StageInstall
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageFetchImage:
		return "Fetching image"
	case StageCheckVersion:
		return "Checking version"
	case StageDownloadUpdate:
		return "Downloading update"
	case StageVerify:
		return "Verifying"
	case StageInstall:
		return "Installing"
	case StageDone:
		return "Done"
	default:
		return "Starting"
	}
}

// Reporter receives progress notifications from network and install steps.
// Implementations should be safe for concurrent use.
type Reporter interface {
	Stage(stage Stage, detail string)
	// Progress reports bytes done of total. total is -1 when unknown.
	Progress(done, total int64)
}

// NopReporter discards all notifications.
type NopReporter struct{}

// Stage implements Reporter.
func (NopReporter) Stage(Stage, string) {}

// Progress implements Reporter.
func (NopReporter) Progress(int64, int64) {}

var (
	progressSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))
	progressStatusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2"))
	progressCountStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	progressFrameStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type progressUpdate struct {
	stage  Stage
	detail string
	done   int64
	total  int64
	bytes  bool
	finish bool
}

type progressUpdateMsg progressUpdate

// progressModel is the bubbletea model behind ProgressDisplay.
type progressModel struct {
	spinner  spinner.Model
	progress progress.Model

	stage  Stage
	detail string
	done   int64
	total  int64
	bytes  bool

	updates chan progressUpdate
}

func newProgressModel() *progressModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = progressSpinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return &progressModel{
		spinner:  s,
		progress: p,
		stage:    StageStarting,
		updates:  make(chan progressUpdate, 16),
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

func (m *progressModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return progressUpdateMsg(<-m.updates)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdateMsg:
		if msg.finish {
			return m, tea.Quit
		}
		var cmds []tea.Cmd
		if msg.bytes {
			m.done, m.total, m.bytes = msg.done, msg.total, true
			if m.total > 0 {
				cmds = append(cmds, m.progress.SetPercent(float64(m.done)/float64(m.total)))
			}
		} else {
			m.stage, m.detail = msg.stage, msg.detail
			m.done, m.total, m.bytes = 0, 0, false
		}
		cmds = append(cmds, m.waitForUpdate())
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder
	label := m.stage.String()
	if m.detail != "" {
		label += " " + m.detail
	}
	if m.bytes && m.total > 0 {
		b.WriteString(m.progress.View())
		b.WriteString("\n")
		b.WriteString(progressCountStyle.Render(fmt.Sprintf("%s %s / %s",
			label, humanize.Bytes(uint64(m.done)), humanize.Bytes(uint64(m.total)))))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(progressStatusStyle.Render(label))
		if m.bytes {
			b.WriteString(progressCountStyle.Render(" " + humanize.Bytes(uint64(m.done))))
		}
	}
	return progressFrameStyle.Render(b.String())
}

func (m *progressModel) send(u progressUpdate) {
	select {
	case m.updates <- u:
	default:
		// Drop if the channel is full; the next update supersedes it.
	}
}

// ProgressDisplay runs an inline spinner and progress bar.
type ProgressDisplay struct {
	program *tea.Program
	model   *progressModel
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
}

// NewProgressDisplay starts the display on w.
func NewProgressDisplay(w io.Writer) *ProgressDisplay {
	model := newProgressModel()
	program := tea.NewProgram(
		model,
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	d := &ProgressDisplay{
		program: program,
		model:   model,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(d.done)
	}()
	return d
}

// Stage implements Reporter.
func (d *ProgressDisplay) Stage(stage Stage, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.model.send(progressUpdate{stage: stage, detail: detail})
}

// Progress implements Reporter.
func (d *ProgressDisplay) Progress(done, total int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.model.send(progressUpdate{done: done, total: total, bytes: true})
}

// Stop ends the display and waits briefly for it to exit.
func (d *ProgressDisplay) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	// Block so the finish message is not dropped behind a full channel.
	select {
	case d.model.updates <- progressUpdate{finish: true}:
	case <-d.done:
	case <-time.After(500 * time.Millisecond):
	}

	select {
	case <-d.done:
	case <-time.After(500 * time.Millisecond):
		d.program.Kill()
	}
}
