package ui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ribbon/internal/debug"
	rberrors "ribbon/internal/errors"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// minWatchInterval bounds how often watch mode rebuilds the widget.
const minWatchInterval = time.Second

// PreviewOptions configures the preview program.
type PreviewOptions struct {
	// Build produces a fresh widget for each render.
	Build  func() Widget
	Render RenderOptions
	// Watch rebuilds the widget every Interval.
	Watch    bool
	Interval time.Duration
}

type refreshMsg time.Time

// PreviewModel shows the widget at its small size.
type PreviewModel struct {
	opts   PreviewOptions
	widget Widget
	status string
	keys   KeyMap
}

// NewPreviewModel builds the first widget immediately.
func NewPreviewModel(opts PreviewOptions) *PreviewModel {
	if opts.Render.Width <= 0 {
		opts.Render.Width = SmallWidth
	}
	if opts.Watch && opts.Interval < minWatchInterval {
		opts.Interval = minWatchInterval
	}
	return &PreviewModel{opts: opts, widget: opts.Build(), keys: DefaultKeyMap()}
}

// Init implements tea.Model.
func (m *PreviewModel) Init() tea.Cmd {
	return m.scheduleRefresh()
}

func (m *PreviewModel) scheduleRefresh() tea.Cmd {
	if !m.opts.Watch {
		return nil
	}
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Update implements tea.Model.
func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.widget = m.opts.Build()
		debug.Logw("preview refreshed", "counter", m.widget.CounterText())
		return m, m.scheduleRefresh()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Copy):
			text := m.widget.CounterText()
			if err := copyToClipboard(text); err != nil {
				debug.Error("copy counter", err)
				m.status = styleError.Render("Copy failed")
			} else {
				m.status = styleSuccess.Render("Copied " + text)
			}
		}
	}
	return m, nil
}

// Widget returns the widget currently on screen.
func (m *PreviewModel) Widget() Widget {
	return m.widget
}

// View implements tea.Model.
func (m *PreviewModel) View() string {
	footer := renderKeyHint(m.keys.Copy.Help().Key, m.keys.Copy.Help().Desc) + "  " +
		renderKeyHint(m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc)
	if m.opts.Watch {
		footer += "  " + styleFooterMuted.Render(fmt.Sprintf("every %s", m.opts.Interval))
	}
	parts := []string{Render(m.widget, m.opts.Render), footer}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RunPreview shows the widget until the user closes it.
func RunPreview(opts PreviewOptions, progOpts ...tea.ProgramOption) error {
	if opts.Build == nil {
		return rberrors.New(rberrors.CodeUIFailed, "preview needs a widget builder", nil)
	}
	if _, err := tea.NewProgram(NewPreviewModel(opts), progOpts...).Run(); err != nil {
		return rberrors.New(rberrors.CodeUIFailed, "run preview", err)
	}
	return nil
}
