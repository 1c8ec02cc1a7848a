package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	rberrors "ribbon/internal/errors"
)

const alertWrapWidth = 48

// Alert is a modal message with one or more buttons.
type Alert struct {
	Title   string
	Message string
	// Buttons defaults to a single "OK".
	Buttons []string
	// Format is the output.format setting: rich, light, or plain.
	Format string
}

func (a Alert) buttons() []string {
	if len(a.Buttons) == 0 {
		return []string{"OK"}
	}
	return a.Buttons
}

// body renders the message as markdown. Each line of alert text is its own
// paragraph so glamour's word wrap cannot join them.
func (a Alert) body() string {
	msg := strings.TrimSpace(a.Message)
	if msg == "" {
		return ""
	}
	if !strings.EqualFold(strings.TrimSpace(a.Format), "plain") {
		msg = strings.ReplaceAll(msg, "\n", "\n\n")
	}
	return buildMarkdownRenderer(a.Format, alertWrapWidth)(msg)
}

// AlertModel is the bubbletea model behind RunAlert.
type AlertModel struct {
	alert  Alert
	body   string
	focus  int
	chosen int
	keys   KeyMap
}

// NewAlertModel renders the alert body once up front.
func NewAlertModel(a Alert) *AlertModel {
	return &AlertModel{alert: a, body: a.body(), chosen: -1, keys: DefaultKeyMap()}
}

// Init implements tea.Model.
func (m *AlertModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *AlertModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	buttons := m.alert.buttons()
	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(km, m.keys.Enter):
		m.chosen = m.focus
		return m, tea.Quit
	case key.Matches(km, m.keys.Left):
		if m.focus > 0 {
			m.focus--
		}
	case key.Matches(km, m.keys.Right):
		if m.focus < len(buttons)-1 {
			m.focus++
		}
	}
	return m, nil
}

// Chosen returns the index of the pressed button, or -1 when dismissed.
func (m *AlertModel) Chosen() int {
	return m.chosen
}

// View implements tea.Model.
func (m *AlertModel) View() string {
	return renderAlert(m.alert, m.body, m.focus)
}

func renderAlert(a Alert, body string, focus int) string {
	var parts []string
	if a.Title != "" {
		parts = append(parts, styleAlertTitle.Render(a.Title))
	}
	if body != "" {
		parts = append(parts, body)
	}
	var buttons []string
	for i, label := range a.buttons() {
		style := styleButton
		if i == focus {
			style = styleButtonFocused
		}
		buttons = append(buttons, style.Render(label))
	}
	parts = append(parts, "", lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	return styleAlertFrame.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// RunAlert shows a and blocks until a button is pressed. The result is the
// button index, or -1 if the alert was dismissed without a choice.
func RunAlert(a Alert, opts ...tea.ProgramOption) (int, error) {
	model := NewAlertModel(a)
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return -1, rberrors.New(rberrors.CodeUIFailed, "run alert", err)
	}
	m, ok := final.(*AlertModel)
	if !ok {
		return -1, rberrors.New(rberrors.CodeUIFailed, fmt.Sprintf("unexpected alert model %T", final), nil)
	}
	return m.Chosen(), nil
}

// PrintAlert writes a non-interactive rendering of a, for when stdout is
// not a terminal.
func PrintAlert(w io.Writer, a Alert) error {
	if _, err := fmt.Fprintln(w, renderAlert(a, a.body(), -1)); err != nil {
		return rberrors.New(rberrors.CodeUIFailed, "print alert", err)
	}
	return nil
}
