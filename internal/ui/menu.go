package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	rberrors "ribbon/internal/errors"
)

// MenuAction identifies what a selected row does.
type MenuAction int

const (
	ActionNone MenuAction = iota
	ActionCheckUpdate
	ActionPreview
	ActionClearCache
)

func (a MenuAction) String() string {
	switch a {
	case ActionCheckUpdate:
		return "check-update"
	case ActionPreview:
		return "preview"
	case ActionClearCache:
		return "clear-cache"
	default:
		return "none"
	}
}

// MenuRow describes one row of the preferences menu. Header rows are
// display only.
type MenuRow struct {
	IsHeader bool
	Title    string
	Subtitle string
	Action   MenuAction
}

// DefaultMenuRows is the preferences table: a header followed by the three
// actions.
func DefaultMenuRows(title, version string) []MenuRow {
	return []MenuRow{
		{IsHeader: true, Title: title + " Widget", Subtitle: "version: " + version},
		{Title: "Check for Updates", Subtitle: "Check for updates to the latest version.", Action: ActionCheckUpdate},
		{Title: "Preview Widget", Subtitle: "Provides a preview for testing.", Action: ActionPreview},
		{Title: "Clear cache", Subtitle: "Clear all caches.", Action: ActionClearCache},
	}
}

// MenuModel is the bubbletea model for the preferences menu. Selecting any
// row dismisses the menu.
type MenuModel struct {
	rows     []MenuRow
	cursor   int
	selected int
	keys     KeyMap
	width    int
}

// NewMenuModel places the cursor on the first selectable row.
func NewMenuModel(rows []MenuRow) *MenuModel {
	m := &MenuModel{rows: rows, cursor: -1, selected: -1, keys: DefaultKeyMap()}
	m.cursor = m.next(-1, 1)
	return m
}

// Init implements tea.Model.
func (m *MenuModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Enter):
			if m.cursor >= 0 {
				m.selected = m.cursor
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Home):
			m.cursor = m.next(-1, 1)
		case key.Matches(msg, m.keys.End):
			m.cursor = m.next(len(m.rows), -1)
		}
	}
	return m, nil
}

func (m *MenuModel) move(dir int) {
	if n := m.next(m.cursor, dir); n >= 0 {
		m.cursor = n
	}
}

// next returns the first selectable row after from in direction dir, or -1.
func (m *MenuModel) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.rows); i += dir {
		if !m.rows[i].IsHeader {
			return i
		}
	}
	return -1
}

// Cursor returns the highlighted row index, or -1 when nothing is selectable.
func (m *MenuModel) Cursor() int {
	return m.cursor
}

// Selected returns the chosen row. ok is false when the menu was cancelled.
func (m *MenuModel) Selected() (row MenuRow, ok bool) {
	if m.selected < 0 {
		return MenuRow{}, false
	}
	return m.rows[m.selected], true
}

// View implements tea.Model.
func (m *MenuModel) View() string {
	width := m.contentWidth()
	var lines []string
	for i, row := range m.rows {
		switch {
		case row.IsHeader:
			lines = append(lines, styleMenuHeader.Width(width).Render(row.Title))
			if row.Subtitle != "" {
				lines = append(lines, styleMenuHeaderSub.Width(width).Render(row.Subtitle))
			}
		case i == m.cursor:
			lines = append(lines, styleMenuSelected.Width(width).Render(rowText(row)))
		default:
			lines = append(lines, styleMenuRow.Width(width).Render(rowText(row)))
		}
	}
	lines = append(lines, "", m.footer())
	return styleMenuFrame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func rowText(row MenuRow) string {
	if row.Subtitle == "" {
		return row.Title
	}
	return row.Title + "  " + styleMenuSubtitle.Render(row.Subtitle)
}

func (m *MenuModel) footer() string {
	hints := []string{
		renderKeyHint(m.keys.Up.Help().Key, m.keys.Up.Help().Desc),
		renderKeyHint(m.keys.Enter.Help().Key, m.keys.Enter.Help().Desc),
		renderKeyHint(m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc),
	}
	return strings.Join(hints, "  ")
}

func (m *MenuModel) contentWidth() int {
	w := 0
	for _, row := range m.rows {
		if n := lipgloss.Width(row.Title) + lipgloss.Width(row.Subtitle) + 4; n > w {
			w = n
		}
	}
	if w < 32 {
		w = 32
	}
	// Leave room for the frame border and padding.
	if m.width > 0 && w > m.width-4 {
		w = m.width - 4
	}
	return w
}

// RunMenu shows the menu and blocks until a row is selected or the menu is
// dismissed.
func RunMenu(rows []MenuRow, opts ...tea.ProgramOption) (MenuRow, bool, error) {
	model := NewMenuModel(rows)
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return MenuRow{}, false, rberrors.New(rberrors.CodeUIFailed, "run menu", err)
	}
	m, ok := final.(*MenuModel)
	if !ok {
		return MenuRow{}, false, rberrors.New(rberrors.CodeUIFailed, fmt.Sprintf("unexpected menu model %T", final), nil)
	}
	row, selected := m.Selected()
	return row, selected, nil
}
