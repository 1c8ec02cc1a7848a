package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func press(m tea.Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestDefaultMenuRows(t *testing.T) {
	rows := DefaultMenuRows("Pray for South Korea", "1.0.0")
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if !rows[0].IsHeader || rows[0].Title != "Pray for South Korea Widget" || rows[0].Subtitle != "version: 1.0.0" {
		t.Errorf("unexpected header %+v", rows[0])
	}
	want := []MenuAction{ActionCheckUpdate, ActionPreview, ActionClearCache}
	for i, a := range want {
		if rows[i+1].IsHeader || rows[i+1].Action != a {
			t.Errorf("row %d = %+v, want action %v", i+1, rows[i+1], a)
		}
	}
}

func TestMenuSkipsHeaders(t *testing.T) {
	m := NewMenuModel(DefaultMenuRows("Pray", "1.0.0"))
	if m.Cursor() != 1 {
		t.Fatalf("cursor starts at %d, want 1", m.Cursor())
	}

	press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor() != 1 {
		t.Errorf("moving up from first action landed on %d", m.Cursor())
	}

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 3 {
		t.Errorf("cursor = %d after moving past the end, want 3", m.Cursor())
	}

	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if m.Cursor() != 1 {
		t.Errorf("home moved cursor to %d, want 1", m.Cursor())
	}
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if m.Cursor() != 3 {
		t.Errorf("end moved cursor to %d, want 3", m.Cursor())
	}
}

func TestMenuSelectDismisses(t *testing.T) {
	m := NewMenuModel(DefaultMenuRows("Pray", "1.0.0"))
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !isQuit(cmd) {
		t.Fatal("selecting a row should quit the menu")
	}
	row, ok := m.Selected()
	if !ok || row.Action != ActionPreview {
		t.Fatalf("Selected() = %+v, %v; want preview", row, ok)
	}
}

func TestMenuCancel(t *testing.T) {
	m := NewMenuModel(DefaultMenuRows("Pray", "1.0.0"))
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEscape})
	if !isQuit(cmd) {
		t.Fatal("escape should quit the menu")
	}
	if _, ok := m.Selected(); ok {
		t.Fatal("cancelled menu should have no selection")
	}
}

func TestMenuHeadersOnly(t *testing.T) {
	m := NewMenuModel([]MenuRow{{IsHeader: true, Title: "Only"}})
	if m.Cursor() != -1 {
		t.Fatalf("cursor = %d, want -1", m.Cursor())
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.Selected(); ok {
		t.Fatal("header rows must not be selectable")
	}
}

func TestMenuView(t *testing.T) {
	m := NewMenuModel(DefaultMenuRows("Pray", "1.0.0"))
	_, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := ansi.Strip(m.View())
	for _, want := range []string{"Pray Widget", "version: 1.0.0", "Check for Updates", "Preview Widget", "Clear cache"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMenuActionString(t *testing.T) {
	if ActionClearCache.String() != "clear-cache" || ActionNone.String() != "none" {
		t.Errorf("unexpected action names %q %q", ActionClearCache, ActionNone)
	}
}
