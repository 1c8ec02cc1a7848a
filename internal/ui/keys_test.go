package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	t.Run("NavigationBindings", func(t *testing.T) {
		if !key.Matches(tea.KeyMsg{Type: tea.KeyUp}, km.Up) {
			t.Error("expected up arrow to match Up binding")
		}
		if !key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, km.Up) {
			t.Error("expected k to match Up binding")
		}
		if !key.Matches(tea.KeyMsg{Type: tea.KeyDown}, km.Down) {
			t.Error("expected down arrow to match Down binding")
		}
		if !key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, km.Down) {
			t.Error("expected j to match Down binding")
		}
		if !key.Matches(tea.KeyMsg{Type: tea.KeyShiftTab}, km.Left) {
			t.Error("expected shift+tab to match Left binding")
		}
		if !key.Matches(tea.KeyMsg{Type: tea.KeyTab}, km.Right) {
			t.Error("expected tab to match Right binding")
		}
	})

	t.Run("QuitBindings", func(t *testing.T) {
		for _, msg := range []tea.KeyMsg{
			{Type: tea.KeyRunes, Runes: []rune{'q'}},
			{Type: tea.KeyEscape},
			{Type: tea.KeyCtrlC},
		} {
			if !key.Matches(msg, km.Quit) {
				t.Errorf("expected %q to match Quit binding", msg.String())
			}
		}
	})

	t.Run("ActionBindings", func(t *testing.T) {
		if !key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Enter) {
			t.Error("expected enter to match Enter binding")
		}
		if !key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}}, km.Copy) {
			t.Error("expected y to match Copy binding")
		}
	})

	t.Run("PairedHelpText", func(t *testing.T) {
		if km.Up.Help() != km.Down.Help() {
			t.Error("Up and Down should share help text")
		}
		if km.Left.Help() != km.Right.Help() {
			t.Error("Left and Right should share help text")
		}
	})
}
