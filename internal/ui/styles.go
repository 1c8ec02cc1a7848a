package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	cPurple     = lipgloss.Color("99")
	cCyan       = lipgloss.Color("39")
	cRed        = lipgloss.Color("203")
	cGold       = lipgloss.Color("220")
	cGray       = lipgloss.Color("240")
	cBrightGray = lipgloss.Color("246")
	cLightGray  = lipgloss.Color("250")
	cWhite      = lipgloss.Color("255")
	cHighlight  = lipgloss.Color("57")

	styleMenuHeader = lipgloss.NewStyle().
			Foreground(cWhite).
			Background(cPurple).
			Bold(true).
			Padding(0, 1)

	styleMenuHeaderSub = lipgloss.NewStyle().
				Foreground(cLightGray).
				Background(cPurple).
				Padding(0, 1)

	styleMenuRow = lipgloss.NewStyle().
			Foreground(cWhite).
			Padding(0, 1)

	styleMenuSubtitle = lipgloss.NewStyle().
				Foreground(cBrightGray)

	styleMenuSelected = lipgloss.NewStyle().
				Background(cHighlight).
				Foreground(cWhite).
				Bold(true).
				Padding(0, 1)

	styleMenuFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cPurple).
			Padding(0, 1)

	styleAlertFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cPurple).
			Padding(1, 2)

	styleAlertTitle = lipgloss.NewStyle().
			Foreground(cGold).
			Bold(true)

	styleButton = lipgloss.NewStyle().
			Foreground(cLightGray).
			Background(cGray).
			Padding(0, 2).
			MarginRight(1)

	styleButtonFocused = lipgloss.NewStyle().
				Foreground(cWhite).
				Background(cPurple).
				Bold(true).
				Padding(0, 2).
				MarginRight(1)

	styleKeyPill = lipgloss.NewStyle().
			Background(cPurple).
			Foreground(cWhite).
			Bold(true)

	styleKeyDesc = lipgloss.NewStyle().
			Foreground(cBrightGray)

	styleFooterMuted = lipgloss.NewStyle().
				Foreground(cBrightGray)

	styleSuccess = lipgloss.NewStyle().
			Foreground(cCyan).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(cRed).
			Bold(true)
)

// buildMarkdownRenderer returns a renderer for the given output format.
// "plain" only wraps; anything glamour rejects falls back to wrapping too.
func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" || style == "dark" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}

// renderKeyHint draws a "key description" pair for footers.
func renderKeyHint(k, desc string) string {
	return styleKeyPill.Render(" "+k+" ") + " " + styleKeyDesc.Render(desc)
}
