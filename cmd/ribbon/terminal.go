package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal. A ribbon run
// whose stdout is not a terminal behaves like a widget host refresh.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// terminalWidth returns the column count of w, or 0 when unknown.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// colorProfile picks the color depth for w. Anything that is not a
// terminal gets plain text.
func colorProfile(w io.Writer) termenv.Profile {
	if !isTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// clearScreen homes the cursor and clears w when it is a terminal.
func clearScreen(w io.Writer) {
	if !isTerminal(w) {
		return
	}
	termenv.NewOutput(w).ClearScreen()
}
