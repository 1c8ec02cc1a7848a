package ui

import (
	"strings"

	"github.com/muesli/termenv"
)

// backgroundSeq returns the SGR sequence that sets bg as the background, or
// "" when the profile has no colors.
func backgroundSeq(bg string, profile termenv.Profile) string {
	c := profile.Color(bg)
	if c == nil {
		return ""
	}
	seq := c.Sequence(true)
	if seq == "" {
		return ""
	}
	return termenv.CSI + seq + "m"
}

// fillBackground replaces ANSI reset codes with sequences that restore the
// card background, so whitespace after a styled segment keeps its color.
func fillBackground(s, bgSeq string) string {
	if bgSeq == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x1b[0m", "\x1b[0m"+bgSeq)
	s = strings.ReplaceAll(s, "\x1b[49m", bgSeq)
	return s
}
