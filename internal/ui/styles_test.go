package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
)

func TestBuildMarkdownRendererPlainWraps(t *testing.T) {
	render := buildMarkdownRenderer("plain", 10)
	got := render("one two three four five")
	if !strings.Contains(got, "\n") {
		t.Fatalf("expected wrapped output, got %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("plain output should not contain escape codes, got %q", got)
	}
}

func TestBuildMarkdownRendererUnknownStyleFallsBack(t *testing.T) {
	input := "one two three four five"
	got := buildMarkdownRenderer("no-such-style", 10)(input)
	if want := wordwrap.String(input, 10); got != want {
		t.Fatalf("expected fallback wrap %q, got %q", want, got)
	}
}

func TestBuildMarkdownRendererRich(t *testing.T) {
	got := ansi.Strip(buildMarkdownRenderer("rich", 60)("version **2.0** is out"))
	if !strings.Contains(got, "version 2.0 is out") {
		t.Fatalf("expected rendered text, got %q", got)
	}
	if strings.Contains(got, "**") {
		t.Fatalf("markdown emphasis should be rendered, got %q", got)
	}
}

func TestRenderKeyHint(t *testing.T) {
	got := ansi.Strip(renderKeyHint("q", "close"))
	if !strings.Contains(got, "q") || !strings.Contains(got, "close") {
		t.Fatalf("expected key and description, got %q", got)
	}
}
