package ui

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageCells(t *testing.T) {
	cols, rows := imageCells(80)
	if cols != 16 || rows != 8 {
		t.Errorf("imageCells(80) = %d,%d want 16,8", cols, rows)
	}
	cols, rows = imageCells(1)
	if cols != 2 || rows != 1 {
		t.Errorf("imageCells(1) = %d,%d want 2,1", cols, rows)
	}
}

func TestRenderImageHalfBlocks(t *testing.T) {
	out := renderImage(solidImage(8, 8, color.RGBA{R: 255, A: 255}), 80, "#ffffff", termenv.TrueColor)
	lines := strings.Split(out, "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d rows, want 8", len(lines))
	}
	if n := strings.Count(lines[0], upperHalfBlock); n != 16 {
		t.Errorf("row has %d half blocks, want 16", n)
	}
	if !strings.Contains(out, "255;0;0") {
		t.Errorf("expected red truecolor sequence in output")
	}
}

func TestRenderImageAsciiUsesPlaceholder(t *testing.T) {
	out := renderImage(solidImage(4, 4, color.White), 80, "#ffffff", termenv.Ascii)
	if out != placeholder(imageCells(80)) {
		t.Fatalf("ascii profile should draw the placeholder, got %q", out)
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want string
	}{
		{"opaque", color.RGBA{R: 255, G: 128, B: 0, A: 255}, "#ff8000"},
		{"transparent uses background", color.RGBA{}, "#abcdef"},
		{"partial alpha is unpremultiplied", color.NRGBA{R: 255, A: 200}, "#ff0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hexColor(tt.c, "#abcdef"); got != tt.want {
				t.Errorf("hexColor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ribbon.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, solidImage(4, 4, color.Black)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	out, err := renderImageFile(path, 20, "#ffffff", termenv.ANSI256)
	if err != nil {
		t.Fatalf("renderImageFile: %v", err)
	}
	if !strings.Contains(out, upperHalfBlock) {
		t.Errorf("expected half blocks in output")
	}

	if _, err := renderImageFile(filepath.Join(t.TempDir(), "missing.png"), 20, "#ffffff", termenv.ANSI256); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRenderImageFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ribbon.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := renderImageFile(path, 20, "#ffffff", termenv.ANSI256); err == nil {
		t.Error("expected decode error")
	}
}

func TestPlaceholder(t *testing.T) {
	lines := strings.Split(placeholder(16, 8), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want 8", len(lines))
	}
	if !strings.Contains(lines[4], ribbonGlyph) {
		t.Errorf("glyph should be on the middle row, got %q", lines[4])
	}
}
