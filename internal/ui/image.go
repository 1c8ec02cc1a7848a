package ui

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // decoders for cached resources
	_ "image/png"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

const (
	upperHalfBlock = "▀"
	ribbonGlyph    = "🎗"

	// pointsPerCell maps the widget's point sizes onto terminal columns.
	pointsPerCell = 5
	// alphaCutoff below which a pixel shows the card background.
	alphaCutoff = 0x8000
)

// imageCells converts an image size in points to a square block of cells:
// cols columns and rows rows, each row carrying two pixels vertically.
func imageCells(size int) (cols, rows int) {
	cols = size / pointsPerCell
	if cols < 2 {
		cols = 2
	}
	return cols, cols / 2
}

// renderImageFile decodes the image at path and draws it with half blocks.
func renderImageFile(path string, size int, bg string, profile termenv.Profile) (string, error) {
	//nolint:gosec // G304: path is the cache file we manage
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return renderImage(img, size, bg, profile), nil
}

// renderImage scales img to the cell box for size with nearest-neighbor
// sampling. Each output cell shows two source pixels: the upper one as the
// foreground of a half block, the lower one as its background. The ASCII
// profile has no colors, so it gets the ribbon placeholder instead.
func renderImage(img image.Image, size int, bg string, profile termenv.Profile) string {
	cols, rows := imageCells(size)
	if profile == termenv.Ascii {
		return placeholder(cols, rows)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return placeholder(cols, rows)
	}
	pxH := rows * 2

	sample := func(x, y int) string {
		sx := bounds.Min.X + x*srcW/cols
		sy := bounds.Min.Y + y*srcH/pxH
		return hexColor(img.At(sx, sy), bg)
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := sample(col, row*2)
			bottom := sample(col, row*2+1)
			cell := termenv.String(upperHalfBlock).
				Foreground(profile.Color(top)).
				Background(profile.Color(bottom))
			b.WriteString(cell.String())
		}
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// hexColor flattens c to #rrggbb, substituting bg for mostly transparent pixels.
func hexColor(c color.Color, bg string) string {
	r, g, b, a := c.RGBA()
	if a < alphaCutoff {
		return bg
	}
	// Undo alpha premultiplication for partially transparent pixels.
	if a != 0xffff {
		r = r * 0xffff / a
		g = g * 0xffff / a
		b = b * 0xffff / a
	}
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// placeholder draws the ribbon glyph centered in a cols x rows box.
func placeholder(cols, rows int) string {
	lines := make([]string, rows)
	blank := strings.Repeat(" ", cols)
	for i := range lines {
		lines[i] = blank
	}
	gw := ansi.StringWidth(ribbonGlyph)
	pad := (cols - gw) / 2
	lines[rows/2] = strings.Repeat(" ", pad) + ribbonGlyph + strings.Repeat(" ", cols-pad-gw)
	return strings.Join(lines, "\n")
}
