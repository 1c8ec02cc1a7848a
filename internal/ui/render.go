package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"ribbon/internal/debug"
)

// SmallWidth is the card width used when the caller does not know the
// terminal width.
const SmallWidth = 34

// minWidth keeps room for the border, padding, and the image.
const minWidth = 22

// RenderOptions controls how a Widget is drawn.
type RenderOptions struct {
	// Width is the outer card width in cells. Zero means SmallWidth.
	Width int
	// Profile selects the color depth for the image. Ascii draws a glyph.
	Profile termenv.Profile
}

// Render draws w as a bordered card. Image failures fall back to a
// placeholder glyph; rendering itself never fails.
func Render(w Widget, opts RenderOptions) string {
	width := opts.Width
	if width <= 0 {
		width = SmallWidth
	}
	if width < minWidth {
		width = minWidth
	}

	padX, padY := paddingCells(w.Padding)
	inner := width - 2 - 2*padX
	bg := w.Palette.Background

	var lines []string
	for _, n := range w.Nodes {
		switch n.Kind {
		case NodeImage:
			lines = append(lines, renderImageNode(n, inner, string(bg), opts.Profile))
		case NodeSpacer:
			lines = append(lines, lipgloss.NewStyle().Width(inner).Background(bg).Render(""))
		case NodeText:
			lines = append(lines, renderTextNode(n, inner, w.Palette))
		}
	}

	card := lipgloss.NewStyle().
		Background(bg).
		Padding(padY, padX).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(w.Palette.Border).
		BorderBackground(bg)
	return card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// paddingCells maps the widget's point padding to cells. Terminal cells are
// about twice as tall as wide, so horizontal padding is doubled.
func paddingCells(points int) (x, y int) {
	y = points / 10
	if points > 0 && y == 0 {
		y = 1
	}
	return y * 2, y
}

func renderImageNode(n Node, inner int, bg string, profile termenv.Profile) string {
	art, err := renderImageFile(n.ImagePath, n.Size, bg, profile)
	if err != nil {
		debug.Error("render image", err)
		cols, rows := imageCells(n.Size)
		art = placeholder(cols, rows)
	}
	seq := backgroundSeq(bg, profile)
	rows := strings.Split(art, "\n")
	for i, row := range rows {
		rows[i] = lipgloss.PlaceHorizontal(inner, lipgloss.Center, fillBackground(row, seq),
			lipgloss.WithWhitespaceBackground(lipgloss.Color(bg)))
	}
	return strings.Join(rows, "\n")
}

func renderTextNode(n Node, inner int, p Palette) string {
	fg := p.Text
	if n.Opacity > 0 && n.Opacity < 1 {
		fg = p.Muted
	}
	style := lipgloss.NewStyle().
		Width(inner).
		Align(lipglossAlign(n.Align)).
		Foreground(fg).
		Background(p.Background).
		Bold(n.Bold)
	return style.Render(ansi.Truncate(n.Text, inner, "…"))
}

func lipglossAlign(a Align) lipgloss.Position {
	switch a {
	case AlignCenter:
		return lipgloss.Center
	case AlignRight:
		return lipgloss.Right
	default:
		return lipgloss.Left
	}
}
