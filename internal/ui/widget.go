package ui

import (
	"time"

	"ribbon/internal/countdown"
)

// Align positions a text node horizontally.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// NodeKind discriminates widget nodes.
type NodeKind int

const (
	NodeImage NodeKind = iota
	NodeText
	NodeSpacer
)

// Node is one element of the widget view tree.
type Node struct {
	Kind NodeKind

	// Image nodes
	ImagePath string

	// Text nodes
	Text    string
	Align   Align
	Bold    bool
	Opacity float64

	// Size is the edge length for images and the font size for text, in
	// points. The terminal renderer maps it to cells.
	Size int
}

// Widget is the full view tree for one render. It is rebuilt from scratch
// every time; nothing is retained between renders.
type Widget struct {
	Padding      int
	Palette      Palette
	RefreshAfter time.Time
	Nodes        []Node
}

// WidgetData is everything the widget displays.
type WidgetData struct {
	ImagePath       string
	Caption         string
	RememberDay     string
	Days            int
	DaySuffix       string
	RefreshInterval time.Duration
	Now             time.Time
	Palette         Palette
}

// Layout constants for the compact widget.
const (
	widgetPadding   = 10
	imageSize       = 80
	captionFontSize = 15
	counterFontSize = 12
	counterOpacity  = 0.7
	opaque          = 1.0
)

// BuildWidget assembles the compact widget: the image, a spacer, the
// caption, the remembered date, and the day counter.
func BuildWidget(d WidgetData) Widget {
	return Widget{
		Padding:      widgetPadding,
		Palette:      d.Palette,
		RefreshAfter: d.Now.Add(d.RefreshInterval),
		Nodes: []Node{
			{Kind: NodeImage, ImagePath: d.ImagePath, Size: imageSize},
			{Kind: NodeSpacer},
			{Kind: NodeText, Text: d.Caption, Align: AlignCenter, Size: captionFontSize, Bold: true, Opacity: opaque},
			{Kind: NodeText, Text: d.RememberDay, Align: AlignCenter, Size: captionFontSize, Bold: true, Opacity: opaque},
			{Kind: NodeText, Text: countdown.FormatDays(d.Days, d.DaySuffix), Align: AlignRight, Size: counterFontSize, Opacity: counterOpacity},
		},
	}
}

// CounterText returns the text of the last right-aligned node, which is
// the day counter for widgets made by BuildWidget.
func (w Widget) CounterText() string {
	for i := len(w.Nodes) - 1; i >= 0; i-- {
		n := w.Nodes[i]
		if n.Kind == NodeText && n.Align == AlignRight {
			return n.Text
		}
	}
	return ""
}
