package ui

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colors a widget is drawn with.
type Palette struct {
	Name       string
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultPaletteName is used when no palette is configured or the
// configured one is unknown.
const DefaultPaletteName = "paper"

var palettes = &paletteRegistry{byName: make(map[string]Palette)}

type paletteRegistry struct {
	mu     sync.RWMutex
	byName map[string]Palette
}

func init() {
	// White card, dark gray text.
	RegisterPalette(Palette{
		Name:       "paper",
		Background: "#FFFFFF",
		Text:       "#555555",
		Muted:      "#AAAAAA",
		Border:     "#DDDDDD",
	})
	RegisterPalette(Palette{
		Name:       "tokyonight",
		Background: "#222436",
		Text:       "#c8d3f5",
		Muted:      "#636da6",
		Border:     "#3b4261",
	})
	RegisterPalette(Palette{
		Name:       "dracula",
		Background: "#282a36",
		Text:       "#f8f8f2",
		Muted:      "#6272a4",
		Border:     "#44475a",
	})
	RegisterPalette(Palette{
		Name:       "nord",
		Background: "#2e3440",
		Text:       "#eceff4",
		Muted:      "#7b88a1",
		Border:     "#4c566a",
	})
}

// RegisterPalette adds or replaces a palette by name.
func RegisterPalette(p Palette) {
	palettes.mu.Lock()
	defer palettes.mu.Unlock()
	palettes.byName[p.Name] = p
}

// PaletteByName returns the named palette, or the default palette and
// false when name is not registered.
func PaletteByName(name string) (Palette, bool) {
	palettes.mu.RLock()
	defer palettes.mu.RUnlock()
	if p, ok := palettes.byName[name]; ok {
		return p, true
	}
	return palettes.byName[DefaultPaletteName], false
}

// PaletteNames lists registered palettes in sorted order.
func PaletteNames() []string {
	palettes.mu.RLock()
	defer palettes.mu.RUnlock()
	names := make([]string, 0, len(palettes.byName))
	for name := range palettes.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
