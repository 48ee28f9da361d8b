// Package theme holds the dashboard colour themes and resolves their CSS
// colour strings into concrete colours for drawing surfaces.
package theme

import (
	"image/color"
	"sort"
	"strings"
)

// Theme describes the colours a canvas is drawn with. Colours are CSS
// strings as they appear in the dashboard stylesheets.
type Theme struct {
	ID         string `yaml:"id" toml:"id" json:"id"`
	Label      string `yaml:"label" toml:"label" json:"label"`
	Primary    string `yaml:"primary" toml:"primary" json:"primary"`
	Secondary  string `yaml:"secondary" toml:"secondary" json:"secondary"`
	Node       string `yaml:"node" toml:"node" json:"node"`
	Line       string `yaml:"line" toml:"line" json:"line"`
	Background string `yaml:"background" toml:"background" json:"background"`
}

// Palette is a Theme with every colour resolved.
type Palette struct {
	Primary    color.NRGBA
	Secondary  color.NRGBA
	Node       color.NRGBA
	Line       color.NRGBA
	Background color.NRGBA
	Glow       color.NRGBA
}

// DefaultID is the theme used when nothing else is configured.
const DefaultID = "modern"

// Built-in themes. The first five come from the dashboard background, the
// last four from the analysis graph.
var builtin = []Theme{
	{ID: "modern", Label: "Modern Light", Primary: "#6366f1", Secondary: "#8b5cf6",
		Node: "rgba(99, 102, 241, 0.4)", Line: "rgba(99, 102, 241, 0.1)", Background: "#f8fafc"},
	{ID: "dark", Label: "Scientific Dark", Primary: "#38bdf8", Secondary: "#818cf8",
		Node: "rgba(56, 189, 248, 0.4)", Line: "rgba(148, 163, 184, 0.15)", Background: "#0b1120"},
	{ID: "warm", Label: "Journal", Primary: "#ea580c", Secondary: "#d97706",
		Node: "rgba(234, 88, 12, 0.3)", Line: "rgba(168, 162, 158, 0.2)", Background: "#fdfbf7"},
	{ID: "blue", Label: "Clinical", Primary: "#0284c7", Secondary: "#0ea5e9",
		Node: "rgba(2, 132, 199, 0.3)", Line: "rgba(2, 132, 199, 0.1)", Background: "#f0f9ff"},
	{ID: "midnight", Label: "Cyber", Primary: "#d8b4fe", Secondary: "#c084fc",
		Node: "rgba(216, 180, 254, 0.5)", Line: "rgba(216, 180, 254, 0.15)", Background: "#000000"},
	{ID: "purple", Label: "Nebula", Primary: "#EC4899", Secondary: "#8B5CF6",
		Node: "#8B5CF6", Line: "#8B5CF620", Background: "#0d0415"},
	{ID: "cyber", Label: "Cyberpunk", Primary: "#FACC15", Secondary: "#06B6D4",
		Node: "#06B6D4", Line: "#06B6D420", Background: "#000000"},
	{ID: "ocean", Label: "Deep Sea", Primary: "#38BDF8", Secondary: "#3B82F6",
		Node: "#3B82F6", Line: "#3B82F620", Background: "#020617"},
	{ID: "crimson", Label: "Red Alert", Primary: "#EF4444", Secondary: "#F97316",
		Node: "#F97316", Line: "#F9731620", Background: "#1a0505"},
}

// Default returns the default theme.
func Default() Theme {
	t, _ := Lookup(DefaultID)
	return t
}

// All returns the built-in themes in display order.
func All() []Theme {
	out := make([]Theme, len(builtin))
	copy(out, builtin)
	return out
}

// IDs returns the built-in theme IDs, sorted.
func IDs() []string {
	ids := make([]string, 0, len(builtin))
	for _, t := range builtin {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return ids
}

// Lookup finds a built-in theme by ID (case-insensitive).
func Lookup(id string) (Theme, bool) {
	id = strings.TrimSpace(id)
	for _, t := range builtin {
		if strings.EqualFold(t.ID, id) {
			return t, true
		}
	}
	return Theme{}, false
}

// Next returns the theme following id in display order, wrapping around.
// Unknown IDs yield the first theme.
func Next(id string) Theme {
	for i, t := range builtin {
		if strings.EqualFold(t.ID, id) {
			return builtin[(i+1)%len(builtin)]
		}
	}
	return builtin[0]
}

// Palette resolves the theme's colours. Slots that fail to parse fall back
// to the default theme's colour for that slot, so a typo in a custom theme
// never blanks the canvas.
func (t Theme) Palette() Palette {
	fallback := builtin[0]
	p := Palette{
		Primary:    resolve(t.Primary, fallback.Primary),
		Secondary:  resolve(t.Secondary, fallback.Secondary),
		Node:       resolve(t.Node, fallback.Node),
		Line:       resolve(t.Line, fallback.Line),
		Background: resolve(t.Background, fallback.Background),
	}
	p.Glow = Blend(p.Primary, p.Secondary, 0.3)
	p.Glow.A = 0x40
	return p
}

// Merge returns t with empty fields filled from base.
func (t Theme) Merge(base Theme) Theme {
	if t.ID == "" {
		t.ID = base.ID
	}
	if t.Label == "" {
		t.Label = base.Label
	}
	if t.Primary == "" {
		t.Primary = base.Primary
	}
	if t.Secondary == "" {
		t.Secondary = base.Secondary
	}
	if t.Node == "" {
		t.Node = base.Node
	}
	if t.Line == "" {
		t.Line = base.Line
	}
	if t.Background == "" {
		t.Background = base.Background
	}
	return t
}

func resolve(s, fallback string) color.NRGBA {
	if c, err := ParseColor(s); err == nil {
		return c
	}
	c, _ := ParseColor(fallback)
	return c
}
