package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/spectra/pkg/theme"
)

// styles derives the chrome colours from the active theme.
type styles struct {
	bar    lipgloss.Style
	accent lipgloss.Style
	notice lipgloss.Style
	help   lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	pal := t.Palette()
	bg := theme.Blend(pal.Background, pal.Primary, 0.18)
	ink := theme.Ink(bg)
	return styles{
		bar: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.CSS(bg))).
			Foreground(lipgloss.Color(theme.CSS(ink))),
		accent: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.CSS(pal.Primary))).
			Foreground(lipgloss.Color(theme.CSS(theme.Ink(pal.Primary)))).
			Bold(true).
			Padding(0, 1),
		notice: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.CSS(bg))).
			Foreground(lipgloss.Color(theme.CSS(pal.Secondary))).
			Italic(true),
		help: lipgloss.NewStyle().Faint(true),
	}
}
