package ui

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/spectra/pkg/theme"
)

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PickTheme asks for a theme before the canvas starts. current is
// preselected.
func PickTheme(themes []theme.Theme, current string) (string, error) {
	opts := make([]huh.Option[string], 0, len(themes))
	for _, t := range themes {
		opts = append(opts, huh.NewOption(t.Label, t.ID).Selected(t.ID == current))
	}
	choice := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Canvas theme").
				Description("t cycles themes while the canvas runs").
				Options(opts...).
				Value(&choice),
		),
	).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return current, err
	}
	return choice, nil
}
