package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/spectra/pkg/theme"
)

func (a *app) newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the colour themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, _ := a.cfg.ResolveTheme("")
			var rows [][]string
			for _, t := range a.themes() {
				mark := " "
				if t.ID == current.ID {
					mark = good.Sprint("*")
				}
				pal := t.Palette()
				rows = append(rows, []string{mark, brand.Sprint(t.ID), t.Label,
					theme.CSS(pal.Primary), theme.CSS(pal.Background)})
			}
			table(cmd.OutOrStdout(), []string{"", "ID", "NAME", "PRIMARY", "BACKGROUND"}, rows)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), subtle.Sprint("set with --theme, SPECTRA_THEME or theme: in the config file"))
			return nil
		},
	}
}
