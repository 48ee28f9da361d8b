package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

const legendMarkdown = `# spectra

Each dot is a node of the loaded network. **Hubs** (drivers, oncogenes)
are drawn larger with a glow; other nodes grow with their value.
Nodes closer than **%.0f px** are linked; links fade with distance.

Theme: **%s** · source: ` + "`%s`"

// renderLegend renders the help overlay for the current state. Glamour
// failures fall back to the raw markdown.
func renderLegend(width int, t theme.Theme, st netcanvas.State, source string) string {
	md := fmt.Sprintf(legendMarkdown, st.MaxDistance, t.Label, source)
	style := "dark"
	if l := theme.Ink(t.Palette().Background); l.R < 0x80 {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
