package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	hub    = color.New(color.FgHiMagenta, color.Bold)
	good   = color.New(color.FgGreen)
)

// table writes rows aligned under headers. Cells may carry colour; widths
// are measured without the escapes.
func table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var head, sep strings.Builder
	for i, h := range headers {
		head.WriteString(pad(h, widths[i]) + "  ")
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	fmt.Fprintln(w, subtle.Sprint(strings.TrimRight(head.String(), " ")))
	fmt.Fprintln(w, subtle.Sprint(strings.TrimRight(sep.String(), " ")))
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				line.WriteString(pad(cell, widths[i]) + "  ")
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
