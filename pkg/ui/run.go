package ui

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the full-screen canvas and blocks until the user quits or ctx
// is cancelled. SPECTRA_TUI_AUTOCLOSE_MS closes the program after the given
// number of milliseconds, for scripted runs.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)
	defer m.renderer.Stop()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	if v := os.Getenv("SPECTRA_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
				case <-time.After(2 * time.Second):
					p.Kill()
				}
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
