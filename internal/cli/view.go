package cli

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/theme"
	"github.com/vanderheijden86/spectra/pkg/ui"
)

type viewOpts struct {
	source    string
	theme     string
	pickTheme bool
	fps       int
	seed      int64
	noWatch   bool
}

func (a *app) newViewCmd() *cobra.Command {
	var opts viewOpts
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Animate a node source in the terminal",
		Long: `Animate a node source in the terminal.

Keys: t next theme, r reload, c copy frame, ? legend, q quit.
File sources reload when they change on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "node source (mock:N, file, redis:// or http:// URL)")
	cmd.Flags().StringVarP(&opts.theme, "theme", "t", "", "colour theme")
	cmd.Flags().BoolVar(&opts.pickTheme, "pick-theme", false, "choose the theme interactively first")
	cmd.Flags().IntVar(&opts.fps, "fps", 0, "frames per second (default from config)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed for mock sources and placement (0 = random)")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not reload file sources on change")
	return cmd
}

func (a *app) runView(ctx context.Context, opts viewOpts) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("view needs a terminal; use snapshot to render to a file")
	}

	themes := a.themes()
	themeID := opts.theme
	if themeID == "" {
		themeID = a.cfg.Theme
	}
	if opts.pickTheme {
		picked, err := ui.PickTheme(themes, themeID)
		if err != nil {
			return err
		}
		themeID = picked
	}

	spec := a.source(opts.source)
	nodes, err := a.open(ctx, spec, opts.seed)
	if err != nil {
		return err
	}

	fps := opts.fps
	if fps <= 0 {
		fps = a.cfg.UI.FPS
	}
	canvas := a.cfg.Renderer.Options
	if opts.seed != 0 {
		canvas.Seed = opts.seed
	}

	var changes <-chan struct{}
	if !opts.noWatch {
		var stop func()
		changes, stop = a.watchSource(ctx, spec)
		defer stop()
	}

	// Logs would tear the alternate screen.
	a.logger.SetLevel(max(a.logger.GetLevel(), log.ErrorLevel))

	return ui.Run(ctx, ui.Options{
		Source: spec,
		Nodes:  nodes,
		Load: func(ctx context.Context) ([]model.Node, error) {
			return a.open(ctx, spec, opts.seed)
		},
		Theme:    a.theme(themeID),
		Themes:   themes,
		Canvas:   canvas,
		FPS:      fps,
		DotScale: a.cfg.UI.DotScale,
		Logger:   a.logger,
		Changes:  changes,
	})
}

// themes returns the built-in themes followed by custom ones.
func (a *app) themes() []theme.Theme {
	ids := a.cfg.ThemeIDs()
	out := make([]theme.Theme, 0, len(ids))
	for _, id := range ids {
		t, _ := a.cfg.ResolveTheme(id)
		out = append(out, t)
	}
	return out
}
