package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/spectra/internal/datasource"
	"github.com/vanderheijden86/spectra/pkg/metrics"
	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/server"
	"github.com/vanderheijden86/spectra/pkg/version"
)

type serveOpts struct {
	addr         string
	source       string
	theme        string
	seed         int64
	analyzeDelay time.Duration
	width        int
	height       int
}

func (a *app) newServeCmd() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mock analysis backend",
		Long: `Run the mock analysis backend.

The server answers the dashboard's /api endpoints with generated data and
renders a live canvas at /api/canvas.png and /api/canvas.svg. Without
--source the canvas shows the protein database; with a file source it
reloads when the file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "node source for the live canvas")
	cmd.Flags().StringVarP(&opts.theme, "theme", "t", "", "canvas theme")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed for generated data (0 = random)")
	cmd.Flags().DurationVar(&opts.analyzeDelay, "analyze-delay", 0, "simulated analysis latency (default from config)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "live canvas width")
	cmd.Flags().IntVar(&opts.height, "height", 0, "live canvas height")
	return cmd
}

func (a *app) runServe(ctx context.Context, cmd *cobra.Command, opts serveOpts) error {
	sc := a.cfg.Server
	if opts.addr != "" {
		sc.Addr = opts.addr
	}
	delay := sc.AnalyzeDelay.Std()
	if cmd.Flags().Changed("analyze-delay") {
		delay = opts.analyzeDelay
	}
	if opts.width > 0 {
		sc.CanvasWidth = opts.width
	}
	if opts.height > 0 {
		sc.CanvasHeight = opts.height
	}

	var nodes []model.Node
	if opts.source != "" {
		var err error
		if nodes, err = a.open(ctx, opts.source, opts.seed); err != nil {
			return err
		}
	}

	metrics.SetEnabled(true)
	srv := server.New(server.Config{
		Addr:         sc.Addr,
		AnalyzeDelay: delay,
		CanvasWidth:  sc.CanvasWidth,
		CanvasHeight: sc.CanvasHeight,
		Nodes:        nodes,
		Seed:         opts.seed,
		Theme:        a.theme(opts.theme),
		Options:      a.cfg.Renderer.Options,
		FPS:          a.cfg.Renderer.FPS,
		Version:      version.Version,
		ResolveTheme: a.cfg.ResolveTheme,
		Logger:       a.logger.WithPrefix("server"),
	})

	a.logger.Debug("live canvas", "width", sc.CanvasWidth, "height", sc.CanvasHeight,
		"frame_interval", a.cfg.Renderer.FrameInterval())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if opts.source != "" {
		changes, stop := a.watchSource(gctx, opts.source)
		defer stop()
		if changes != nil {
			g.Go(func() error {
				a.reloadLoop(gctx, opts.source, opts.seed, nodes, changes, srv.SetNodes)
				return nil
			})
		}
	}
	return g.Wait()
}

// reloadLoop reloads spec on every change signal and hands the nodes to
// apply. Failed reloads keep the previous nodes.
func (a *app) reloadLoop(ctx context.Context, spec string, seed int64, current []model.Node, changes <-chan struct{}, apply func([]model.Node)) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			nodes, err := a.open(ctx, spec, seed)
			if err != nil {
				a.logger.Warn("reload failed", "source", spec, "err", err)
				continue
			}
			diff := datasource.Diff(current, nodes)
			current = nodes
			apply(nodes)
			a.logger.Info("source reloaded", "source", spec, "diff", diff.Summary())
		}
	}
}
