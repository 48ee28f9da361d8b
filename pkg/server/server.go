// Package server implements the mock analysis backend: the JSON endpoints
// the dashboard calls, plus a live network canvas rendered server-side and
// served as PNG or SVG.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/spectra/pkg/mock"
	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/surface"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

// SystemName is reported by the status endpoint.
const SystemName = "HELIX_AI_CORE"

// MaxCanvasDim bounds the w and h query parameters of the canvas endpoints.
const MaxCanvasDim = 4096

// Config configures a Server.
type Config struct {
	Addr         string
	AnalyzeDelay time.Duration
	CanvasWidth  int
	CanvasHeight int
	// Proteins is the size of the seeded protein database.
	Proteins int
	// Nodes replaces the protein database on the live canvas when set.
	Nodes   []model.Node
	Seed    int64
	Theme   theme.Theme
	Options netcanvas.Options
	FPS     int
	Version string
	// ResolveTheme looks up theme IDs for the theme endpoint; nil uses the
	// built-in themes.
	ResolveTheme func(id string) (theme.Theme, bool)
	// Scheduler drives the live canvas; nil uses a FrameClock at FPS.
	Scheduler netcanvas.Scheduler
	Logger    *log.Logger
}

// Server is the mock backend.
type Server struct {
	cfg     Config
	logger  *log.Logger
	engine  *mock.Engine
	state   *State
	started time.Time

	window   *netcanvas.Window
	raster   *surface.Raster
	vector   *surface.Vector
	renderer *netcanvas.Renderer

	router chi.Router
}

// New builds a Server. The live canvas is not started until Start or Run.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8000"
	}
	if cfg.CanvasWidth < 1 {
		cfg.CanvasWidth = 1280
	}
	if cfg.CanvasHeight < 1 {
		cfg.CanvasHeight = 720
	}
	if cfg.Proteins <= 0 {
		cfg.Proteins = 45
	}
	if cfg.AnalyzeDelay < 0 {
		cfg.AnalyzeDelay = 0
	}
	if cfg.ResolveTheme == nil {
		cfg.ResolveTheme = theme.Lookup
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = netcanvas.NewFrameClock(cfg.FPS)
	}

	engine := mock.New(cfg.Seed)
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		engine:  engine,
		state:   NewState(engine, cfg.Proteins, cfg.Nodes),
		started: time.Now(),
		window:  netcanvas.NewWindow(cfg.CanvasWidth, cfg.CanvasHeight),
		raster:  surface.NewRaster(),
		vector:  surface.NewVector(),
	}
	s.renderer = netcanvas.New(netcanvas.Config{
		Surface:   surface.Multi(s.raster, s.vector),
		Scheduler: sched,
		Viewport:  s.window,
		Theme:     cfg.Theme,
		Options:   cfg.Options,
		Logger:    logger.WithPrefix("canvas"),
	})
	s.renderer.SetNodes(s.state.CanvasNodes())
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		notFound(w, "no route for "+r.Method+" "+r.URL.Path)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/data", s.handleIngest)
		r.Get("/proteins", s.handleProteins)
		r.Get("/production-metrics", s.handleProductionMetrics)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/training-metrics", s.handleTrainingMetrics)
		r.Get("/patients", s.handlePatients)
		r.Get("/top-genes", s.handleTopGenes)
		r.Get("/topology", s.handleTopology)
		r.Get("/themes", s.handleThemes)
		r.Post("/theme", s.handleSetTheme)
		r.Get("/canvas.png", s.handleCanvasPNG)
		r.Get("/canvas.svg", s.handleCanvasSVG)
		r.Get("/frame-metrics", s.handleFrameMetrics)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// State returns the backend state.
func (s *Server) State() *State { return s.state }

// Renderer returns the live canvas renderer.
func (s *Server) Renderer() *netcanvas.Renderer { return s.renderer }

// Start starts the live canvas.
func (s *Server) Start() error {
	if err := s.renderer.Start(); err != nil && !errors.Is(err, netcanvas.ErrRunning) {
		return err
	}
	return nil
}

// SetNodes replaces the nodes on the live canvas, as a source reload does.
func (s *Server) SetNodes(nodes []model.Node) {
	s.renderer.SetNodes(s.state.SetCanvas(nodes))
}

// Stop stops the live canvas.
func (s *Server) Stop() { s.renderer.Stop() }

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully and stops the canvas.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := s.Start(); err != nil {
		ln.Close()
		return err
	}
	defer s.Stop()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
