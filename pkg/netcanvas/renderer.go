package netcanvas

import (
	"errors"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/spectra/pkg/metrics"
	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

var (
	// ErrRunning is returned by Start on a renderer that is already running.
	ErrRunning = errors.New("netcanvas: renderer already running")
	// ErrNoScheduler is returned by Start when Config.Scheduler was nil.
	ErrNoScheduler = errors.New("netcanvas: no scheduler")
	// ErrNoViewport is returned by Start when Config.Viewport was nil.
	ErrNoViewport = errors.New("netcanvas: no viewport")
)

// Config wires a Renderer to its host.
type Config struct {
	// Surface may be nil; frames are skipped until one is attached.
	Surface   Surface
	Scheduler Scheduler
	Viewport  Viewport
	Theme     theme.Theme
	Options   Options
	Logger    *log.Logger
	// Rand overrides the placement source. Options.Seed is used otherwise.
	Rand *rand.Rand
}

// Renderer runs the particle network animation. All methods are safe for
// concurrent use; frames, node updates, theme changes, resizes and Stop are
// serialized by one lock.
type Renderer struct {
	mu sync.Mutex

	surface  Surface
	sched    Scheduler
	viewport Viewport
	opts     Options
	logger   *log.Logger
	rng      *rand.Rand

	theme   theme.Theme
	palette theme.Palette

	nodes     []model.Node
	particles []Particle
	edges     []Edge
	w, h      int

	running     bool
	pending     Handle
	hasPending  bool
	gen         uint64
	unsubscribe func()
	frames      uint64
}

// New returns a stopped renderer.
func New(cfg Config) *Renderer {
	opts := cfg.Options.withDefaults()
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	rng := cfg.Rand
	if rng == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	t := cfg.Theme
	if t.ID == "" && t.Primary == "" {
		t = theme.Default()
	}
	r := &Renderer{
		surface:  cfg.Surface,
		sched:    cfg.Scheduler,
		viewport: cfg.Viewport,
		opts:     opts,
		logger:   logger,
		rng:      rng,
		w:        1,
		h:        1,
	}
	r.setThemeLocked(t)
	return r
}

// SetNodes replaces the node list. Passing the same list again (same backing
// array and length) keeps the current particles; any other list rebuilds
// them from scratch on the running renderer.
func (r *Renderer) SetNodes(nodes []model.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sameList(nodes, r.nodes) {
		return
	}
	r.nodes = nodes
	if r.running {
		r.rebuildLocked()
	}
}

func sameList(a, b []model.Node) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// SetTheme switches colours. Particles keep their positions.
func (r *Renderer) SetTheme(t theme.Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setThemeLocked(t)
}

func (r *Renderer) setThemeLocked(t theme.Theme) {
	r.theme = t
	r.palette = t.Palette()
	if bd, ok := r.surface.(Backdrop); ok {
		bd.SetBackground(r.palette.Background)
	}
}

// Theme returns the active theme.
func (r *Renderer) Theme() theme.Theme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.theme
}

// AttachSurface installs s as the draw target. A nil s detaches.
func (r *Renderer) AttachSurface(s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surface = s
	if s == nil {
		return
	}
	if bd, ok := s.(Backdrop); ok {
		bd.SetBackground(r.palette.Background)
	}
	s.Resize(r.w, r.h)
}

// DetachSurface removes the draw target; frames become no-ops while the
// loop keeps running.
func (r *Renderer) DetachSurface() {
	r.AttachSurface(nil)
}

// Start sizes the canvas from the viewport, builds particles, subscribes to
// resizes and schedules the first frame.
func (r *Renderer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.running:
		return ErrRunning
	case r.sched == nil:
		return ErrNoScheduler
	case r.viewport == nil:
		return ErrNoViewport
	}

	w, h := r.viewport.Size()
	r.w, r.h = clampDim(w), clampDim(h)
	if r.surface != nil {
		r.surface.Resize(r.w, r.h)
	}
	r.rebuildLocked()
	r.unsubscribe = r.viewport.Subscribe(r.onResize)
	r.running = true
	r.scheduleLocked()

	r.logger.Debug("renderer started", "width", r.w, "height", r.h,
		"particles", len(r.particles), "max_distance", r.maxDistanceLocked())
	return nil
}

// Stop cancels the pending frame, drops the resize subscription and
// discards the particles. It is safe to call more than once.
func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	if r.hasPending {
		r.sched.Cancel(r.pending)
		r.hasPending = false
	}
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.particles = nil
	r.edges = nil
	r.logger.Debug("renderer stopped", "frames", r.frames)
}

// Running reports whether the frame loop is live.
func (r *Renderer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Renderer) scheduleLocked() {
	r.gen++
	gen := r.gen
	r.pending = r.sched.ScheduleNext(func(time.Time) { r.tick(gen) })
	r.hasPending = true
}

// tick is the scheduled frame callback. Callbacks from an earlier
// generation (cancelled, or superseded by a restart) do nothing.
func (r *Renderer) tick(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || !r.hasPending || gen != r.gen {
		return
	}
	r.hasPending = false
	r.frameLocked()
	r.scheduleLocked()
}

// Frame runs one frame immediately, outside the schedule. It reports
// whether anything was drawn.
func (r *Renderer) Frame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return false
	}
	return r.frameLocked()
}

func (r *Renderer) frameLocked() bool {
	if r.surface == nil {
		return false
	}
	defer metrics.Timer(metrics.FrameStep)()

	w, h := float64(r.w), float64(r.h)
	r.surface.Clear()
	for i := range r.particles {
		r.particles[i].advance(w, h, r.opts.PhaseStep)
	}

	stop := metrics.Timer(metrics.ConnectionPass)
	r.edges = Connect(r.particles, r.maxDistanceLocked(), r.edges)
	stop()

	for _, e := range r.edges {
		a, b := r.particles[e.I], r.particles[e.J]
		r.surface.Line(Segment{
			X1: a.Pos.X, Y1: a.Pos.Y,
			X2: b.Pos.X, Y2: b.Pos.Y,
			Color: theme.ScaleAlpha(r.palette.Line, r.opts.LineAlpha*e.Strength),
			Width: r.opts.MaxLineWidth * e.Strength,
		})
	}
	for _, p := range r.particles {
		r.drawParticle(p)
	}
	if pr, ok := r.surface.(Presenter); ok {
		pr.Present()
	}
	r.frames++
	return true
}

func (r *Renderer) drawParticle(p Particle) {
	pulse := p.Pulse()
	if !p.Important {
		r.surface.Circle(Dot{X: p.Pos.X, Y: p.Pos.Y, Radius: p.Radius, Color: theme.WithAlpha(r.palette.Node, pulse)})
		return
	}
	if !r.opts.NoGlow {
		r.surface.Circle(Dot{
			X: p.Pos.X, Y: p.Pos.Y,
			Radius: p.Radius * GlowScale,
			Color:  theme.ScaleAlpha(r.palette.Glow, pulse),
		})
	}
	r.surface.Circle(Dot{X: p.Pos.X, Y: p.Pos.Y, Radius: p.Radius, Color: r.palette.Primary})
}

func (r *Renderer) onResize(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.resizeLocked(w, h)
}

// resizeLocked applies a new canvas size. Unchanged sizes are ignored;
// otherwise every particle is wrapped into the new bounds at once.
func (r *Renderer) resizeLocked(w, h int) {
	w, h = clampDim(w), clampDim(h)
	if w == r.w && h == r.h {
		return
	}
	r.w, r.h = w, h
	if r.surface != nil {
		r.surface.Resize(w, h)
	}
	fw, fh := float64(w), float64(h)
	for i := range r.particles {
		r.particles[i].Pos = wrapVec(r.particles[i].Pos, fw, fh)
	}
	r.logger.Debug("canvas resized", "width", w, "height", h)
}

func (r *Renderer) rebuildLocked() {
	nodes := model.NormalizeAll(r.nodes)
	w, h := float64(r.w), float64(r.h)
	ps := make([]Particle, len(nodes))
	for i, n := range nodes {
		ps[i] = newParticle(n, w, h, r.opts, r.rng)
	}
	r.particles = ps
	r.edges = r.edges[:0]
}

func (r *Renderer) maxDistanceLocked() float64 {
	if r.opts.MaxDistance > 0 {
		return r.opts.MaxDistance
	}
	return AdaptiveDistance(r.w)
}

func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// State is a copy of the renderer's simulation at one instant.
type State struct {
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	MaxDistance float64    `json:"max_distance"`
	Frames      uint64     `json:"frames"`
	Running     bool       `json:"running"`
	ThemeID     string     `json:"theme"`
	Particles   []Particle `json:"particles"`
	Edges       []Edge     `json:"edges"`
}

// Snapshot copies the current simulation state.
func (r *Renderer) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Width:       r.w,
		Height:      r.h,
		MaxDistance: r.maxDistanceLocked(),
		Frames:      r.frames,
		Running:     r.running,
		ThemeID:     r.theme.ID,
		Particles:   append([]Particle(nil), r.particles...),
		Edges:       append([]Edge(nil), r.edges...),
	}
}
