// Package ui hosts the network canvas in a terminal: a bubbletea program
// painting braille frames with a status bar and a help overlay.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/spectra/internal/datasource"
	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/surface"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

// noticeTTL is how long a status notice stays in the bar.
const noticeTTL = 4 * time.Second

// Loader reloads the node list.
type Loader func(ctx context.Context) ([]model.Node, error)

// Options configures the terminal host.
type Options struct {
	Source   string // shown in the legend
	Nodes    []model.Node
	Load     Loader // nil disables reload
	Theme    theme.Theme
	Themes   []theme.Theme // cycled by t; built-ins when empty
	Canvas   netcanvas.Options
	FPS      int
	DotScale float64
	Logger   *log.Logger
	// Changes, when set, signals that the source changed on disk.
	Changes <-chan struct{}
	// Copy writes text to the clipboard; nil uses the system clipboard.
	Copy func(string) error
}

type nodesLoadedMsg struct {
	nodes []model.Node
	err   error
}

type sourceChangedMsg struct{}

// Model is the Bubbletea model for the canvas TUI.
type Model struct {
	opts     Options
	logger   *log.Logger
	sched    *TeaScheduler
	window   *netcanvas.Window
	braille  *surface.Braille
	renderer *netcanvas.Renderer

	keys   keyMap
	help   help.Model
	themes []theme.Theme
	theme  theme.Theme
	styles styles
	nodes  []model.Node

	width, height int
	showLegend    bool
	legend        string
	loading       bool

	fps       harmonica.Spring
	fpsPos    float64
	fpsVel    float64
	lastFrame time.Time

	notice     string
	noticeTime time.Time
	quitting   bool
}

// New creates a Model. The renderer starts with the first window size.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	themes := opts.Themes
	if len(themes) == 0 {
		themes = theme.All()
	}
	t := opts.Theme
	if t.ID == "" {
		t = theme.Default()
	}

	sched := NewTeaScheduler(opts.FPS)
	window := netcanvas.NewWindow(1, 1)
	b := surface.NewBraille()
	if opts.DotScale > 0 {
		b.Scale = opts.DotScale
	}
	r := netcanvas.New(netcanvas.Config{
		Surface:   b,
		Scheduler: sched,
		Viewport:  window,
		Theme:     t,
		Options:   opts.Canvas,
		Logger:    logger,
	})
	r.SetNodes(opts.Nodes)

	keys := defaultKeyMap()
	keys.Reload.SetEnabled(opts.Load != nil)
	fps := int(time.Second / sched.Interval())
	return Model{
		keys:     keys,
		help:     help.New(),
		opts:     opts,
		logger:   logger,
		sched:    sched,
		window:   window,
		braille:  b,
		renderer: r,
		themes:   themes,
		theme:    t,
		styles:   newStyles(t),
		nodes:    opts.Nodes,
		fps:      harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Renderer exposes the canvas renderer.
func (m Model) Renderer() *netcanvas.Renderer { return m.renderer }

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("spectra"), m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	ch := m.opts.Changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return sourceChangedMsg{}
	}
}

func (m Model) reload() tea.Cmd {
	load := m.opts.Load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		nodes, err := load(ctx)
		return nodesLoadedMsg{nodes: nodes, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.braille.CanvasSize(m.width, max(m.height-1, 1))
		m.window.Resize(w, h)
		if !m.renderer.Running() {
			if err := m.renderer.Start(); err != nil {
				m.setNotice("canvas: " + err.Error())
			}
		}
		m.refreshLegend()
		return m, m.sched.Cmd()

	case FrameMsg:
		if m.sched.Fire(msg) {
			m.observeFrame(msg.Time)
		}
		if m.notice != "" && time.Since(m.noticeTime) > noticeTTL {
			m.notice = ""
		}
		return m, m.sched.Cmd()

	case sourceChangedMsg:
		if m.opts.Load == nil || m.loading {
			return m, m.waitForChange()
		}
		m.loading = true
		return m, tea.Batch(m.reload(), m.waitForChange())

	case nodesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Warn("reload failed", "err", msg.err)
			m.setNotice("reload failed: " + msg.err.Error())
			return m, nil
		}
		diff := datasource.Diff(m.nodes, msg.nodes)
		m.nodes = msg.nodes
		m.renderer.SetNodes(msg.nodes)
		m.setNotice("reloaded " + diff.Summary())
		return m, m.sched.Cmd()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close) && m.showLegend:
		m.showLegend = false

	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.renderer.Stop()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, m.keys.Theme):
		m.theme = nextTheme(m.themes, m.theme.ID)
		m.styles = newStyles(m.theme)
		m.renderer.SetTheme(m.theme)
		m.refreshLegend()
		m.setNotice("theme: " + m.theme.Label)

	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.setNotice("reloading…")
		return m, m.reload()

	case msg.String() == "r":
		m.setNotice("source cannot be reloaded")

	case key.Matches(msg, m.keys.Copy):
		if err := m.opts.Copy(m.braille.Text()); err != nil {
			m.setNotice("copy failed: " + err.Error())
		} else {
			cols, rows := m.braille.Cells()
			m.setNotice(fmt.Sprintf("copied %d×%d frame", cols, rows))
		}

	case key.Matches(msg, m.keys.Legend):
		m.showLegend = !m.showLegend
		m.refreshLegend()
	}
	return m, nil
}

func (m *Model) refreshLegend() {
	if !m.showLegend {
		return
	}
	m.help.Width = m.width
	legend := renderLegend(m.width, m.theme, m.renderer.Snapshot(), m.opts.Source)
	m.legend = strings.TrimRight(legend, "\n") + "\n\n" + m.styles.help.Render(" "+m.help.FullHelpView(m.keys.FullHelp()))
}

// nextTheme cycles through themes, wrapping around. Unknown IDs yield the
// first theme.
func nextTheme(themes []theme.Theme, id string) theme.Theme {
	for i, t := range themes {
		if strings.EqualFold(t.ID, id) {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// observeFrame feeds the instantaneous frame rate into the spring that
// smooths the FPS readout.
func (m *Model) observeFrame(t time.Time) {
	if !m.lastFrame.IsZero() {
		if dt := t.Sub(m.lastFrame).Seconds(); dt > 0 {
			m.fpsPos, m.fpsVel = m.fps.Update(m.fpsPos, m.fpsVel, 1/dt)
		}
	}
	m.lastFrame = t
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeTime = time.Now()
}

// FPS returns the smoothed frame rate.
func (m Model) FPS() float64 { return m.fpsPos }

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "starting…"
	}

	lines := strings.Split(m.braille.View(), "\n")
	rows := max(m.height-1, 1)
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	if m.showLegend {
		overlay := strings.Split(m.legend, "\n")
		for i := 0; i < len(overlay) && i < len(lines); i++ {
			lines[i] = padCells(overlay[i], m.width, lipgloss.NewStyle())
		}
	}
	return strings.Join(lines, "\n") + "\n" + m.statusBar()
}

func (m Model) statusBar() string {
	st := m.renderer.Snapshot()
	name := m.styles.accent.Render("spectra")
	info := fmt.Sprintf(" %s · %d nodes · %d links · %.0f fps ",
		m.theme.Label, len(st.Particles), len(st.Edges), m.fpsPos)
	avail := max(m.width-lipgloss.Width(name), 0)
	info = truncate(info, avail)
	bar := name + m.styles.bar.Render(info)

	rest := avail - runewidth.StringWidth(info)
	if m.notice != "" {
		bar += m.styles.notice.Render(truncate("· "+m.notice+" ", rest))
	} else {
		bar += m.styles.bar.Render(truncate(shortHelp(m.keys.ShortHelp()), rest))
	}
	return padCells(bar, m.width, m.styles.bar)
}

// shortHelp is the unstyled one-line key summary for the status bar.
func shortHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if b.Enabled() {
			parts = append(parts, b.Help().Key+" "+b.Help().Desc)
		}
	}
	return "· " + strings.Join(parts, " · ")
}

// padCells pads a styled line with styled spaces to width cells.
func padCells(s string, width int, fill lipgloss.Style) string {
	if w := lipgloss.Width(s); w < width {
		return s + fill.Render(strings.Repeat(" ", width-w))
	}
	return s
}

// truncate truncates s to maxWidth cells, ending in "…" when cut.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}
