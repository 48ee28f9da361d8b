package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/testutil"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Nodes == nil {
		opts.Nodes = testutil.QuickHubs(20, 2)
	}
	if opts.Copy == nil {
		opts.Copy = func(string) error { return nil }
	}
	opts.Canvas.Seed = 7
	m := New(opts)
	t.Cleanup(m.renderer.Stop)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

// step delivers the oldest pending frame as if its tick had fired.
func step(t *testing.T, m Model, at time.Time) Model {
	t.Helper()
	pending := m.sched.Pending()
	if len(pending) == 0 {
		t.Fatal("no pending frame")
	}
	m, _ = update(t, m, FrameMsg{Handle: pending[0], Time: at})
	return m
}

func TestTeaSchedulerFireAndCancel(t *testing.T) {
	s := NewTeaScheduler(20)
	if got := s.Interval(); got != 50*time.Millisecond {
		t.Fatalf("Interval = %v, want 50ms", got)
	}

	var fired []netcanvas.Handle
	h1 := s.ScheduleNext(func(time.Time) { fired = append(fired, 1) })
	h2 := s.ScheduleNext(func(time.Time) { fired = append(fired, 2) })
	if cmd := s.Cmd(); cmd == nil {
		t.Fatal("Cmd should tick for queued frames")
	}
	if cmd := s.Cmd(); cmd != nil {
		t.Fatal("second Cmd should have nothing queued")
	}

	s.Cancel(h1)
	if s.Fire(FrameMsg{Handle: h1}) {
		t.Error("cancelled frame fired")
	}
	if !s.Fire(FrameMsg{Handle: h2}) {
		t.Error("live frame did not fire")
	}
	if s.Fire(FrameMsg{Handle: h2}) {
		t.Error("frame fired twice")
	}
	if len(fired) != 1 || fired[0] != 2 {
		t.Errorf("fired = %v, want [2]", fired)
	}
	if p := s.Pending(); len(p) != 0 {
		t.Errorf("Pending = %v, want none", p)
	}
}

func TestNewTeaSchedulerDefaultsFPS(t *testing.T) {
	s := NewTeaScheduler(0)
	want := time.Second / time.Duration(netcanvas.DefaultFPS)
	if s.Interval() != want {
		t.Errorf("Interval = %v, want %v", s.Interval(), want)
	}
}

func TestModelStartsOnFirstWindowSize(t *testing.T) {
	m := newTestModel(t, Options{})
	if m.renderer.Running() {
		t.Fatal("renderer running before a size is known")
	}
	if got := m.View(); got != "starting…" {
		t.Errorf("View before size = %q", got)
	}

	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if !m.renderer.Running() {
		t.Fatal("renderer not started")
	}
	if cmd == nil {
		t.Fatal("expected a frame tick")
	}
	wantW, wantH := m.braille.CanvasSize(60, 19)
	st := m.renderer.Snapshot()
	if st.Width != wantW || st.Height != wantH {
		t.Errorf("canvas %dx%d, want %dx%d", st.Width, st.Height, wantW, wantH)
	}
	if len(st.Particles) != 20 {
		t.Errorf("particles = %d, want 20", len(st.Particles))
	}

	now := time.Now()
	m = step(t, m, now)
	m = step(t, m, now.Add(50*time.Millisecond))
	if f := m.renderer.Snapshot().Frames; f != 2 {
		t.Errorf("frames = %d, want 2", f)
	}
	if m.FPS() <= 0 {
		t.Errorf("FPS = %v, want > 0 after two frames", m.FPS())
	}

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 20 {
		t.Errorf("view has %d lines, want 20", len(lines))
	}
	if !strings.Contains(lines[len(lines)-1], "20 nodes") {
		t.Errorf("status bar %q lacks node count", lines[len(lines)-1])
	}
}

func TestModelResizeFollowsWindow(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	wantW, wantH := m.braille.CanvasSize(100, 29)
	st := m.renderer.Snapshot()
	if st.Width != wantW || st.Height != wantH {
		t.Errorf("canvas %dx%d, want %dx%d", st.Width, st.Height, wantW, wantH)
	}
	testutil.AssertInBounds(t, st.Particles, st.Width, st.Height)
}

func TestThemeKeyCycles(t *testing.T) {
	m := newTestModel(t, Options{Theme: theme.Default()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	start := m.renderer.Theme().ID

	seen := map[string]bool{start: true}
	for range theme.All() {
		m, _ = update(t, m, runes("t"))
		seen[m.renderer.Theme().ID] = true
	}
	if m.renderer.Theme().ID != start {
		t.Errorf("after a full cycle theme = %q, want %q", m.renderer.Theme().ID, start)
	}
	if len(seen) != len(theme.All()) {
		t.Errorf("visited %d themes, want %d", len(seen), len(theme.All()))
	}
}

func TestNextThemeUnknownIDStartsOver(t *testing.T) {
	themes := theme.All()
	if got := nextTheme(themes, "nope"); got.ID != themes[0].ID {
		t.Errorf("nextTheme(unknown) = %q, want %q", got.ID, themes[0].ID)
	}
	last := themes[len(themes)-1]
	if got := nextTheme(themes, last.ID); got.ID != themes[0].ID {
		t.Errorf("nextTheme(last) = %q, want wrap to %q", got.ID, themes[0].ID)
	}
}

func TestCopyKey(t *testing.T) {
	var copied string
	m := newTestModel(t, Options{Copy: func(s string) error { copied = s; return nil }})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 8})
	m = step(t, m, time.Now())

	m, _ = update(t, m, runes("c"))
	if copied == "" || copied != m.braille.Text() {
		t.Fatalf("clipboard got %q, want the braille frame", copied)
	}
	if strings.Contains(copied, "\x1b[") {
		t.Error("copied text carries ANSI escapes")
	}
	if !strings.HasPrefix(m.notice, "copied") {
		t.Errorf("notice = %q", m.notice)
	}

	m.opts.Copy = func(string) error { return errors.New("no clipboard") }
	m, _ = update(t, m, runes("c"))
	if !strings.Contains(m.notice, "no clipboard") {
		t.Errorf("notice = %q, want the copy error", m.notice)
	}
}

func TestReloadKey(t *testing.T) {
	next := testutil.QuickNodes(5)
	m := newTestModel(t, Options{
		Nodes: testutil.QuickNodes(3),
		Load: func(context.Context) ([]model.Node, error) {
			return next, nil
		},
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})

	m, cmd := update(t, m, runes("r"))
	if cmd == nil || !m.loading {
		t.Fatal("reload did not start")
	}
	// A second press while loading is ignored.
	if _, again := update(t, m, runes("r")); again != nil {
		t.Error("reload started twice")
	}

	m, _ = update(t, m, cmd())
	if m.loading {
		t.Error("still loading after nodes arrived")
	}
	if got := len(m.renderer.Snapshot().Particles); got != 5 {
		t.Errorf("particles = %d, want 5", got)
	}
	if !strings.HasPrefix(m.notice, "reloaded +2") {
		t.Errorf("notice = %q, want a diff summary", m.notice)
	}
}

func TestReloadFailureKeepsNodes(t *testing.T) {
	m := newTestModel(t, Options{
		Nodes: testutil.QuickNodes(4),
		Load: func(context.Context) ([]model.Node, error) {
			return nil, errors.New("gone")
		},
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, cmd := update(t, m, runes("r"))
	m, _ = update(t, m, cmd())
	if got := len(m.renderer.Snapshot().Particles); got != 4 {
		t.Errorf("particles = %d, want 4", got)
	}
	if !strings.Contains(m.notice, "gone") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestReloadWithoutLoader(t *testing.T) {
	m := newTestModel(t, Options{})
	m, cmd := update(t, m, runes("r"))
	if cmd != nil {
		t.Error("reload without a loader returned a command")
	}
	if m.notice != "source cannot be reloaded" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestSourceChangeTriggersReload(t *testing.T) {
	changes := make(chan struct{}, 1)
	m := newTestModel(t, Options{
		Changes: changes,
		Load: func(context.Context) ([]model.Node, error) {
			return testutil.QuickNodes(2), nil
		},
	})
	changes <- struct{}{}
	msg := m.waitForChange()()
	if _, ok := msg.(sourceChangedMsg); !ok {
		t.Fatalf("waitForChange returned %T", msg)
	}
	m, cmd := update(t, m, msg)
	if !m.loading || cmd == nil {
		t.Fatal("change did not start a reload")
	}
	close(changes)
	if msg := m.waitForChange()(); msg != nil {
		t.Errorf("closed channel yielded %T", msg)
	}
}

func TestLegendOverlay(t *testing.T) {
	m := newTestModel(t, Options{Source: "mock:20"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = step(t, m, time.Now())

	m, _ = update(t, m, runes("?"))
	if !m.showLegend || m.legend == "" {
		t.Fatal("legend not shown")
	}
	view := m.View()
	if !strings.Contains(view, "mock:20") {
		t.Error("legend lacks the source")
	}
	if got := len(strings.Split(view, "\n")); got != 30 {
		t.Errorf("view has %d lines, want 30", got)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showLegend {
		t.Error("esc did not close the legend")
	}
	if m.quitting {
		t.Error("esc with the legend open should not quit")
	}
}

func TestQuitStopsRenderer(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if m.renderer.Running() {
		t.Error("renderer still running after quit")
	}
	if len(m.sched.Pending()) != 0 {
		t.Error("frame left pending after quit")
	}
	if m.View() != "" {
		t.Error("view not cleared after quit")
	}
}

func TestStatusBarFitsWidth(t *testing.T) {
	m := newTestModel(t, Options{})
	for _, w := range []int{12, 40, 120} {
		m, _ = update(t, m, tea.WindowSizeMsg{Width: w, Height: 6})
		m.setNotice(strings.Repeat("long notice ", 20))
		bar := m.statusBar()
		if got := lipgloss.Width(bar); got != w {
			t.Errorf("width %d: status bar is %d cells", w, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 6, "hello…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
