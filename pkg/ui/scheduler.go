package ui

import (
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/spectra/pkg/netcanvas"
)

// FrameMsg delivers a scheduled frame callback to the program loop.
type FrameMsg struct {
	Handle netcanvas.Handle
	Time   time.Time
}

// TeaScheduler runs frame callbacks on the bubbletea event loop. The
// renderer schedules through it like any other scheduler; Cmd turns the
// new requests into tea.Tick commands and Fire runs a callback when its
// FrameMsg arrives.
type TeaScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	next     netcanvas.Handle
	pending  map[netcanvas.Handle]func(time.Time)
	queued   []netcanvas.Handle
}

// NewTeaScheduler returns a scheduler ticking at fps frames per second.
func NewTeaScheduler(fps int) *TeaScheduler {
	if fps < 1 {
		fps = netcanvas.DefaultFPS
	}
	return &TeaScheduler{
		interval: time.Second / time.Duration(fps),
		pending:  make(map[netcanvas.Handle]func(time.Time)),
	}
}

// Interval returns the frame period.
func (s *TeaScheduler) Interval() time.Duration { return s.interval }

func (s *TeaScheduler) ScheduleNext(fn func(time.Time)) netcanvas.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.pending[s.next] = fn
	s.queued = append(s.queued, s.next)
	return s.next
}

func (s *TeaScheduler) Cancel(h netcanvas.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, h)
}

// Cmd returns a tick for every callback scheduled since the last call, or
// nil when there are none.
func (s *TeaScheduler) Cmd() tea.Cmd {
	s.mu.Lock()
	queued := s.queued
	s.queued = nil
	s.mu.Unlock()

	var cmds []tea.Cmd
	for _, h := range queued {
		h := h
		cmds = append(cmds, tea.Tick(s.interval, func(t time.Time) tea.Msg {
			return FrameMsg{Handle: h, Time: t}
		}))
	}
	return tea.Batch(cmds...)
}

// Fire runs the callback for msg unless it was cancelled. It reports
// whether a callback ran.
func (s *TeaScheduler) Fire(msg FrameMsg) bool {
	s.mu.Lock()
	fn, ok := s.pending[msg.Handle]
	delete(s.pending, msg.Handle)
	s.mu.Unlock()
	if ok {
		fn(msg.Time)
	}
	return ok
}

// Pending returns the live handles in scheduling order.
func (s *TeaScheduler) Pending() []netcanvas.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]netcanvas.Handle, 0, len(s.pending))
	for h := range s.pending {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
