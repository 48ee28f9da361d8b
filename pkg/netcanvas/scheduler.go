package netcanvas

import (
	"sync"
	"time"
)

// Handle identifies one scheduled frame callback.
type Handle uint64

// Scheduler delivers "call me on the next frame" requests. A callback fires
// at most once, and never after Cancel returns for its handle unless it had
// already started.
type Scheduler interface {
	ScheduleNext(fn func(now time.Time)) Handle
	Cancel(h Handle)
}

// ManualScheduler fires callbacks only when Step is called. The zero value
// is not usable; use NewManualScheduler.
type ManualScheduler struct {
	mu        sync.Mutex
	next      Handle
	queue     []Handle
	pending   map[Handle]func(time.Time)
	now       time.Time
	interval  time.Duration
	cancelled int
}

// NewManualScheduler returns a scheduler whose clock starts at the Unix
// epoch and advances 1/60 s per step.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		pending:  make(map[Handle]func(time.Time)),
		now:      time.Unix(0, 0),
		interval: time.Second / 60,
	}
}

func (s *ManualScheduler) ScheduleNext(fn func(time.Time)) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.pending[h] = fn
	s.queue = append(s.queue, h)
	return h
}

func (s *ManualScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[h]; ok {
		delete(s.pending, h)
		s.cancelled++
	}
}

// Step fires every callback that was pending when Step was called, in
// scheduling order, and returns how many fired. Callbacks scheduled while
// stepping wait for the next Step.
func (s *ManualScheduler) Step() int {
	s.mu.Lock()
	s.now = s.now.Add(s.interval)
	now := s.now
	queue := s.queue
	s.queue = nil
	fns := make([]func(time.Time), 0, len(queue))
	for _, h := range queue {
		if fn, ok := s.pending[h]; ok {
			delete(s.pending, h)
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}

// StepN calls Step n times and returns the total number of callbacks fired.
func (s *ManualScheduler) StepN(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		fired += s.Step()
	}
	return fired
}

// Pending returns the number of callbacks waiting for a Step.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Cancelled returns how many pending callbacks were cancelled.
func (s *ManualScheduler) Cancelled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// DefaultFPS is the FrameClock rate used when none is given.
const DefaultFPS = 60

// FrameClock fires each callback one frame interval after it was scheduled.
type FrameClock struct {
	interval time.Duration

	mu     sync.Mutex
	next   Handle
	timers map[Handle]*time.Timer
}

// NewFrameClock returns a clock ticking at fps frames per second. Values
// below 1 select DefaultFPS.
func NewFrameClock(fps int) *FrameClock {
	if fps < 1 {
		fps = DefaultFPS
	}
	return &FrameClock{
		interval: time.Second / time.Duration(fps),
		timers:   make(map[Handle]*time.Timer),
	}
}

// Interval returns the time between frames.
func (c *FrameClock) Interval() time.Duration { return c.interval }

func (c *FrameClock) ScheduleNext(fn func(time.Time)) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	h := c.next
	c.timers[h] = time.AfterFunc(c.interval, func() {
		c.mu.Lock()
		_, live := c.timers[h]
		delete(c.timers, h)
		c.mu.Unlock()
		if live {
			fn(time.Now())
		}
	})
	return h
}

func (c *FrameClock) Cancel(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[h]; ok {
		t.Stop()
		delete(c.timers, h)
	}
}

// Pending returns the number of timers that have not fired yet.
func (c *FrameClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
