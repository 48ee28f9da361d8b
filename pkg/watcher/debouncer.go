package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration coalesces the burst of events editors and
// atomic renames produce for one save.
const DefaultDebounceDuration = 200 * time.Millisecond

// Debouncer runs the most recent callback once triggers stop arriving for
// its duration.
type Debouncer struct {
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer returns a Debouncer; durations <= 0 select
// DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Duration returns the quiet period.
func (d *Debouncer) Duration() time.Duration { return d.duration }

// Trigger (re)starts the quiet period; fn runs when it elapses.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		live := seq == d.seq
		d.mu.Unlock()
		if live {
			fn()
		}
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}
