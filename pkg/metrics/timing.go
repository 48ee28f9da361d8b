// Package metrics records frame timings for the canvas renderer.
//
// Timings are kept in memory with atomic counters so the frame loop, the
// HTTP server and the terminal UI can read them concurrently. Collection is
// on by default; SPECTRA_METRICS=0 turns it off.
//
//	func step() {
//	    defer metrics.Timer(metrics.FrameStep)()
//	    // ...
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("SPECTRA_METRICS") != "0")
}

// Enabled reports whether timings are being collected.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled switches collection on or off.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations for one named operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // 0 until the first sample
	last  atomic.Int64
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() || m == nil {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	m.last.Store(ns)

	for {
		old := m.max.Load()
		if ns <= old || m.max.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.min.Load()
		if old != 0 && ns >= old {
			break
		}
		if m.min.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Last returns the most recent sample.
func (m *TimingMetric) Last() time.Duration { return time.Duration(m.last.Load()) }

// Stats returns a consistent-enough snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.total.Load()
	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(total) / 1e6,
		AvgMs:   float64(avg) / 1e6,
		MaxMs:   float64(m.max.Load()) / 1e6,
		MinMs:   float64(m.min.Load()) / 1e6,
		LastMs:  float64(m.last.Load()) / 1e6,
	}
}

// Reset clears all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
	m.last.Store(0)
}

// TimingStats is the JSON form of a TimingMetric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
	LastMs  float64 `json:"last_ms"`
}

// FPS estimates frames per second from the average sample, assuming the
// metric times whole frames.
func (s TimingStats) FPS() float64 {
	if s.AvgMs <= 0 {
		return 0
	}
	return 1000 / s.AvgMs
}

// Timer returns a func that records the time elapsed since Timer was called.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// TimerWithCallback is Timer that also hands the duration to cb.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

var (
	// FrameStep times a whole frame: clear, move, connect, draw.
	FrameStep = newTimingMetric("frame_step")
	// ConnectionPass times the pairwise proximity scan alone.
	ConnectionPass = newTimingMetric("connection_pass")
	// SourceLoad times reading nodes from a data source.
	SourceLoad = newTimingMetric("source_load")
	// Encode times PNG and SVG encoding of a frame.
	Encode = newTimingMetric("encode")
)

// AllTimingMetrics returns every registered metric.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{FrameStep, ConnectionPass, SourceLoad, Encode}
}

// ResetAll resets every registered metric.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that have samples.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
