package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")

	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)
	m.Record(3 * time.Millisecond)

	s := m.Stats()
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
	if s.MaxMs != 4 {
		t.Errorf("max = %v, want 4", s.MaxMs)
	}
	if s.MinMs != 2 {
		t.Errorf("min = %v, want 2", s.MinMs)
	}
	if s.AvgMs != 3 {
		t.Errorf("avg = %v, want 3", s.AvgMs)
	}
	if s.LastMs != 3 {
		t.Errorf("last = %v, want 3", s.LastMs)
	}
	if got := s.FPS(); got < 333 || got > 334 {
		t.Errorf("fps = %v, want ~333", got)
	}
}

func TestTimingMetricDisabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	m.Record(time.Millisecond)
	Timer(m)()
	if m.Count() != 0 {
		t.Fatalf("disabled metric recorded %d samples", m.Count())
	}
}

func TestTimingMetricConcurrent(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Record(time.Duration(i+1) * time.Microsecond)
			}
		}(i)
	}
	wg.Wait()

	s := m.Stats()
	if s.Count != 800 {
		t.Fatalf("count = %d, want 800", s.Count)
	}
	if s.MinMs != 0.001 || s.MaxMs != 0.008 {
		t.Errorf("min/max = %v/%v, want 0.001/0.008", s.MinMs, s.MaxMs)
	}
}

func TestTimerWithCallback(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("cb")

	var got time.Duration
	stop := TimerWithCallback(m, func(d time.Duration) { got = d })
	time.Sleep(time.Millisecond)
	stop()

	if got < time.Millisecond {
		t.Errorf("callback duration = %v, want >= 1ms", got)
	}
	if m.Count() != 1 {
		t.Errorf("count = %d, want 1", m.Count())
	}
}

func TestResetAllAndStats(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	if len(AllTimingStats()) != 0 {
		t.Fatal("expected no stats after reset")
	}
	FrameStep.Record(time.Millisecond)
	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "frame_step" {
		t.Fatalf("stats = %+v, want only frame_step", stats)
	}
	ResetAll()
	if FrameStep.Count() != 0 {
		t.Error("FrameStep not reset")
	}
}
