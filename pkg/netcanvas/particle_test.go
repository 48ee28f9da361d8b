package netcanvas

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/spectra/pkg/model"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		v, max float64
		want   float64
	}{
		{"inside", 12.5, 100, 12.5},
		{"zero", 0, 100, 0},
		{"at right edge", 100, 100, 0},
		{"past right edge", 100.5, 100, 0.5},
		{"just below zero", -0.5, 100, 99.5},
		{"many widths out", 1234, 100, 34},
		{"many widths negative", -250, 100, 50},
		{"nan", math.NaN(), 100, 0},
		{"inf", math.Inf(1), 100, 0},
		{"degenerate canvas", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrap(tt.v, tt.max)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("wrap(%v, %v) = %v, want %v", tt.v, tt.max, got, tt.want)
			}
		})
	}
}

func TestWrapTinyNegative(t *testing.T) {
	// -ε + 100 rounds to exactly 100 in float64.
	got := wrap(-1e-15, 100)
	if got < 0 || got >= 100 {
		t.Fatalf("wrap(-1e-15, 100) = %v, outside [0,100)", got)
	}
}

func TestWrapStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(-1e7, 1e7).Draw(t, "v")
		max := rapid.Float64Range(1, 4096).Draw(t, "max")
		got := wrap(v, max)
		if got < 0 || got >= max {
			t.Fatalf("wrap(%v, %v) = %v, outside [0,%v)", v, max, got, max)
		}
	})
}

func TestAdvanceKeepsParticleOnCanvas(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := float64(rapid.IntRange(1, 2000).Draw(t, "w"))
		h := float64(rapid.IntRange(1, 2000).Draw(t, "h"))
		speed := rapid.Float64Range(0.01, 50).Draw(t, "speed")
		frames := rapid.IntRange(1, 200).Draw(t, "frames")

		opts := DefaultOptions()
		opts.Speed = speed
		rng := rand.New(rand.NewSource(rapid.Int64().Draw(t, "seed")))
		p := newParticle(model.Node{ID: "a"}, w, h, opts, rng)
		for i := 0; i < frames; i++ {
			p.advance(w, h, opts.PhaseStep)
			if p.Pos.X < 0 || p.Pos.X >= w || p.Pos.Y < 0 || p.Pos.Y >= h {
				t.Fatalf("frame %d: (%v,%v) outside %vx%v", i, p.Pos.X, p.Pos.Y, w, h)
			}
			if p.Phase < 0 || p.Phase >= twoPi {
				t.Fatalf("frame %d: phase %v outside [0,2π)", i, p.Phase)
			}
		}
	})
}

func TestNewParticle(t *testing.T) {
	opts := DefaultOptions()
	rng := rand.New(rand.NewSource(1))

	hub := newParticle(model.Node{ID: "hub", Important: true, Value: 0.9}, 800, 600, opts, rng)
	if hub.Radius != opts.HubRadius {
		t.Errorf("hub radius = %v, want %v", hub.Radius, opts.HubRadius)
	}

	leaf := newParticle(model.Node{ID: "leaf", Value: 0.5}, 800, 600, opts, rng)
	if want := opts.BaseRadius + 0.5*opts.ValueRadius; leaf.Radius != want {
		t.Errorf("leaf radius = %v, want %v", leaf.Radius, want)
	}

	for _, p := range []Particle{hub, leaf} {
		if math.Abs(p.Vel.X) > opts.Speed || math.Abs(p.Vel.Y) > opts.Speed {
			t.Errorf("%s velocity %v exceeds speed %v", p.ID, p.Vel, opts.Speed)
		}
		if p.Pos.X < 0 || p.Pos.X >= 800 || p.Pos.Y < 0 || p.Pos.Y >= 600 {
			t.Errorf("%s placed at %v outside canvas", p.ID, p.Pos)
		}
	}
}

func TestAdvanceWrapsAcrossEdge(t *testing.T) {
	p := Particle{Pos: r2.Vec{X: 99.8, Y: 0.1}, Vel: r2.Vec{X: 0.5, Y: -0.5}}
	p.advance(100, 100, 0)
	if math.Abs(p.Pos.X-0.3) > 1e-9 || math.Abs(p.Pos.Y-99.6) > 1e-9 {
		t.Errorf("pos = %v, want (0.3, 99.6)", p.Pos)
	}
}

func TestPulseRange(t *testing.T) {
	for _, phase := range []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2} {
		got := Particle{Phase: phase}.Pulse()
		if got < 0 || got > 1 {
			t.Errorf("pulse(%v) = %v outside [0,1]", phase, got)
		}
	}
}
