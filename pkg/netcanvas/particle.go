package netcanvas

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/spectra/pkg/model"
)

// Particle is the simulation state for one node.
type Particle struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Important bool    `json:"important"`
	Value     float64 `json:"value"`

	Pos    r2.Vec  `json:"pos"`
	Vel    r2.Vec  `json:"vel"`
	Radius float64 `json:"radius"`
	Phase  float64 `json:"phase"`
}

const twoPi = 2 * math.Pi

// newParticle places n uniformly inside a w×h canvas with a random drift.
func newParticle(n model.Node, w, h float64, o Options, rng *rand.Rand) Particle {
	p := Particle{
		ID:        n.ID,
		Label:     n.Label,
		Important: n.Important,
		Value:     n.Value,
		Pos:       r2.Vec{X: rng.Float64() * w, Y: rng.Float64() * h},
		Vel: r2.Vec{
			X: (rng.Float64()*2 - 1) * o.Speed,
			Y: (rng.Float64()*2 - 1) * o.Speed,
		},
		Phase: rng.Float64() * twoPi,
	}
	if p.Important {
		p.Radius = o.HubRadius
	} else {
		p.Radius = o.BaseRadius + n.Value*o.ValueRadius
	}
	p.Pos = wrapVec(p.Pos, w, h)
	return p
}

// advance moves p by one frame and wraps it into the w×h canvas.
func (p *Particle) advance(w, h, phaseStep float64) {
	p.Pos = wrapVec(r2.Add(p.Pos, p.Vel), w, h)
	p.Phase = math.Mod(p.Phase+phaseStep, twoPi)
}

// Pulse returns the particle's pulsing intensity in [0,1].
func (p Particle) Pulse() float64 {
	return 0.5 + 0.5*math.Sin(p.Phase)
}

func wrapVec(v r2.Vec, w, h float64) r2.Vec {
	return r2.Vec{X: wrap(v.X, w), Y: wrap(v.Y, h)}
}

// wrap maps v into [0,max) on a torus. Values that are not finite land on 0.
func wrap(v, max float64) float64 {
	if v >= 0 && v < max {
		return v
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || max <= 0 {
		return 0
	}
	v = math.Mod(v, max)
	if v < 0 {
		v += max
	}
	// -ε + max rounds to max.
	if v >= max {
		v = 0
	}
	return v
}
