package netcanvas

import "math"

// Options tune the simulation and drawing. Zero fields take the value from
// DefaultOptions, except MaxDistance where zero means "adapt to the width".
type Options struct {
	// MaxDistance is the proximity threshold in pixels. Zero selects
	// AdaptiveDistance for the current width.
	MaxDistance float64 `yaml:"max_distance" toml:"max_distance" json:"max_distance"`
	// Speed bounds each velocity component to [-Speed, Speed] px/frame.
	Speed float64 `yaml:"speed" toml:"speed" json:"speed"`
	// PhaseStep is the pulse phase advance per frame in radians.
	PhaseStep float64 `yaml:"phase_step" toml:"phase_step" json:"phase_step"`

	BaseRadius  float64 `yaml:"base_radius" toml:"base_radius" json:"base_radius"`
	ValueRadius float64 `yaml:"value_radius" toml:"value_radius" json:"value_radius"`
	HubRadius   float64 `yaml:"hub_radius" toml:"hub_radius" json:"hub_radius"`

	// LineAlpha multiplies the theme's line opacity.
	LineAlpha    float64 `yaml:"line_alpha" toml:"line_alpha" json:"line_alpha"`
	MaxLineWidth float64 `yaml:"max_line_width" toml:"max_line_width" json:"max_line_width"`

	// NoGlow disables the halo behind important particles.
	NoGlow bool `yaml:"no_glow" toml:"no_glow" json:"no_glow"`
	// Seed fixes the random placement. Zero seeds from the clock.
	Seed int64 `yaml:"seed" toml:"seed" json:"seed"`
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		Speed:        0.5,
		PhaseStep:    0.005,
		BaseRadius:   2,
		ValueRadius:  1.5,
		HubRadius:    5,
		LineAlpha:    1,
		MaxLineWidth: 1,
	}
}

// GlowScale is the halo radius relative to the particle radius.
const GlowScale = 3

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	fill := func(v *float64, def float64) {
		if *v == 0 || math.IsNaN(*v) {
			*v = def
		}
		*v = math.Abs(*v)
	}
	fill(&o.Speed, d.Speed)
	fill(&o.PhaseStep, d.PhaseStep)
	fill(&o.BaseRadius, d.BaseRadius)
	fill(&o.ValueRadius, d.ValueRadius)
	fill(&o.HubRadius, d.HubRadius)
	fill(&o.LineAlpha, d.LineAlpha)
	fill(&o.MaxLineWidth, d.MaxLineWidth)
	if o.MaxDistance < 0 || math.IsNaN(o.MaxDistance) {
		o.MaxDistance = 0
	}
	return o
}
