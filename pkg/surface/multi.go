package surface

import (
	"image/color"

	"github.com/vanderheijden86/spectra/pkg/netcanvas"
)

// Fanout forwards every draw call to several surfaces, so one renderer can
// feed a raster and a vector target at once.
type Fanout []netcanvas.Surface

// Multi returns a Fanout over the non-nil surfaces.
func Multi(surfaces ...netcanvas.Surface) Fanout {
	out := make(Fanout, 0, len(surfaces))
	for _, s := range surfaces {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f Fanout) Resize(w, h int) {
	for _, s := range f {
		s.Resize(w, h)
	}
}

func (f Fanout) Clear() {
	for _, s := range f {
		s.Clear()
	}
}

func (f Fanout) Line(seg netcanvas.Segment) {
	for _, s := range f {
		s.Line(seg)
	}
}

func (f Fanout) Circle(d netcanvas.Dot) {
	for _, s := range f {
		s.Circle(d)
	}
}

// Present presents every member that supports it.
func (f Fanout) Present() {
	for _, s := range f {
		if p, ok := s.(netcanvas.Presenter); ok {
			p.Present()
		}
	}
}

// SetBackground forwards to every member that paints a background.
func (f Fanout) SetBackground(c color.NRGBA) {
	for _, s := range f {
		if b, ok := s.(netcanvas.Backdrop); ok {
			b.SetBackground(c)
		}
	}
}
