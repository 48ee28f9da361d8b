package netcanvas

import "image/color"

// Segment is one edge as handed to a Surface.
type Segment struct {
	X1, Y1 float64
	X2, Y2 float64
	Color  color.NRGBA
	Width  float64
}

// Dot is one filled circle as handed to a Surface.
type Dot struct {
	X, Y   float64
	Radius float64
	Color  color.NRGBA
}

// Surface is the pixel target a Renderer draws on. Implementations are
// only ever called from the renderer's frame loop.
type Surface interface {
	Resize(w, h int)
	Clear()
	Line(s Segment)
	Circle(d Dot)
}

// Presenter is implemented by surfaces that publish a finished frame, for
// example by swapping buffers.
type Presenter interface {
	Present()
}

// Backdrop is implemented by surfaces that paint a background on Clear.
type Backdrop interface {
	SetBackground(c color.NRGBA)
}
