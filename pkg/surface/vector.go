package surface

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sync"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/spectra/pkg/metrics"
	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

type vectorOp struct {
	line *netcanvas.Segment
	dot  *netcanvas.Dot
}

// Vector records a frame's draw calls and replays the last presented frame
// as SVG.
type Vector struct {
	w, h int
	bg   color.NRGBA
	back []vectorOp

	mu    sync.RWMutex
	front []vectorOp
	fw    int
	fh    int
	fbg   color.NRGBA
}

// NewVector returns an empty 1×1 vector surface.
func NewVector() *Vector {
	return &Vector{w: 1, h: 1, bg: color.NRGBA{A: 0xff}}
}

func (v *Vector) Resize(w, h int) {
	v.w, v.h = max(w, 1), max(h, 1)
}

func (v *Vector) SetBackground(c color.NRGBA) { v.bg = c }

func (v *Vector) Clear() { v.back = v.back[:0] }

func (v *Vector) Line(s netcanvas.Segment) {
	if s.Color.A == 0 {
		return
	}
	v.back = append(v.back, vectorOp{line: &s})
}

func (v *Vector) Circle(d netcanvas.Dot) {
	if d.Color.A == 0 || d.Radius <= 0 {
		return
	}
	v.back = append(v.back, vectorOp{dot: &d})
}

func (v *Vector) Present() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.front = append(v.front[:0], v.back...)
	v.fw, v.fh, v.fbg = v.w, v.h, v.bg
}

// Ops returns the number of elements in the last presented frame.
func (v *Vector) Ops() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.front)
}

// WriteSVG writes the last presented frame. Coordinates are rounded to
// whole pixels.
func (v *Vector) WriteSVG(w io.Writer) error {
	return v.WriteSVGOverlay(w, nil)
}

// WriteSVGOverlay is WriteSVG with extra elements drawn on top of the
// frame before the document is closed.
func (v *Vector) WriteSVGOverlay(w io.Writer, overlay func(canvas *svg.SVG, width, height int)) error {
	defer metrics.Timer(metrics.Encode)()
	v.mu.RLock()
	defer v.mu.RUnlock()

	width, height, bg := v.fw, v.fh, v.fbg
	if width == 0 {
		width, height, bg = v.w, v.h, v.bg
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", theme.CSS(bg)))
	for _, op := range v.front {
		switch {
		case op.line != nil:
			s := op.line
			canvas.Line(px(s.X1), px(s.Y1), px(s.X2), px(s.Y2),
				fmt.Sprintf("stroke:%s;stroke-opacity:%.3f;stroke-width:%.2f",
					theme.CSS(s.Color), theme.Opacity(s.Color), max(s.Width, minLineWidth)))
		case op.dot != nil:
			d := op.dot
			canvas.Circle(px(d.X), px(d.Y), max(px(d.Radius), 1),
				fmt.Sprintf("fill:%s;fill-opacity:%.3f", theme.CSS(d.Color), theme.Opacity(d.Color)))
		}
	}
	if overlay != nil {
		overlay(canvas, width, height)
	}
	canvas.End()
	return ew.err
}

func px(f float64) int { return int(math.Round(f)) }

// errWriter keeps the first write error; svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
