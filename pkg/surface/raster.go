// Package surface provides the draw targets the canvas renderer paints on:
// an anti-aliased raster image, a recorded SVG scene and a braille grid for
// terminals.
package surface

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"sync"

	"git.sr.ht/~sbinet/gg"

	"github.com/vanderheijden86/spectra/pkg/metrics"
	"github.com/vanderheijden86/spectra/pkg/netcanvas"
)

// minLineWidth keeps hairline edges from disappearing when anti-aliased.
const minLineWidth = 0.25

// Raster paints frames with gg. Drawing happens on a back buffer; Present
// publishes it so Snapshot and EncodePNG never see a half-drawn frame.
type Raster struct {
	dc *gg.Context
	bg color.NRGBA

	// mu guards the size and the published frame.
	mu    sync.RWMutex
	w     int
	h     int
	front *image.RGBA
}

// NewRaster returns a 1×1 raster; the renderer resizes it on Start.
func NewRaster() *Raster {
	r := &Raster{bg: color.NRGBA{A: 0xff}}
	r.Resize(1, 1)
	return r
}

func (r *Raster) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	r.mu.Lock()
	same := r.dc != nil && w == r.w && h == r.h
	r.w, r.h = w, h
	r.mu.Unlock()
	if same {
		return
	}
	r.dc = gg.NewContext(w, h)
	r.Clear()
}

func (r *Raster) SetBackground(c color.NRGBA) {
	r.bg = c
}

func (r *Raster) Clear() {
	r.dc.SetColor(r.bg)
	r.dc.Clear()
}

func (r *Raster) Line(s netcanvas.Segment) {
	if s.Color.A == 0 {
		return
	}
	r.dc.SetColor(s.Color)
	r.dc.SetLineWidth(max(s.Width, minLineWidth))
	r.dc.DrawLine(s.X1, s.Y1, s.X2, s.Y2)
	r.dc.Stroke()
}

func (r *Raster) Circle(d netcanvas.Dot) {
	if d.Color.A == 0 || d.Radius <= 0 {
		return
	}
	r.dc.SetColor(d.Color)
	r.dc.DrawCircle(d.X, d.Y, d.Radius)
	r.dc.Fill()
}

// Annotate runs fn on the back buffer, for overlays drawn after the
// network and before Present.
func (r *Raster) Annotate(fn func(dc *gg.Context)) {
	fn(r.dc)
}

func (r *Raster) Present() {
	src := r.dc.Image()
	b := src.Bounds()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.front == nil || r.front.Bounds() != b {
		r.front = image.NewRGBA(b)
	}
	draw.Draw(r.front, b, src, b.Min, draw.Src)
}

// Snapshot returns a copy of the last presented frame, or nil before the
// first Present.
func (r *Raster) Snapshot() *image.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.front == nil {
		return nil
	}
	out := image.NewRGBA(r.front.Bounds())
	copy(out.Pix, r.front.Pix)
	return out
}

// EncodePNG writes the last presented frame as PNG. Before the first
// Present it writes a blank image of the current size.
func (r *Raster) EncodePNG(w io.Writer) error {
	defer metrics.Timer(metrics.Encode)()
	img := r.Snapshot()
	if img == nil {
		w, h := r.Size()
		img = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return gg.NewContextForRGBA(img).EncodePNG(w)
}

// Presented reports whether a frame has been published.
func (r *Raster) Presented() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.front != nil
}

// Size returns the current pixel size.
func (r *Raster) Size() (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.w, r.h
}
