package surface

import (
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

// DefaultDotScale is how many canvas pixels one braille dot covers.
const DefaultDotScale = 4.0

// Braille dot (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Translucent lines would vanish at terminal resolution; their shade is
// boosted and floored against the background.
const (
	lineBoost    = 4.0
	minLineShade = 0.3
)

type cell struct {
	bits uint8
	fg   color.NRGBA
}

// Braille rasterizes onto a grid of terminal cells, each a 2×4 dot matrix.
// Canvas coordinates are divided by Scale to get dot coordinates.
type Braille struct {
	Scale float64

	cols, rows int
	dotW, dotH int
	bg         color.NRGBA
	back       []cell

	mu    sync.RWMutex
	front string
	plain string
}

// NewBraille returns a braille surface using DefaultDotScale.
func NewBraille() *Braille {
	return &Braille{Scale: DefaultDotScale, bg: color.NRGBA{A: 0xff}}
}

// CanvasSize returns the canvas size in pixels that fills cols×rows cells.
func (b *Braille) CanvasSize(cols, rows int) (w, h int) {
	s := b.scale()
	return int(float64(max(cols, 1)*2) * s), int(float64(max(rows, 1)*4) * s)
}

func (b *Braille) scale() float64 {
	if b.Scale <= 0 {
		return DefaultDotScale
	}
	return b.Scale
}

func (b *Braille) Resize(w, h int) {
	s := b.scale()
	b.dotW = max(int(math.Ceil(float64(w)/s)), 1)
	b.dotH = max(int(math.Ceil(float64(h)/s)), 1)
	b.cols = (b.dotW + 1) / 2
	b.rows = (b.dotH + 3) / 4
	b.back = make([]cell, b.cols*b.rows)
}

func (b *Braille) SetBackground(c color.NRGBA) { b.bg = c }

func (b *Braille) Clear() {
	clear(b.back)
}

func (b *Braille) Line(s netcanvas.Segment) {
	if s.Color.A == 0 {
		return
	}
	shade := math.Min(1, math.Max(minLineShade, theme.Opacity(s.Color)*lineBoost))
	fg := theme.Blend(b.opaqueBG(), s.Color, shade)

	sc := b.scale()
	x0, y0 := int(s.X1/sc), int(s.Y1/sc)
	x1, y1 := int(s.X2/sc), int(s.Y2/sc)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		b.plot(x0, y0, fg)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (b *Braille) Circle(d netcanvas.Dot) {
	if d.Color.A == 0 || d.Radius <= 0 {
		return
	}
	fg := theme.Blend(b.opaqueBG(), d.Color, theme.Opacity(d.Color))
	sc := b.scale()
	cx, cy, r := d.X/sc, d.Y/sc, d.Radius/sc
	if r < 0.5 {
		b.plot(int(cx), int(cy), fg)
		return
	}
	for y := int(math.Floor(cy - r)); y <= int(math.Ceil(cy+r)); y++ {
		for x := int(math.Floor(cx - r)); x <= int(math.Ceil(cx+r)); x++ {
			fx, fy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if fx*fx+fy*fy <= r*r {
				b.plot(x, y, fg)
			}
		}
	}
}

func (b *Braille) opaqueBG() color.NRGBA {
	bg := b.bg
	bg.A = 0xff
	return bg
}

// plot lights dot (x,y); the cell takes the colour of its latest dot.
func (b *Braille) plot(x, y int, fg color.NRGBA) {
	if x < 0 || y < 0 || x >= b.dotW || y >= b.dotH {
		return
	}
	c := &b.back[(y/4)*b.cols+x/2]
	c.bits |= 1 << brailleBits[x%2][y%4]
	c.fg = fg
}

// Present renders the back buffer into the string View returns.
func (b *Braille) Present() {
	out, plain := b.render(), b.text()
	b.mu.Lock()
	b.front, b.plain = out, plain
	b.mu.Unlock()
}

func (b *Braille) text() string {
	var sb strings.Builder
	sb.Grow(b.rows * (b.cols*3 + 1))
	for row := 0; row < b.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < b.cols; col++ {
			sb.WriteRune(rune(0x2800 + int(b.back[row*b.cols+col].bits)))
		}
	}
	return sb.String()
}

func (b *Braille) render() string {
	bgColor := lipgloss.Color(theme.CSS(b.bg))
	rows := make([]string, b.rows)
	for row := 0; row < b.rows; row++ {
		var line strings.Builder
		var run strings.Builder
		var runFG color.NRGBA
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := lipgloss.NewStyle().Background(bgColor)
			if runFG.A != 0 {
				st = st.Foreground(lipgloss.Color(theme.CSS(runFG)))
			}
			line.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for col := 0; col < b.cols; col++ {
			c := b.back[row*b.cols+col]
			fg := c.fg
			if c.bits == 0 {
				fg = color.NRGBA{}
			}
			if fg != runFG {
				flush()
				runFG = fg
			}
			run.WriteRune(rune(0x2800 + int(c.bits)))
		}
		flush()
		rows[row] = line.String()
	}
	return strings.Join(rows, "\n")
}

// View returns the last presented frame.
func (b *Braille) View() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.front
}

// Text returns the last presented frame as unstyled braille characters.
func (b *Braille) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.plain
}

// Dots returns the lit dot count of the back buffer.
func (b *Braille) Dots() int {
	n := 0
	for _, c := range b.back {
		for v := c.bits; v != 0; v &= v - 1 {
			n++
		}
	}
	return n
}

// Cells returns the grid size in terminal cells.
func (b *Braille) Cells() (cols, rows int) {
	return b.cols, b.rows
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
