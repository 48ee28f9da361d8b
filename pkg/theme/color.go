package theme

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// named holds the CSS keywords accepted in custom themes.
var named = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"pink":    "#ffc0cb",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"navy":    "#000080",
	"teal":    "#008080",
}

// ParseColor parses the CSS colour forms used by the dashboard themes:
// #rgb, #rrggbb, #rrggbbaa, rgb(r, g, b), rgba(r, g, b, a), a small set of
// named colours and "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if hex, ok := named[s]; ok {
		return parseHex(hex)
	}
	switch {
	case s == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseFunc(s)
	case s == "":
		return color.NRGBA{}, fmt.Errorf("empty colour")
	default:
		return color.NRGBA{}, fmt.Errorf("unsupported colour %q", s)
	}
}

func parseHex(s string) (color.NRGBA, error) {
	alpha := uint8(0xff)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	if len(s) != 4 && len(s) != 7 {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func parseFunc(s string) (color.NRGBA, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, fmt.Errorf("malformed colour %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("colour %q needs 3 or 4 components", s)
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid component in %q: %w", s, err)
		}
		rgb[i] = uint8(math.Round(math.Max(0, math.Min(255, v))))
	}

	alpha := uint8(0xff)
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		alpha = uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, nil
}

// WithAlpha returns c with its alpha replaced by a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	if math.IsNaN(a) || a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(math.Round(a * 255))
	return c
}

// ScaleAlpha multiplies c's alpha by f in [0,1].
func ScaleAlpha(c color.NRGBA, f float64) color.NRGBA {
	return WithAlpha(c, float64(c.A)/255*f)
}

// Blend mixes a towards b by t in [0,1] in RGB space, keeping a's alpha.
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: a.A}
}

// CSS formats c as #rrggbb, the form SVG style attributes expect.
func CSS(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opacity returns c's alpha in [0,1].
func Opacity(c color.NRGBA) float64 {
	return float64(c.A) / 255
}

// Ink returns a readable text colour for the background bg.
func Ink(bg color.NRGBA) color.NRGBA {
	c := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
	if l, _, _ := c.Lab(); l > 0.6 {
		return color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	}
	return color.NRGBA{R: 0xf1, G: 0xf5, B: 0xf9, A: 0xff}
}
