// Package export writes still images of the network canvas.
package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/surface"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

// DefaultWarmup is the number of frames simulated before capture.
const DefaultWarmup = 120

// FrameSnapshotOptions controls snapshot export.
type FrameSnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string // Optional title rendered in the summary block
	Nodes  []model.Node
	Theme  theme.Theme
	Width  int // canvas size in pixels; 1280×720 when zero
	Height int
	// Warmup frames run before capture; negative captures the first frame.
	Warmup  int
	Options netcanvas.Options // Options.Seed fixes the placement
	// NoSummary skips the header block and legend.
	NoSummary bool
}

// Summary describes a captured frame.
type Summary struct {
	Title       string
	Theme       string
	DataHash    string
	Nodes       int
	Hubs        int
	Edges       int
	Frames      uint64
	MaxDistance float64
}

// SaveFrameSnapshot runs the renderer off-screen for the warmup frames and
// writes the resulting frame as SVG or PNG.
func SaveFrameSnapshot(opts FrameSnapshotOptions) (Summary, error) {
	format, path, err := resolveFormat(opts.Format, opts.Path)
	if err != nil {
		return Summary{}, err
	}
	opts.Path = path
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	if opts.Warmup == 0 {
		opts.Warmup = DefaultWarmup
	}
	if opts.Theme.ID == "" && opts.Theme.Primary == "" {
		opts.Theme = theme.Default()
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return Summary{}, fmt.Errorf("create parent dir: %w", err)
	}

	var (
		raster *surface.Raster
		vector *surface.Vector
		target netcanvas.Surface
	)
	if format == "png" {
		raster = surface.NewRaster()
		target = raster
	} else {
		vector = surface.NewVector()
		target = vector
	}

	sched := netcanvas.NewManualScheduler()
	r := netcanvas.New(netcanvas.Config{
		Surface:   target,
		Scheduler: sched,
		Viewport:  netcanvas.NewWindow(opts.Width, opts.Height),
		Theme:     opts.Theme,
		Options:   opts.Options,
	})
	r.SetNodes(opts.Nodes)
	if err := r.Start(); err != nil {
		return Summary{}, err
	}
	defer r.Stop()
	sched.StepN(max(opts.Warmup, 1))

	st := r.Snapshot()
	sum := Summary{
		Title:       opts.Title,
		Theme:       opts.Theme.Label,
		DataHash:    model.DataHash(opts.Nodes),
		Nodes:       len(st.Particles),
		Hubs:        model.CountImportant(opts.Nodes),
		Edges:       len(st.Edges),
		Frames:      st.Frames,
		MaxDistance: st.MaxDistance,
	}
	if strings.TrimSpace(sum.Title) == "" {
		sum.Title = "Network Snapshot"
	}
	if sum.Theme == "" {
		sum.Theme = opts.Theme.ID
	}

	pal := opts.Theme.Palette()
	switch format {
	case "png":
		if !opts.NoSummary {
			raster.Annotate(func(dc *gg.Context) {
				drawSummaryBlock(dc, sum, pal)
				drawLegend(dc, opts.Width, pal)
			})
			raster.Present()
		}
		err = writePNG(opts.Path, raster)
	default:
		err = writeSVG(opts.Path, vector, sum, pal, opts.NoSummary)
	}
	return sum, err
}

func resolveFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

func writePNG(path string, r *surface.Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSVG(path string, v *surface.Vector, sum Summary, pal theme.Palette, noSummary bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var overlay func(*svg.SVG, int, int)
	if !noSummary {
		overlay = func(canvas *svg.SVG, width, _ int) {
			drawSummaryBlockSVG(canvas, sum, pal)
			drawLegendSVG(canvas, width, pal)
		}
	}
	if err := v.WriteSVGOverlay(f, overlay); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- overlay ---------------------------------------------------------------

const (
	headerW = 300.0
	headerH = 104.0
	legendW = 190.0
	legendH = 80.0
	margin  = 16.0
)

func panel(pal theme.Palette) color.NRGBA {
	c := theme.Blend(pal.Background, pal.Secondary, 0.08)
	c.A = 0xe6
	return c
}

func subtle(pal theme.Palette) color.NRGBA {
	return theme.Blend(theme.Ink(pal.Background), pal.Background, 0.35)
}

func summaryLines(sum Summary) []string {
	return []string{
		fmt.Sprintf("theme: %s", sum.Theme),
		fmt.Sprintf("nodes: %d  hubs: %d  edges: %d", sum.Nodes, sum.Hubs, sum.Edges),
		fmt.Sprintf("link < %.0fpx  frame %d", sum.MaxDistance, sum.Frames),
		fmt.Sprintf("data_hash: %s", sum.DataHash),
	}
}

func drawSummaryBlock(dc *gg.Context, sum Summary, pal theme.Palette) {
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(panel(pal))
	dc.DrawRoundedRectangle(margin, margin, headerW, headerH, 10)
	dc.Fill()

	dc.SetColor(theme.Ink(pal.Background))
	dc.DrawStringAnchored(truncate(sum.Title, 38), margin+16, margin+20, 0, 0.5)
	dc.SetColor(subtle(pal))
	for i, line := range summaryLines(sum) {
		dc.DrawStringAnchored(line, margin+16, margin+40+float64(i)*16, 0, 0.5)
	}
}

func drawLegend(dc *gg.Context, width int, pal theme.Palette) {
	x := float64(width) - legendW - margin
	y := margin
	dc.SetColor(panel(pal))
	dc.DrawRoundedRectangle(x, y, legendW, legendH, 10)
	dc.Fill()

	dc.SetColor(theme.Ink(pal.Background))
	dc.DrawStringAnchored("Legend", x+12, y+16, 0, 0.5)

	// hub: glow halo behind a primary core
	dc.SetColor(pal.Glow)
	dc.DrawCircle(x+19, y+36, 7)
	dc.Fill()
	dc.SetColor(pal.Primary)
	dc.DrawCircle(x+19, y+36, 3.5)
	dc.Fill()
	dc.SetColor(subtle(pal))
	dc.DrawStringAnchored("Hub / oncogene", x+34, y+36, 0, 0.5)

	dc.SetColor(theme.WithAlpha(pal.Node, 1))
	dc.DrawCircle(x+19, y+52, 2.5)
	dc.Fill()
	dc.SetColor(subtle(pal))
	dc.DrawStringAnchored("Node", x+34, y+52, 0, 0.5)

	dc.SetColor(theme.WithAlpha(pal.Line, 0.8))
	dc.SetLineWidth(1.5)
	dc.DrawLine(x+12, y+68, x+26, y+68)
	dc.Stroke()
	dc.SetColor(subtle(pal))
	dc.DrawStringAnchored("Proximity link", x+34, y+68, 0, 0.5)
}

func fill(c color.NRGBA) string {
	return fmt.Sprintf("fill:%s;fill-opacity:%.2f", theme.CSS(c), theme.Opacity(c))
}

func drawSummaryBlockSVG(canvas *svg.SVG, sum Summary, pal theme.Palette) {
	canvas.Roundrect(int(margin), int(margin), int(headerW), int(headerH), 10, 10, fill(panel(pal)))
	canvas.Text(int(margin)+16, int(margin)+24, truncate(sum.Title, 38),
		fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", theme.CSS(theme.Ink(pal.Background))))
	for i, line := range summaryLines(sum) {
		canvas.Text(int(margin)+16, int(margin)+44+i*16, line,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", theme.CSS(subtle(pal))))
	}
}

func drawLegendSVG(canvas *svg.SVG, width int, pal theme.Palette) {
	x := width - int(legendW) - int(margin)
	y := int(margin)
	text := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", theme.CSS(subtle(pal)))
	canvas.Roundrect(x, y, int(legendW), int(legendH), 10, 10, fill(panel(pal)))
	canvas.Text(x+12, y+18, "Legend",
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", theme.CSS(theme.Ink(pal.Background))))
	canvas.Circle(x+19, y+36, 7, fill(pal.Glow))
	canvas.Circle(x+19, y+36, 4, fill(pal.Primary))
	canvas.Text(x+34, y+40, "Hub / oncogene", text)
	canvas.Circle(x+19, y+52, 3, fill(theme.WithAlpha(pal.Node, 1)))
	canvas.Text(x+34, y+56, "Node", text)
	canvas.Line(x+12, y+68, x+26, y+68,
		fmt.Sprintf("stroke:%s;stroke-opacity:0.8;stroke-width:1.5", theme.CSS(pal.Line)))
	canvas.Text(x+34, y+72, "Proximity link", text)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
