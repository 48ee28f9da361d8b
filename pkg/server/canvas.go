package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/vanderheijden86/spectra/pkg/metrics"
)

// canvasSize applies the w and h query parameters to the live viewport and
// makes sure a frame at the current size has been presented.
func (s *Server) canvasSize(w http.ResponseWriter, r *http.Request) bool {
	cw, ch := s.window.Size()
	q := r.URL.Query()
	for _, p := range []struct {
		key string
		dst *int
	}{{"w", &cw}, {"h", &ch}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxCanvasDim {
			invalidPayload(w, p.key+" must be an integer between 1 and "+strconv.Itoa(MaxCanvasDim))
			return false
		}
		*p.dst = n
	}

	resized := false
	if ow, oh := s.window.Size(); ow != cw || oh != ch {
		s.window.Resize(cw, ch)
		resized = true
	}
	if !s.renderer.Running() {
		if err := s.Start(); err != nil {
			internalError(w, err.Error())
			return false
		}
	}
	if resized || !s.raster.Presented() {
		s.renderer.Frame()
	}
	return true
}

func (s *Server) handleCanvasPNG(w http.ResponseWriter, r *http.Request) {
	if !s.canvasSize(w, r) {
		return
	}
	var buf bytes.Buffer
	if err := s.raster.EncodePNG(&buf); err != nil {
		internalError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCanvasSVG(w http.ResponseWriter, r *http.Request) {
	if !s.canvasSize(w, r) {
		return
	}
	var buf bytes.Buffer
	if err := s.vector.WriteSVG(&buf); err != nil {
		internalError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// CanvasMetrics is the body of GET /api/frame-metrics.
type CanvasMetrics struct {
	Enabled     bool                  `json:"enabled"`
	Timings     []metrics.TimingStats `json:"timings"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Frames      uint64                `json:"frames"`
	Particles   int                   `json:"particles"`
	Edges       int                   `json:"edges"`
	MaxDistance float64               `json:"max_distance"`
	Theme       string                `json:"theme"`
	Running     bool                  `json:"running"`
	Runs        int                   `json:"analysis_runs"`
	LastRun     string                `json:"last_run_id,omitempty"`
}

func (s *Server) handleFrameMetrics(w http.ResponseWriter, r *http.Request) {
	st := s.renderer.Snapshot()
	runs, last := s.state.Runs()
	writeJSON(w, http.StatusOK, CanvasMetrics{
		Enabled:     metrics.Enabled(),
		Timings:     metrics.AllTimingStats(),
		Width:       st.Width,
		Height:      st.Height,
		Frames:      st.Frames,
		Particles:   len(st.Particles),
		Edges:       len(st.Edges),
		MaxDistance: st.MaxDistance,
		Theme:       st.ThemeID,
		Running:     st.Running,
		Runs:        runs,
		LastRun:     last,
	})
}
