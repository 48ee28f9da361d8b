package server

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vanderheijden86/spectra/pkg/metrics"
	"github.com/vanderheijden86/spectra/pkg/mock"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	System  string `json:"system"`
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  int64  `json:"uptime"`
	Load    string `json:"load"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		System:  SystemName,
		Status:  "ONLINE",
		Version: s.cfg.Version,
		Uptime:  int64(time.Since(s.started).Seconds()),
		Load:    fmt.Sprintf("%d%%", s.load()),
	})
}

// load is the share of the frame budget the canvas step uses.
func (s *Server) load() int {
	fps := s.cfg.FPS
	if fps < 1 {
		fps = 60
	}
	budget := 1000 / float64(fps)
	pct := metrics.FrameStep.Stats().AvgMs / budget * 100
	return int(math.Min(100, math.Round(pct)))
}

// Pathway is a flagged interaction between two nodes.
type Pathway struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Risk   string `json:"risk"`
}

// SpectralMetrics summarizes the network's spectrum.
type SpectralMetrics struct {
	AlgebraicConnectivity float64 `json:"algebraic_connectivity"`
	EigenGap              float64 `json:"eigen_gap"`
	ModularityIndex       float64 `json:"modularity_index"`
}

// AnalyzeResponse is the body of POST /api/analyze.
type AnalyzeResponse struct {
	RunID       string `json:"run_id"`
	NetworkData struct {
		Nodes []mock.Protein `json:"nodes"`
	} `json:"network_data"`
	CriticalPathways []Pathway       `json:"critical_pathways"`
	SpectralMetrics  SpectralMetrics `json:"spectral_metrics"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AnalyzeDelay > 0 {
		t := time.NewTimer(s.cfg.AnalyzeDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-r.Context().Done():
			s.logger.Debug("analysis abandoned", "err", r.Context().Err())
			return
		}
	}

	var resp AnalyzeResponse
	resp.RunID = uuid.NewString()
	resp.NetworkData.Nodes = s.state.Proteins()
	resp.CriticalPathways = []Pathway{}
	if nodes := resp.NetworkData.Nodes; len(nodes) >= 2 {
		resp.CriticalPathways = append(resp.CriticalPathways,
			Pathway{Source: nodes[0].ID, Target: nodes[1].ID, Risk: "HIGH"})
	}
	resp.SpectralMetrics = SpectralMetrics{
		AlgebraicConnectivity: 0.042,
		EigenGap:              0.15,
		ModularityIndex:       0.67,
	}
	s.state.RecordRun(resp.RunID)
	s.logger.Info("analysis complete", "run_id", resp.RunID, "nodes", len(resp.NetworkData.Nodes))
	writeJSON(w, http.StatusOK, resp)
}

// IngestResponse is the body of a successful POST /api/data.
type IngestResponse struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	NodeID               string `json:"node_id"`
	ClassificationResult string `json:"classification_result"`
	Timestamp            string `json:"timestamp"`
}

const ingestFieldsMsg = "Fields 'id', 'type', and 'expression' are required."

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		invalidPayload(w, err.Error())
		return
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		invalidPayload(w, ingestFieldsMsg)
		return
	}

	id, okID := nonEmpty(payload["id"])
	kind, okType := nonEmpty(payload["type"])
	expression, okExpr := parseExpression(payload["expression"])
	if !okID || !okType || !okExpr {
		invalidPayload(w, ingestFieldsMsg)
		return
	}

	p := s.engine.Ingest(id, kind, expression)
	nodes := s.state.Ingest(p)
	s.renderer.SetNodes(nodes)
	s.logger.Info("data ingested", "node_id", p.ID, "class", p.Classification())

	writeJSON(w, http.StatusOK, IngestResponse{
		Success:              true,
		Message:              "Data Ingested Successfully",
		NodeID:               p.ID,
		ClassificationResult: p.Classification(),
		Timestamp:            time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func nonEmpty(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		x = strings.TrimSpace(x)
		return x, x != ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}

// parseExpression accepts a number or a string with a leading integer,
// the way the dashboard form submits it.
func parseExpression(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int(x), true
	case string:
		x = strings.TrimSpace(x)
		end := 0
		for end < len(x) && (x[end] >= '0' && x[end] <= '9' || end == 0 && (x[0] == '-' || x[0] == '+')) {
			end++
		}
		n, err := strconv.Atoi(x[:end])
		return n, err == nil
	default:
		return 0, false
	}
}

func (s *Server) handleProteins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Proteins())
}

func (s *Server) handleProductionMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mock.ProductionMetrics())
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Analytics())
}

func (s *Server) handleTrainingMetrics(w http.ResponseWriter, r *http.Request) {
	epochs := 30
	if v := r.URL.Query().Get("epochs"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			invalidPayload(w, "epochs must be an integer between 1 and 1000")
			return
		}
		epochs = n
	}
	writeJSON(w, http.StatusOK, mock.TrainingMetrics(epochs))
}

func (s *Server) handlePatients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Patients(r.URL.Query().Get("q")))
}

func (s *Server) handleTopGenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.TopGenes())
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	n := 50
	if v := r.URL.Query().Get("n"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c < 0 || c > 5000 {
			invalidPayload(w, "n must be an integer between 0 and 5000")
			return
		}
		n = c
	}
	writeJSON(w, http.StatusOK, s.engine.Topology(n))
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"current": s.renderer.Theme().ID,
		"themes":  theme.All(),
	})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		invalidPayload(w, "Field 'id' is required.")
		return
	}
	t, ok := s.cfg.ResolveTheme(req.ID)
	if !ok {
		notFound(w, fmt.Sprintf("unknown theme %q", req.ID))
		return
	}
	s.renderer.SetTheme(t)
	writeJSON(w, http.StatusOK, t)
}
