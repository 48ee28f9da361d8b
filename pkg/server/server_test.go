package server

import (
	"bytes"
	"context"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vanderheijden86/spectra/pkg/mock"
	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/testutil"
)

func newTestServer(t *testing.T) (*Server, *netcanvas.ManualScheduler) {
	t.Helper()
	sched := netcanvas.NewManualScheduler()
	s := New(Config{
		Seed:         1,
		Scheduler:    sched,
		CanvasWidth:  400,
		CanvasHeight: 300,
		Version:      "v-test",
	})
	t.Cleanup(s.Stop)
	return s, sched
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[StatusResponse](t, rec)
	if got.System != SystemName || got.Status != "ONLINE" || got.Version != "v-test" {
		t.Errorf("status body = %+v", got)
	}
	if !strings.HasSuffix(got.Load, "%") {
		t.Errorf("load = %q", got.Load)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/api/data", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != CodeNotFound {
		t.Errorf("code = %s", got.Code)
	}
}

func TestAnalyze(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/analyze", "{}")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[AnalyzeResponse](t, rec)
	if _, err := uuid.Parse(got.RunID); err != nil {
		t.Errorf("run_id %q: %v", got.RunID, err)
	}
	if len(got.NetworkData.Nodes) != 45 {
		t.Errorf("nodes = %d, want 45", len(got.NetworkData.Nodes))
	}
	want := Pathway{Source: got.NetworkData.Nodes[0].ID, Target: got.NetworkData.Nodes[1].ID, Risk: "HIGH"}
	if len(got.CriticalPathways) != 1 || got.CriticalPathways[0] != want {
		t.Errorf("pathways = %+v", got.CriticalPathways)
	}
	if got.SpectralMetrics.ModularityIndex != 0.67 {
		t.Errorf("spectral metrics = %+v", got.SpectralMetrics)
	}
	if runs, last := s.State().Runs(); runs != 1 || last != got.RunID {
		t.Errorf("runs = %d, last = %s", runs, last)
	}
}

func TestAnalyzeAbandoned(t *testing.T) {
	s := New(Config{Seed: 1, Scheduler: netcanvas.NewManualScheduler(), AnalyzeDelay: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		s.Handler().ServeHTTP(rec, req)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("analyze did not observe the cancelled request")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("abandoned analysis wrote %q", rec.Body)
	}
	if runs, _ := s.State().Runs(); runs != 0 {
		t.Errorf("runs = %d", runs)
	}
}

func TestIngest(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	rec := do(t, s, http.MethodPost, "/api/data", `{"id":"PRT-NEW","type":"Kinase","expression":"42"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[IngestResponse](t, rec)
	if !got.Success || got.NodeID != "PRT-NEW" || got.Message != "Data Ingested Successfully" {
		t.Errorf("ingest body = %+v", got)
	}
	if got.ClassificationResult != "ONCOGENE" && got.ClassificationResult != "NEUTRAL" {
		t.Errorf("classification = %s", got.ClassificationResult)
	}
	if _, err := time.Parse(time.RFC3339Nano, got.Timestamp); err != nil {
		t.Errorf("timestamp: %v", err)
	}

	proteins := s.State().Proteins()
	if len(proteins) != 46 || proteins[0].ID != "PRT-NEW" || proteins[0].Expression != 42 || proteins[0].HalfLife != 5 {
		t.Errorf("database head = %+v (len %d)", proteins[0], len(proteins))
	}
	if n := len(s.Renderer().Snapshot().Particles); n != 46 {
		t.Errorf("canvas particles = %d, want 46", n)
	}
}

func TestSetNodesReplacesCanvas(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	nodes := testutil.QuickHubs(12, 3)
	s.SetNodes(nodes)
	if n := len(s.Renderer().Snapshot().Particles); n != 12 {
		t.Errorf("canvas particles = %d, want 12", n)
	}
	if n := len(s.State().CanvasNodes()); n != 12 {
		t.Errorf("state canvas = %d nodes, want 12", n)
	}
	if n := len(s.State().Proteins()); n != 45 {
		t.Errorf("protein database changed to %d entries", n)
	}
}

func TestIngestRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing id", `{"type":"Kinase","expression":5}`},
		{"blank id", `{"id":"  ","type":"Kinase","expression":5}`},
		{"missing type", `{"id":"X","expression":5}`},
		{"missing expression", `{"id":"X","type":"Kinase"}`},
		{"non-numeric expression", `{"id":"X","type":"Kinase","expression":"high"}`},
		{"array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/api/data", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			got := decode[ErrorResponse](t, rec)
			if got.Code != CodeInvalidPayload || got.Error != "Invalid Payload" || got.Message != ingestFieldsMsg {
				t.Errorf("error body = %+v", got)
			}
			if len(s.State().Proteins()) != 45 {
				t.Error("rejected payload changed the database")
			}
		})
	}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(12.9), 12, true},
		{"42", 42, true},
		{" 7abc", 7, true},
		{"-3", -3, true},
		{"+", 0, false},
		{"", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseExpression(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseExpression(%#v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDatasetEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	if got := decode[[]mock.ProductionMetric](t, do(t, s, http.MethodGet, "/api/production-metrics", "")); len(got) != 7 {
		t.Errorf("production metrics = %d rows", len(got))
	}
	if got := decode[[]mock.AnalyticsPoint](t, do(t, s, http.MethodGet, "/api/analytics", "")); len(got) != 12 {
		t.Errorf("analytics = %d rows", len(got))
	}
	if got := decode[[]mock.TrainingMetric](t, do(t, s, http.MethodGet, "/api/training-metrics?epochs=5", "")); len(got) != 5 {
		t.Errorf("training metrics = %d rows", len(got))
	}
	if rec := do(t, s, http.MethodGet, "/api/training-metrics?epochs=zero", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad epochs status = %d", rec.Code)
	}
	if got := decode[[]mock.Gene](t, do(t, s, http.MethodGet, "/api/top-genes", "")); len(got) != 50 {
		t.Errorf("top genes = %d", len(got))
	}
	if got := decode[[]mock.GeneNode](t, do(t, s, http.MethodGet, "/api/topology?n=10", "")); len(got) != 10 {
		t.Errorf("topology = %d", len(got))
	}
	if got := decode[[]mock.Protein](t, do(t, s, http.MethodGet, "/api/proteins", "")); len(got) != 45 {
		t.Errorf("proteins = %d", len(got))
	}

	patients := decode[[]mock.Patient](t, do(t, s, http.MethodGet, "/api/patients?q=tcga-br-105", ""))
	if len(patients) != 10 {
		t.Errorf("filtered patients = %d, want 10", len(patients))
	}
}

func TestCanvasPNG(t *testing.T) {
	s, sched := newTestServer(t)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	sched.StepN(3)

	rec := do(t, s, http.MethodGet, "/api/canvas.png?w=320&h=200", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %s", ct)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("image = %dx%d, want 320x200", b.Dx(), b.Dy())
	}
	st := s.Renderer().Snapshot()
	if st.Width != 320 || st.Height != 200 {
		t.Errorf("renderer = %dx%d", st.Width, st.Height)
	}
	testutil.AssertInBounds(t, st.Particles, 320, 200)

	for _, bad := range []string{"w=0", "h=abc", "w=99999"} {
		if rec := do(t, s, http.MethodGet, "/api/canvas.png?"+bad, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", bad, rec.Code)
		}
	}
}

func TestCanvasStartsOnDemand(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/canvas.svg", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `width="400"`) || !strings.Contains(body, "<circle") {
		t.Errorf("svg = %.200s", body)
	}
	if !s.Renderer().Running() {
		t.Error("canvas request should start the renderer")
	}
}

func TestSetTheme(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/theme", `{"id":"dark"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if s.Renderer().Theme().ID != "dark" {
		t.Errorf("theme = %s", s.Renderer().Theme().ID)
	}

	rec = do(t, s, http.MethodPost, "/api/theme", `{"id":"sepia"}`)
	if rec.Code != http.StatusNotFound || decode[ErrorResponse](t, rec).Code != CodeNotFound {
		t.Errorf("unknown theme: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/theme", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty id: status %d", rec.Code)
	}

	themes := decode[map[string]any](t, do(t, s, http.MethodGet, "/api/themes", ""))
	if themes["current"] != "dark" {
		t.Errorf("current = %v", themes["current"])
	}
}

func TestFrameMetrics(t *testing.T) {
	s, sched := newTestServer(t)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	sched.StepN(2)
	got := decode[CanvasMetrics](t, do(t, s, http.MethodGet, "/api/frame-metrics", ""))
	if !got.Running || got.Frames != 2 || got.Particles != 45 || got.Width != 400 {
		t.Errorf("metrics = %+v", got)
	}
	if got.MaxDistance != netcanvas.AdaptiveDistance(400) {
		t.Errorf("max distance = %v", got.MaxDistance)
	}
	if len(got.Timings) == 0 {
		t.Error("no timing metrics listed")
	}
}

func TestServeShutsDown(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/status"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !s.Renderer().Running() {
		t.Error("renderer should run while serving")
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if s.Renderer().Running() {
		t.Error("renderer should stop after shutdown")
	}
}
