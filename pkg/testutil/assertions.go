package testutil

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/netcanvas"
)

// AssertNodeCount verifies the expected number of nodes.
func AssertNodeCount(t *testing.T, nodes []model.Node, expected int) {
	t.Helper()
	if len(nodes) != expected {
		t.Errorf("expected %d nodes, got %d", expected, len(nodes))
	}
}

// AssertNoDuplicateIDs verifies all node IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, nodes []model.Node) {
	t.Helper()
	seen := make(map[string]bool)
	for _, n := range nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node ID: %s", n.ID)
		}
		seen[n.ID] = true
	}
}

// AssertAllValid verifies all nodes pass validation.
func AssertAllValid(t *testing.T, nodes []model.Node) {
	t.Helper()
	for i, n := range nodes {
		if err := n.Validate(); err != nil {
			t.Errorf("node %d (%s) invalid: %v", i, n.ID, err)
		}
	}
}

// AssertInBounds verifies every particle lies inside [0,w)×[0,h).
func AssertInBounds(t *testing.T, ps []netcanvas.Particle, w, h int) {
	t.Helper()
	for i, p := range ps {
		if p.Pos.X < 0 || p.Pos.X >= float64(w) || p.Pos.Y < 0 || p.Pos.Y >= float64(h) {
			t.Errorf("particle %d (%s) at (%v,%v) outside %dx%d", i, p.ID, p.Pos.X, p.Pos.Y, w, h)
		}
	}
}

// AssertEdgesValid verifies edges are ordered pairs below maxDist with
// strength 1 - d/maxDist, and that no pair appears twice.
func AssertEdgesValid(t *testing.T, ps []netcanvas.Particle, edges []netcanvas.Edge, maxDist float64) {
	t.Helper()
	seen := make(map[[2]int]bool)
	for _, e := range edges {
		if e.I >= e.J {
			t.Errorf("edge (%d,%d) is not ordered", e.I, e.J)
		}
		if e.J >= len(ps) {
			t.Errorf("edge (%d,%d) references missing particle", e.I, e.J)
			continue
		}
		key := [2]int{e.I, e.J}
		if seen[key] {
			t.Errorf("edge (%d,%d) drawn twice", e.I, e.J)
		}
		seen[key] = true
		if e.Distance >= maxDist {
			t.Errorf("edge (%d,%d) distance %v >= %v", e.I, e.J, e.Distance, maxDist)
		}
		if want := 1 - e.Distance/maxDist; math.Abs(e.Strength-want) > 1e-9 {
			t.Errorf("edge (%d,%d) strength %v, want %v", e.I, e.J, e.Strength, want)
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()
	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper. Setting GENERATE_GOLDEN
// rewrites the file instead of comparing.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{t: t, dir: dir, name: name, update: os.Getenv("GENERATE_GOLDEN") != ""}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual against the golden file.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()
	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}
	if string(expected) == actual {
		return
	}
	expLines := strings.Split(string(expected), "\n")
	actLines := strings.Split(actual, "\n")
	for i := 0; i < len(expLines) || i < len(actLines); i++ {
		var exp, act string
		if i < len(expLines) {
			exp = expLines[i]
		}
		if i < len(actLines) {
			act = actLines[i]
		}
		if exp != act {
			g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, exp, act)
			return
		}
	}
}

// WriteNodesFile writes nodes to path as a JSON array, or as JSONL when the
// path ends in .jsonl.
func WriteNodesFile(t *testing.T, path string, nodes []model.Node) {
	t.Helper()
	data := ToJSON(nodes)
	if strings.HasSuffix(path, ".jsonl") {
		data = ToJSONL(nodes)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// FindNode returns the node with id, or nil.
func FindNode(nodes []model.Node, id string) *model.Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

// GetIDs returns node IDs in order.
func GetIDs(nodes []model.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
