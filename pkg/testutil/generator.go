// Package testutil provides deterministic node fixtures, a recording
// surface and assertions shared by the renderer, source and server tests.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spectra/pkg/model"
)

// NodeFixture is a named node list with a description for test output.
type NodeFixture struct {
	Description string       `json:"description"`
	Nodes       []model.Node `json:"nodes"`
}

// GeneratorConfig controls node generation.
type GeneratorConfig struct {
	Seed           int64   // Random seed for determinism (0 = use current time)
	IDPrefix       string  // Prefix for node IDs (default: "N")
	ImportantRatio float64 // Fraction of nodes flagged important
	Kinds          []string
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:           42,
		IDPrefix:       "N",
		ImportantRatio: 0.1,
		Kinds:          []string{"gene"},
	}
}

// Generator creates node fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "N"
	}
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = []string{"gene"}
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Nodes returns n nodes with random values and the configured share of
// important nodes.
func (g *Generator) Nodes(n int) NodeFixture {
	nodes := make([]model.Node, n)
	for i := range nodes {
		nodes[i] = model.Node{
			ID:        fmt.Sprintf("%s%d", g.cfg.IDPrefix, i),
			Label:     fmt.Sprintf("%s-%d", strings.ToUpper(g.pickKind()), i),
			Important: g.rng.Float64() < g.cfg.ImportantRatio,
			Value:     g.rng.Float64(),
			Kind:      g.pickKind(),
		}
	}
	return NodeFixture{
		Description: fmt.Sprintf("%d random nodes, ~%.0f%% important", n, g.cfg.ImportantRatio*100),
		Nodes:       nodes,
	}
}

// Hubs returns n nodes where exactly the first hubs are important.
func (g *Generator) Hubs(n, hubs int) NodeFixture {
	f := g.Nodes(n)
	for i := range f.Nodes {
		f.Nodes[i].Important = i < hubs
	}
	f.Description = fmt.Sprintf("%d nodes, %d hubs", n, min(hubs, n))
	return f
}

// Uniform returns n ordinary nodes that all carry value v.
func (g *Generator) Uniform(n int, v float64) NodeFixture {
	f := g.Nodes(n)
	for i := range f.Nodes {
		f.Nodes[i].Important = false
		f.Nodes[i].Value = v
	}
	f.Description = fmt.Sprintf("%d ordinary nodes with value %.2f", n, v)
	return f
}

// Broken returns nodes with the defects Normalize repairs: blank IDs and
// labels, out-of-range and non-finite values.
func (g *Generator) Broken() NodeFixture {
	return NodeFixture{
		Description: "nodes needing normalization",
		Nodes: []model.Node{
			{ID: "", Label: "", Value: 0.5},
			{ID: "  padded  ", Value: -3},
			{ID: "big", Label: "Big", Value: 7},
			{ID: "nan", Value: math.NaN()},
		},
	}
}

func (g *Generator) pickKind() string {
	return g.cfg.Kinds[g.rng.Intn(len(g.cfg.Kinds))]
}

// ToJSONL converts nodes to JSONL, one node per line.
func ToJSONL(nodes []model.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		data, _ := json.Marshal(n)
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ToJSON converts nodes to a JSON array.
func ToJSON(nodes []model.Node) string {
	data, _ := json.Marshal(nodes)
	return string(data)
}

// QuickNodes returns n default-generated nodes.
func QuickNodes(n int) []model.Node {
	return NewDefault().Nodes(n).Nodes
}

// QuickHubs returns n default-generated nodes with hubs important ones.
func QuickHubs(n, hubs int) []model.Node {
	return NewDefault().Hubs(n, hubs).Nodes
}

// Empty returns an empty node list.
func Empty() []model.Node {
	return []model.Node{}
}
