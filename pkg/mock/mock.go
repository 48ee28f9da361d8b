// Package mock generates the synthetic datasets the dashboard backend
// serves: a gene topology, a protein database, production and training
// metrics, patient risk scores and top-weighted genes.
//
// An Engine is seeded, so the same seed always yields the same data.
package mock

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/vanderheijden86/spectra/pkg/model"
)

// Engine draws mock data from one seeded source. It is safe for
// concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an Engine. A zero seed seeds from the clock.
func New(seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

func (e *Engine) float() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

func (e *Engine) norm() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.NormFloat64()
}

// GeneNode is one entry of the gene topology. Every fifth gene is a hub
// driver.
type GeneNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Type   string  `json:"type"` // Driver or Passenger
	Val    float64 `json:"val"`
	Status string  `json:"status"` // Mutated or Stable
}

// Node converts g for the renderer.
func (g GeneNode) Node() model.Node {
	return model.Node{ID: g.ID, Label: g.Label, Important: g.Type == "Driver", Value: g.Val, Kind: strings.ToLower(g.Type)}
}

// Topology returns count genes with IDs P-100, P-101, ...
func (e *Engine) Topology(count int) []GeneNode {
	out := make([]GeneNode, max(count, 0))
	for i := range out {
		g := GeneNode{
			ID:     fmt.Sprintf("P-%d", 100+i),
			Label:  fmt.Sprintf("Gene-%d", i),
			Type:   "Passenger",
			Val:    e.float(),
			Status: "Stable",
		}
		if i%5 == 0 {
			g.Label = fmt.Sprintf("HUB-%d", i)
			g.Type = "Driver"
		}
		if e.float() > 0.9 {
			g.Status = "Mutated"
		}
		out[i] = g
	}
	return out
}

// TopologyNodes is Topology converted for the renderer.
func (e *Engine) TopologyNodes(count int) []model.Node {
	genes := e.Topology(count)
	nodes := make([]model.Node, len(genes))
	for i, g := range genes {
		nodes[i] = g.Node()
	}
	return nodes
}

// Protein is one entry of the protein database.
type Protein struct {
	ID         string `json:"id"`
	IsOncogene bool   `json:"isOncogene"`
	Type       string `json:"type"`
	Expression int    `json:"expression"` // 0..100
	HalfLife   int    `json:"halfLife"`
}

// Node converts p for the renderer; expression maps onto [0,1].
func (p Protein) Node() model.Node {
	return model.Node{
		ID:        p.ID,
		Label:     p.ID,
		Important: p.IsOncogene,
		Value:     model.ClampUnit(float64(p.Expression) / 100),
		Kind:      p.Type,
	}
}

// Classification is the label the ingestion endpoint reports.
func (p Protein) Classification() string {
	if p.IsOncogene {
		return "ONCOGENE"
	}
	return "NEUTRAL"
}

// Proteins returns count proteins with hex IDs PRT-64, PRT-65, ...;
// about 15% are oncogenes.
func (e *Engine) Proteins(count int) []Protein {
	out := make([]Protein, max(count, 0))
	for i := range out {
		kind := "Transcription Factor"
		if e.float() > 0.5 {
			kind = "Kinase"
		}
		out[i] = Protein{
			ID:         fmt.Sprintf("PRT-%X", 100+i),
			IsOncogene: e.float() > 0.85,
			Type:       kind,
			Expression: e.intn(100),
			HalfLife:   e.intn(10) + 2,
		}
	}
	return out
}

// ProteinNodes converts proteins for the renderer.
func ProteinNodes(ps []Protein) []model.Node {
	nodes := make([]model.Node, len(ps))
	for i, p := range ps {
		nodes[i] = p.Node()
	}
	return nodes
}

// Ingest builds the protein record for a manually submitted data point.
// Ingested proteins are oncogenes with 20% probability.
func (e *Engine) Ingest(id, kind string, expression int) Protein {
	return Protein{
		ID:         id,
		Type:       kind,
		Expression: expression,
		IsOncogene: e.float() > 0.8,
		HalfLife:   5,
	}
}

// ProductionMetric is one day of the weekly production chart.
type ProductionMetric struct {
	Day        string `json:"day"`
	Growth     int    `json:"growth"`
	Inhibition int    `json:"inhibition"`
	Efficacy   int    `json:"efficacy"`
}

// ProductionMetrics returns the fixed Monday to Sunday series.
func ProductionMetrics() []ProductionMetric {
	return []ProductionMetric{
		{"Mon", 45, 20, 82},
		{"Tue", 52, 25, 78},
		{"Wed", 48, 40, 85},
		{"Thu", 61, 35, 79},
		{"Fri", 55, 50, 88},
		{"Sat", 67, 60, 91},
		{"Sun", 72, 65, 94},
	}
}

// AnalyticsPoint is one two-hour throughput sample.
type AnalyticsPoint struct {
	Time string  `json:"time"`
	Val  float64 `json:"val"`
}

// Analytics returns 12 samples at 0h, 2h, ... 22h with values in
// [2000,5000).
func (e *Engine) Analytics() []AnalyticsPoint {
	out := make([]AnalyticsPoint, 12)
	for i := range out {
		out[i] = AnalyticsPoint{Time: fmt.Sprintf("%dh", i*2), Val: 2000 + e.float()*3000}
	}
	return out
}

// TrainingMetric is one epoch of the model's learning curve.
type TrainingMetric struct {
	Epoch    int     `json:"epoch"`
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

// TrainingMetrics returns epochs 1..epochs with loss 1/√e and accuracy
// rising from 0.5 towards 0.9.
func TrainingMetrics(epochs int) []TrainingMetric {
	out := make([]TrainingMetric, max(epochs, 0))
	for i := range out {
		ep := float64(i + 1)
		out[i] = TrainingMetric{
			Epoch:    i + 1,
			Loss:     round4(1 / math.Sqrt(ep)),
			Accuracy: round4(0.5 + 0.4*(1-math.Exp(-0.1*ep))),
		}
	}
	return out
}

// Patient is one scored member of the cohort.
type Patient struct {
	PatientID    string  `json:"patient_id"`
	RiskScore    float64 `json:"risk_score"`
	SurvivalDays int     `json:"survival_days"`
	RiskGroup    string  `json:"risk_group"`
	Status       string  `json:"status"`
}

// HighRiskThreshold splits the cohort into risk groups.
const HighRiskThreshold = 0.5

// Patients returns n patients TCGA-BR-1000, TCGA-BR-1001, ... with a risk
// probability in (0,1) and 100-3000 survival days.
func (e *Engine) Patients(n int) []Patient {
	out := make([]Patient, max(n, 0))
	for i := range out {
		risk := round4(1 / (1 + math.Exp(-e.norm())))
		p := Patient{
			PatientID:    fmt.Sprintf("TCGA-BR-%d", 1000+i),
			RiskScore:    risk,
			SurvivalDays: 100 + int(e.float()*2900),
			RiskGroup:    "STABLE PROGNOSIS",
			Status:       "Low Risk",
		}
		if risk > HighRiskThreshold {
			p.RiskGroup = "HIGH RISK DETECTED"
			p.Status = "High Risk"
		}
		out[i] = p
	}
	return out
}

// FilterPatients keeps patients whose ID contains q, ignoring case.
func FilterPatients(ps []Patient, q string) []Patient {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return ps
	}
	var out []Patient
	for _, p := range ps {
		if strings.Contains(strings.ToLower(p.PatientID), q) {
			out = append(out, p)
		}
	}
	return out
}

// Gene is one entry of the top-weighted gene list.
type Gene struct {
	Gene   string  `json:"gene"`
	Weight float64 `json:"weight"`
}

// TopGenes returns GENE_0..GENE_{n-1} with weights in [0,1).
func (e *Engine) TopGenes(n int) []Gene {
	out := make([]Gene, max(n, 0))
	for i := range out {
		out[i] = Gene{Gene: fmt.Sprintf("GENE_%d", i), Weight: e.float()}
	}
	return out
}

// GeneNodes converts genes for the renderer; the top decile by weight is
// marked important.
func GeneNodes(genes []Gene) []model.Node {
	nodes := make([]model.Node, len(genes))
	for i, g := range genes {
		nodes[i] = model.Node{ID: g.Gene, Label: g.Gene, Value: model.ClampUnit(g.Weight), Important: g.Weight >= 0.9, Kind: "gene"}
	}
	return nodes
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
