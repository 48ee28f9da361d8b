package server

import (
	"sync"

	"github.com/vanderheijden86/spectra/pkg/mock"
	"github.com/vanderheijden86/spectra/pkg/model"
)

// State is the backend's mutable data: the protein database, the patient
// cohort, the gene ranking and the nodes shown on the live canvas.
type State struct {
	mu       sync.RWMutex
	proteins []mock.Protein
	patients []mock.Patient
	genes    []mock.Gene
	canvas   []model.Node
	runs     int
	lastRun  string
}

// NewState seeds a State from the engine. When nodes is empty the canvas
// shows the protein database.
func NewState(e *mock.Engine, proteins int, nodes []model.Node) *State {
	s := &State{
		proteins: e.Proteins(proteins),
		patients: e.Patients(100),
		genes:    e.TopGenes(50),
	}
	if len(nodes) > 0 {
		s.canvas = append([]model.Node(nil), nodes...)
	} else {
		s.canvas = mock.ProteinNodes(s.proteins)
	}
	return s
}

// Proteins returns a copy of the protein database, newest first.
func (s *State) Proteins() []mock.Protein {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]mock.Protein(nil), s.proteins...)
}

// Patients returns the cohort filtered by ID substring.
func (s *State) Patients(q string) []mock.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]mock.Patient(nil), mock.FilterPatients(s.patients, q)...)
}

// TopGenes returns the gene ranking.
func (s *State) TopGenes() []mock.Gene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]mock.Gene(nil), s.genes...)
}

// CanvasNodes returns the nodes the live canvas draws. The slice is shared;
// callers must not modify it.
func (s *State) CanvasNodes() []model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvas
}

// Ingest prepends p to the database and the canvas and returns the new
// canvas node list.
func (s *State) Ingest(p mock.Protein) []model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proteins = append([]mock.Protein{p}, s.proteins...)
	s.canvas = append([]model.Node{p.Node()}, s.canvas...)
	return s.canvas
}

// RecordRun counts an analysis run.
func (s *State) RecordRun(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.lastRun = id
}

// Runs returns the number of analysis runs and the latest run ID.
func (s *State) Runs() (int, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs, s.lastRun
}

// SetCanvas replaces the canvas node list.
func (s *State) SetCanvas(nodes []model.Node) []model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas = append([]model.Node(nil), nodes...)
	return s.canvas
}
