// Package model defines the node record fed into the network canvas.
//
// Node data arrives from loosely typed sources (mock generators, JSON files,
// the mock backend). Normalize is the single place where missing or broken
// attributes get their defaults, so renderers never have to guess.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Node is one visualized entity of the biological network.
type Node struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Important bool    `json:"important"` // hub / oncogene / driver
	Value     float64 `json:"value"`     // normalized weight in [0,1]
	Kind      string  `json:"kind,omitempty"`
}

// Normalize returns a copy of n with defaults applied. index is the node's
// position in its list and seeds the generated ID when ID is empty.
func (n Node) Normalize(index int) Node {
	n.ID = strings.TrimSpace(n.ID)
	if n.ID == "" {
		n.ID = fmt.Sprintf("node-%d", index)
	}
	if strings.TrimSpace(n.Label) == "" {
		n.Label = n.ID
	}
	n.Value = ClampUnit(n.Value)
	return n
}

// Validate reports whether n can be used without normalization.
func (n Node) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return fmt.Errorf("node ID cannot be empty")
	}
	if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return fmt.Errorf("node %s: value is not finite", n.ID)
	}
	if n.Value < 0 || n.Value > 1 {
		return fmt.Errorf("node %s: value %v outside [0,1]", n.ID, n.Value)
	}
	return nil
}

// NormalizeAll returns a fresh, normalized copy of nodes.
func NormalizeAll(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Normalize(i)
	}
	return out
}

// CountImportant returns how many nodes carry the importance flag.
func CountImportant(nodes []Node) int {
	count := 0
	for _, n := range nodes {
		if n.Important {
			count++
		}
	}
	return count
}

// ClampUnit maps v into [0,1]; NaN and infinities become 0.
func ClampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), math.IsInf(v, 0):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
