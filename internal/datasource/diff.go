package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/spectra/pkg/model"
)

// NodeDiff describes what changed between two loads of a source.
type NodeDiff struct {
	Added   []string     `json:"added,omitempty"`
	Removed []string     `json:"removed,omitempty"`
	Changed []NodeChange `json:"changed,omitempty"`
	Before  int          `json:"before"`
	After   int          `json:"after"`
}

// NodeChange is an attribute difference for one node ID.
type NodeChange struct {
	ID     string `json:"id"`
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// HasChanges reports whether the two loads differ.
func (d NodeDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// Summary returns a one-line description, e.g. "+2 -1 ~3 (50 → 51 nodes)".
func (d NodeDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("unchanged (%d nodes)", d.After)
	}
	var parts []string
	if len(d.Added) > 0 {
		parts = append(parts, fmt.Sprintf("+%d", len(d.Added)))
	}
	if len(d.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("-%d", len(d.Removed)))
	}
	if len(d.Changed) > 0 {
		parts = append(parts, fmt.Sprintf("~%d", len(d.Changed)))
	}
	return fmt.Sprintf("%s (%d → %d nodes)", strings.Join(parts, " "), d.Before, d.After)
}

// Diff compares two node lists by normalized ID. Duplicate IDs keep their
// last occurrence. Results are sorted by ID.
func Diff(before, after []model.Node) NodeDiff {
	a := index(before)
	b := index(after)
	d := NodeDiff{Before: len(before), After: len(after)}

	for id := range a {
		if _, ok := b[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	for id, nb := range b {
		na, ok := a[id]
		if !ok {
			d.Added = append(d.Added, id)
			continue
		}
		if na.Label != nb.Label {
			d.Changed = append(d.Changed, NodeChange{id, "label", na.Label, nb.Label})
		}
		if na.Important != nb.Important {
			d.Changed = append(d.Changed, NodeChange{id, "important", fmt.Sprint(na.Important), fmt.Sprint(nb.Important)})
		}
		if na.Value != nb.Value {
			d.Changed = append(d.Changed, NodeChange{id, "value", fmt.Sprintf("%.3f", na.Value), fmt.Sprintf("%.3f", nb.Value)})
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Slice(d.Changed, func(i, j int) bool {
		if d.Changed[i].ID != d.Changed[j].ID {
			return d.Changed[i].ID < d.Changed[j].ID
		}
		return d.Changed[i].Field < d.Changed[j].Field
	})
	return d
}

func index(nodes []model.Node) map[string]model.Node {
	m := make(map[string]model.Node, len(nodes))
	for _, n := range model.NormalizeAll(nodes) {
		m[n.ID] = n
	}
	return m
}
