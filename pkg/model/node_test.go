package model

import (
	"math"
	"testing"
)

func TestNodeNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    Node
		index int
		want  Node
	}{
		{
			name:  "empty node gets generated id and label",
			in:    Node{},
			index: 3,
			want:  Node{ID: "node-3", Label: "node-3"},
		},
		{
			name: "label falls back to id",
			in:   Node{ID: " PRT-64 ", Value: 0.4},
			want: Node{ID: "PRT-64", Label: "PRT-64", Value: 0.4},
		},
		{
			name: "value above range is clamped",
			in:   Node{ID: "a", Label: "A", Value: 7},
			want: Node{ID: "a", Label: "A", Value: 1},
		},
		{
			name: "negative value is clamped",
			in:   Node{ID: "a", Label: "A", Value: -2, Important: true},
			want: Node{ID: "a", Label: "A", Value: 0, Important: true},
		},
		{
			name: "NaN value becomes zero",
			in:   Node{ID: "a", Label: "A", Value: math.NaN()},
			want: Node{ID: "a", Label: "A", Value: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize(tt.index)
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("normalized node should validate: %v", err)
			}
		})
	}
}

func TestNodeValidate(t *testing.T) {
	if err := (Node{}).Validate(); err == nil {
		t.Error("expected error for empty ID")
	}
	if err := (Node{ID: "x", Value: math.Inf(1)}).Validate(); err == nil {
		t.Error("expected error for infinite value")
	}
	if err := (Node{ID: "x", Value: 1.5}).Validate(); err == nil {
		t.Error("expected error for out-of-range value")
	}
	if err := (Node{ID: "x", Value: 0.5}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNormalizeAllCopies(t *testing.T) {
	in := []Node{{ID: "a"}, {}}
	out := NormalizeAll(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(out))
	}
	if in[1].ID != "" {
		t.Error("NormalizeAll must not mutate its input")
	}
	if out[1].ID != "node-1" {
		t.Errorf("expected node-1, got %q", out[1].ID)
	}
}

func TestCountImportant(t *testing.T) {
	nodes := []Node{{Important: true}, {}, {Important: true}}
	if got := CountImportant(nodes); got != 2 {
		t.Errorf("CountImportant() = %d, want 2", got)
	}
}
