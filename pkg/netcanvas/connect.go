package netcanvas

import "gonum.org/v1/gonum/spatial/r2"

// Edge joins particles I < J that are closer than the proximity threshold.
// Strength is 1 - Distance/threshold: closer pairs are stronger.
type Edge struct {
	I, J     int
	Distance float64
	Strength float64
}

// Compact viewports get a shorter threshold so small canvases don't turn
// into a solid mesh.
const (
	compactWidth       = 768
	compactMaxDistance = 100.0
	wideMaxDistance    = 200.0
)

// AdaptiveDistance returns the proximity threshold for a canvas of width w.
func AdaptiveDistance(w int) float64 {
	if w < compactWidth {
		return compactMaxDistance
	}
	return wideMaxDistance
}

// Connect appends to dst[:0] one edge per unordered pair of particles whose
// distance is below maxDist. Every pair is visited once, so the result never
// holds both (i,j) and (j,i).
func Connect(ps []Particle, maxDist float64, dst []Edge) []Edge {
	dst = dst[:0]
	if maxDist <= 0 {
		return dst
	}
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			d := r2.Norm(r2.Sub(ps[i].Pos, ps[j].Pos))
			if d < maxDist {
				dst = append(dst, Edge{I: i, J: j, Distance: d, Strength: 1 - d/maxDist})
			}
		}
	}
	return dst
}
