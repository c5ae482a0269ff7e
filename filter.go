package mdenoise

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

// filterNormals runs the thresholded bilateral filter over the face normal
// field and returns the filtered normals. rings is a self-inclusive face
// ring per face (common-vertex or common-edge).
//
// Each iteration rebuilds every normal from the previous iteration's
// snapshot:
//
//	n_k = unit( Σ_{r∈ring(k)} max(0, dot(T_r, T_k) - sigma)² · T_r )
//
// A ring member only contributes when its similarity to the face's own
// previous normal exceeds sigma, so normals across a sharp feature never mix.
// Because the ring contains k itself with dot(T_k,T_k) = 1, a face always
// keeps a (1-sigma)² self weight and the update cannot collapse to zero on a
// smooth region with no passing neighbors. If every weight is zero (only
// possible for a degenerate zero normal) the result stays the zero vector.
func filterNormals(normals []r3.Vec, rings [][]int, sigma float64, iterations int) []r3.Vec {
	filtered := slices.Clone(normals)
	snapshot := make([]r3.Vec, len(normals))
	for it := 0; it < iterations; it++ {
		copy(snapshot, filtered)
		for k := range filtered {
			var sum r3.Vec
			for _, r := range rings[k] {
				w := r3.Dot(snapshot[r], snapshot[k]) - sigma
				if w > 0 {
					sum = r3.Add(sum, r3.Scale(w*w, snapshot[r]))
				}
			}
			filtered[k] = unit(sum)
		}
	}
	return filtered
}
