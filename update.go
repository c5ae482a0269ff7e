package mdenoise

import "gonum.org/v1/gonum/spatial/r3"

// updateVertices relaxes the vertex positions of m toward the plane field
// implied by its (already filtered) face normals, in place, and finally
// refreshes the mesh normals.
//
// Per iteration every vertex moves by the mean, over its incident faces, of
// the projection of the vertex-to-centroid vector onto the face normal:
//
//	p += (1/|ring|) Σ_j n_j · dot(n_j, centroid_j - p)
//
// Near an edge or corner the pulls of differently oriented faces partially
// cancel, which is what preserves the feature instead of rounding it off.
// Updates are applied in place within an iteration, so centroids of already
// visited neighbors use their new positions. Vertices with no incident faces
// never move.
//
// With zOnly set only the z coordinate is displaced; x and y are left
// untouched. This is meant for gridded elevation data where the planimetric
// coordinates are authoritative.
func updateVertices(m *Mesh, vertexFaces [][]int, iterations int, zOnly bool) {
	for it := 0; it < iterations; it++ {
		for i := range m.Vertices {
			ring := vertexFaces[i]
			if len(ring) == 0 {
				continue
			}
			p := m.Vertices[i]
			var accum r3.Vec
			for _, j := range ring {
				n := m.FaceNormals[j]
				d := r3.Dot(n, r3.Sub(m.faceCentroid(m.Faces[j]), p))
				if zOnly {
					accum.Z += n.Z * d
				} else {
					accum = r3.Add(accum, r3.Scale(d, n))
				}
			}
			inv := 1 / float64(len(ring))
			if zOnly {
				m.Vertices[i].Z += accum.Z * inv
			} else {
				m.Vertices[i] = r3.Add(p, r3.Scale(inv, accum))
			}
		}
	}
	ComputeNormals(m)
}
