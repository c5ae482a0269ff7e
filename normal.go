package mdenoise

import "gonum.org/v1/gonum/spatial/r3"

// ComputeNormals recomputes the face and vertex normals of m from its current
// vertex positions, replacing any previously stored normals.
//
// The face normal is the unit cross product of the first two edges. The
// vertex normal is the normalized area-weighted sum of incident face
// normals, not a simple mean, so large faces dominate the shading direction
// at their corners. Degenerate faces contribute nothing and get the zero
// vector as their normal.
func ComputeNormals(m *Mesh) {
	m.FaceNormals = make([]r3.Vec, len(m.Faces))
	m.VertexNormals = make([]r3.Vec, len(m.Vertices))
	for i, f := range m.Faces {
		v0 := m.Vertices[f[0]]
		e1 := r3.Sub(m.Vertices[f[1]], v0)
		e2 := r3.Sub(m.Vertices[f[2]], v0)
		cross := r3.Cross(e1, e2)
		area := r3.Norm(cross) / 2
		n := unit(cross)
		m.FaceNormals[i] = n
		weighted := r3.Scale(area, n)
		for _, vi := range f {
			m.VertexNormals[vi] = r3.Add(m.VertexNormals[vi], weighted)
		}
	}
	for i := range m.VertexNormals {
		m.VertexNormals[i] = unit(m.VertexNormals[i])
	}
}
