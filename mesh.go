// Package mdenoise removes noise from triangulated surface meshes while
// preserving sharp features such as edges and corners. It implements the
// two-stage scheme of Sun, Rosin, Martin and Langbein ("Fast and effective
// feature-preserving mesh denoising", IEEE TVCG 2007): face normals are
// smoothed with an iterative thresholded bilateral filter over a one-ring
// face neighborhood, and vertex positions are then relaxed to match the
// filtered normal field. Topology is never altered.
package mdenoise

import (
	"fmt"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangle mesh held fully in memory. Vertices and Faces are the
// authoritative data; FaceNormals and VertexNormals are derived from them by
// ComputeNormals and become stale whenever positions change.
//
// Face indices must satisfy 0 <= index < len(Vertices). Readers are expected
// to call Validate before handing a mesh to the denoiser; the numerical core
// assumes index-consistent input.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int

	// FaceNormals holds one unit normal per face. A degenerate face
	// (zero area) has the zero vector as its normal.
	FaceNormals []r3.Vec
	// VertexNormals holds one unit normal per vertex, the area-weighted
	// average of incident face normals.
	VertexNormals []r3.Vec
}

// Copy returns a deep copy of the mesh. The denoiser works on copies so the
// loaded source mesh stays available, unmodified, for reference.
func (m *Mesh) Copy() Mesh {
	return Mesh{
		Vertices:      slices.Clone(m.Vertices),
		Faces:         slices.Clone(m.Faces),
		FaceNormals:   slices.Clone(m.FaceNormals),
		VertexNormals: slices.Clone(m.VertexNormals),
	}
}

// Validate checks that every face references existing vertices. It does not
// attempt manifold or self-intersection checks.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= n {
				return fmt.Errorf("face %d references vertex %d, mesh has %d vertices", i, v, n)
			}
		}
	}
	return nil
}

// unit returns the unit vector colinear to v, or the zero vector when v has
// zero length. The explicit guard keeps degenerate geometry from propagating
// NaNs through the pipeline.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// faceCentroid returns the centroid of face f at the current vertex positions.
func (m *Mesh) faceCentroid(f [3]int) r3.Vec {
	sum := r3.Add(m.Vertices[f[0]], r3.Add(m.Vertices[f[1]], m.Vertices[f[2]]))
	return r3.Scale(1.0/3.0, sum)
}
