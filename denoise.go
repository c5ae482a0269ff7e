package mdenoise

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Neighborhood selects which faces count as adjacent during normal
// filtering.
type Neighborhood int

const (
	// CommonVertex treats every face sharing at least one vertex as a
	// neighbor. Broader support, stronger smoothing per iteration.
	CommonVertex Neighborhood = iota
	// CommonEdge treats only faces sharing a full edge as neighbors:
	// at most 3 on a manifold mesh.
	CommonEdge
)

func (n Neighborhood) String() string {
	switch n {
	case CommonVertex:
		return "common vertex"
	case CommonEdge:
		return "common edge"
	}
	return fmt.Sprintf("Neighborhood(%d)", int(n))
}

// Options configure a denoising run. The zero value is not usable, start
// from DefaultOptions.
type Options struct {
	Neighborhood Neighborhood
	// Threshold is the normal similarity threshold sigma, within (0,1).
	// Neighbors whose normals differ more than this do not contribute to
	// the filtered normal. Lower values smooth more, higher values
	// preserve more.
	Threshold float64
	// NormalIterations is the number of bilateral filtering passes over
	// the face normals. Must be at least 1.
	NormalIterations int
	// VertexIterations is the number of vertex relaxation passes. Must be
	// at least 1.
	VertexIterations int
	// ZOnly restricts vertex displacement to the z axis.
	ZOnly bool
}

// DefaultOptions returns the parameter set recommended by Sun et al.:
// common-vertex neighborhood, sigma 0.4, 20 normal iterations and 50 vertex
// iterations.
func DefaultOptions() Options {
	return Options{
		Neighborhood:     CommonVertex,
		Threshold:        0.4,
		NormalIterations: 20,
		VertexIterations: 50,
	}
}

func (o Options) validate() error {
	if o.Neighborhood != CommonVertex && o.Neighborhood != CommonEdge {
		return fmt.Errorf("unknown neighborhood %d", int(o.Neighborhood))
	}
	if o.Threshold <= 0 || o.Threshold >= 1 {
		return fmt.Errorf("threshold must be within (0,1), got %g", o.Threshold)
	}
	if o.NormalIterations < 1 {
		return fmt.Errorf("normal iterations must be at least 1, got %d", o.NormalIterations)
	}
	if o.VertexIterations < 1 {
		return fmt.Errorf("vertex iterations must be at least 1, got %d", o.VertexIterations)
	}
	return nil
}

// Denoise runs the full feature-preserving pipeline on src and returns the
// produced mesh: identical vertex and face counts, displaced vertex
// positions and refreshed normals, in the source's coordinates. src is never
// modified.
//
// A mesh with no faces is returned unchanged. Degenerate geometry (zero-area
// faces, coincident points) is tolerated through explicit zero guards; it is
// never an error. Non-manifold connectivity is not detected and yields
// unspecified, though deterministic, results.
func Denoise(src Mesh, opts Options) (Mesh, error) {
	if err := opts.validate(); err != nil {
		return Mesh{}, err
	}
	work := src.Copy()
	if len(work.Faces) == 0 {
		return work, nil
	}

	fr := boundingFrame(work.Vertices)
	fr.normalize(work.Vertices)
	ComputeNormals(&work)

	topo := newTopology(work.Faces, len(work.Vertices))
	var rings [][]int
	if opts.Neighborhood == CommonEdge {
		rings = topo.faceRingsCommonEdge()
	} else {
		rings = topo.faceRingsCommonVertex()
	}

	work.FaceNormals = filterNormals(work.FaceNormals, rings, opts.Threshold, opts.NormalIterations)
	updateVertices(&work, topo.vertexFaces, opts.VertexIterations, opts.ZOnly)

	fr.restore(work.Vertices)
	return work, nil
}

// MeanSquaredError measures how well the vertex positions of m fit its face
// planes: the mean, over all vertex/incident-face pairs, of the squared
// distance between the vertex and the plane through the face centroid with
// the face's normal. This is the quantity the vertex update drives down, so
// it is a useful convergence indicator when tuning iteration counts.
// Normals are recomputed if missing or stale in count.
func MeanSquaredError(m *Mesh) float64 {
	if len(m.FaceNormals) != len(m.Faces) {
		ComputeNormals(m)
	}
	topo := newTopology(m.Faces, len(m.Vertices))
	var sum float64
	var n int
	for i, p := range m.Vertices {
		for _, j := range topo.vertexFaces[i] {
			d := dotPlane(m, j, p)
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func dotPlane(m *Mesh, face int, p r3.Vec) float64 {
	return r3.Dot(m.FaceNormals[face], r3.Sub(m.faceCentroid(m.Faces[face]), p))
}
