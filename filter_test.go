package mdenoise

import (
	"math"
	"testing"

	"github.com/exuberant/mdenoise/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFilterFlatRegionFixedPoint(t *testing.T) {
	m := flatGrid(6, 0)
	ComputeNormals(&m)
	topo := newTopology(m.Faces, len(m.Vertices))
	for _, rings := range [][][]int{topo.faceRingsCommonVertex(), topo.faceRingsCommonEdge()} {
		got := filterNormals(m.FaceNormals, rings, 0.4, 20)
		for k, n := range got {
			if !d3.EqualWithin(n, r3.Vec{Z: 1}, 1e-12) {
				t.Errorf("face %d: normal %v changed on a planar mesh", k, n)
			}
		}
	}
}

func TestFilterHighThresholdNearIdentity(t *testing.T) {
	// One face tilted 30 degrees away from its coplanar neighbors. With
	// sigma close to 1 no neighbor passes the threshold and every face is
	// left governed by its self term alone.
	m := flatGrid(4, 0)
	ComputeNormals(&m)
	topo := newTopology(m.Faces, len(m.Vertices))
	rings := topo.faceRingsCommonVertex()

	tilted := unit(r3.Vec{X: math.Sin(math.Pi / 6), Z: math.Cos(math.Pi / 6)})
	normals := append([]r3.Vec{}, m.FaceNormals...)
	normals[0] = tilted

	got := filterNormals(normals, rings, 0.999, 5)
	for k, n := range got {
		if !d3.EqualWithin(n, normals[k], 1e-9) {
			t.Errorf("face %d: normal %v drifted from %v at sigma close to 1", k, n, normals[k])
		}
	}

	// At the default threshold the same tilted face is pulled back toward
	// its neighbors.
	got = filterNormals(normals, rings, 0.4, 5)
	if before, after := r3.Dot(tilted, r3.Vec{Z: 1}), r3.Dot(got[0], r3.Vec{Z: 1}); after <= before {
		t.Errorf("tilted normal not smoothed at sigma 0.4: dot to +z %g -> %g", before, after)
	}
}

func TestFilterPreservesCrease(t *testing.T) {
	m := roof()
	ComputeNormals(&m)
	left := m.FaceNormals[0]
	right := m.FaceNormals[2]
	if dot := r3.Dot(left, right); math.Abs(dot) > 1e-12 {
		t.Fatalf("fixture slopes not perpendicular, dot %g", dot)
	}

	topo := newTopology(m.Faces, len(m.Vertices))
	got := filterNormals(m.FaceNormals, topo.faceRingsCommonVertex(), 0.4, 20)
	for _, k := range []int{0, 1} {
		if !d3.EqualWithin(got[k], left, 1e-9) {
			t.Errorf("left slope face %d: normal %v leaked across the crease, want %v", k, got[k], left)
		}
	}
	for _, k := range []int{2, 3} {
		if !d3.EqualWithin(got[k], right, 1e-9) {
			t.Errorf("right slope face %d: normal %v leaked across the crease, want %v", k, got[k], right)
		}
	}
}

func TestFilterZeroNormalStaysZero(t *testing.T) {
	normals := []r3.Vec{{}, {Z: 1}}
	rings := [][]int{{0, 1}, {1, 0}}
	got := filterNormals(normals, rings, 0.4, 3)
	if got[0] != (r3.Vec{}) {
		t.Errorf("zero normal became %v, want zero vector", got[0])
	}
	if !d3.EqualWithin(got[1], r3.Vec{Z: 1}, 1e-12) {
		t.Errorf("unit normal %v, want +z", got[1])
	}
}
