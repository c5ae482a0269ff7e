package mdenoise

import (
	"math"

	"github.com/exuberant/mdenoise/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// frame is the normalization frame of a mesh: the bounding box center and
// half the longest bounding box extent. Processing happens in normalized
// coordinates so iteration counts and the similarity threshold behave the
// same regardless of model units. The mapping satisfies
//
//	raw = center + normalized*scale
type frame struct {
	center r3.Vec
	scale  float64
}

// boundingFrame computes the normalization frame of a vertex set.
func boundingFrame(vertices []r3.Vec) frame {
	if len(vertices) == 0 {
		return frame{}
	}
	bb := d3.Box{Min: d3.Elem(math.MaxFloat64), Max: d3.Elem(-math.MaxFloat64)}
	for _, v := range vertices {
		bb = bb.Include(v)
	}
	return frame{
		center: bb.Center(),
		scale:  d3.Max(bb.Size()) / 2,
	}
}

// normalize maps vertices into the frame, in place. A zero scale means all
// points coincide; the transform is skipped rather than dividing by zero and
// restore is then a no-op too, so the round trip stays exact.
func (f frame) normalize(vertices []r3.Vec) {
	if f.scale == 0 {
		return
	}
	inv := 1 / f.scale
	for i := range vertices {
		vertices[i] = r3.Scale(inv, r3.Sub(vertices[i], f.center))
	}
}

// restore maps normalized vertices back to raw coordinates, in place.
func (f frame) restore(vertices []r3.Vec) {
	if f.scale == 0 {
		return
	}
	for i := range vertices {
		vertices[i] = r3.Add(f.center, r3.Scale(f.scale, vertices[i]))
	}
}
