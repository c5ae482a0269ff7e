package mdenoise

import "golang.org/x/exp/slices"

// topology holds the adjacency structures derived from a face list. All of
// them are pure functions of the faces: they are built once per denoising
// run and never rebuilt, since topology does not change during a run.
//
// Non-manifold input (an edge shared by more than two faces) is not detected;
// the rings are built from whatever faces are present and the result is
// unspecified, matching the documented behavior of the pipeline.
type topology struct {
	faces [][3]int
	// vertexRings[v] lists the vertices sharing a face with v, unique,
	// in first-seen order.
	vertexRings [][]int
	// vertexFaces[v] lists the faces incident to v in face index order.
	vertexFaces [][]int
}

func newTopology(faces [][3]int, numVertices int) *topology {
	t := &topology{
		faces:       faces,
		vertexRings: make([][]int, numVertices),
		vertexFaces: make([][]int, numVertices),
	}
	for k, f := range faces {
		for i := 0; i < 3; i++ {
			v := f[i]
			t.vertexFaces[v] = append(t.vertexFaces[v], k)
			for _, u := range [2]int{f[(i+1)%3], f[(i+2)%3]} {
				if !slices.Contains(t.vertexRings[v], u) {
					t.vertexRings[v] = append(t.vertexRings[v], u)
				}
			}
		}
	}
	return t
}

func faceHas(f [3]int, v int) bool {
	return f[0] == v || f[1] == v || f[2] == v
}

// faceRingsCommonVertex returns, for every face, the faces sharing at least
// one vertex with it. The ring always contains the face itself: the filter
// relies on the self term for its baseline weight.
//
// The ring is assembled per corner with an ordering tie-break so faces
// adjacent through two shared vertices are not counted twice: all faces of
// the first corner, then faces of the second corner not touching the first,
// then faces of the third corner touching neither.
func (t *topology) faceRingsCommonVertex() [][]int {
	rings := make([][]int, len(t.faces))
	for k, f := range t.faces {
		a, b, c := f[0], f[1], f[2]
		ring := slices.Clone(t.vertexFaces[a]) // includes k itself
		for _, j := range t.vertexFaces[b] {
			if !faceHas(t.faces[j], a) {
				ring = append(ring, j)
			}
		}
		for _, j := range t.vertexFaces[c] {
			if !faceHas(t.faces[j], a) && !faceHas(t.faces[j], b) {
				ring = append(ring, j)
			}
		}
		rings[k] = ring
	}
	return rings
}

// faceRingsCommonEdge returns, for every face, the face itself plus the
// faces sharing a full edge with it: at most 4 entries on a manifold mesh,
// fewer at boundaries. Missing neighbors are simply absent, rings are
// variable length with no padding.
func (t *topology) faceRingsCommonEdge() [][]int {
	rings := make([][]int, len(t.faces))
	for k, f := range t.faces {
		a, b, c := f[0], f[1], f[2]
		ring := make([]int, 0, 4)
		// Faces through corner a touching b or c: the face itself and the
		// neighbors across edges a-b and a-c.
		for _, j := range t.vertexFaces[a] {
			if faceHas(t.faces[j], b) || faceHas(t.faces[j], c) {
				ring = append(ring, j)
				if len(ring) == 4 {
					break
				}
			}
		}
		// The neighbor across edge b-c is the face containing b and c
		// but not a.
		if len(ring) < 4 {
			for _, j := range t.vertexFaces[b] {
				if faceHas(t.faces[j], c) && !faceHas(t.faces[j], a) {
					ring = append(ring, j)
					break
				}
			}
		}
		rings[k] = ring
	}
	return rings
}
