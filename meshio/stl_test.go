package meshio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hschendel/stl"
)

func TestSTLRoundTripWeldsVertices(t *testing.T) {
	want := testMesh()
	var buf bytes.Buffer
	if err := WriteSTL(&buf, want); err != nil {
		t.Fatal(err)
	}
	if got := buf.Len(); got != 84+50*len(want.Faces) {
		t.Fatalf("binary STL size %d, want %d", got, 84+50*len(want.Faces))
	}
	got, err := ReadSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	// STL repeats every corner per triangle; welding must recover the
	// shared vertices.
	if len(got.Vertices) != len(want.Vertices) {
		t.Errorf("welded to %d vertices, want %d", len(got.Vertices), len(want.Vertices))
	}
	if len(got.Faces) != len(want.Faces) {
		t.Errorf("got %d faces, want %d", len(got.Faces), len(want.Faces))
	}
	for k, f := range got.Faces {
		a, b, c := got.Vertices[f[0]], got.Vertices[f[1]], got.Vertices[f[2]]
		w := want.Faces[k]
		wa, wb, wc := want.Vertices[w[0]], want.Vertices[w[1]], want.Vertices[w[2]]
		if a != wa || b != wb || c != wc {
			t.Errorf("face %d corners changed: %v %v %v, want %v %v %v", k, a, b, c, wa, wb, wc)
		}
	}
}

func TestReadSTLText(t *testing.T) {
	const src = `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`
	got, err := ReadSTL(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Vertices) != 4 || len(got.Faces) != 2 {
		t.Fatalf("got %d vertices, %d faces, want 4 and 2", len(got.Vertices), len(got.Faces))
	}
}

func TestReadSTLTextIncomplete(t *testing.T) {
	const src = "solid broken\nvertex 0 0 0\nvertex 1 0 0\nendsolid broken\n"
	if _, err := ReadSTL(strings.NewReader(src)); err == nil {
		t.Fatal("dangling vertex records accepted")
	}
}

func TestReadSTLTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, testMesh()); err != nil {
		t.Fatal(err)
	}
	// Truncate after the header: the count promises triangles that are
	// not there.
	if _, err := ReadSTL(bytes.NewReader(buf.Bytes()[:84])); err == nil {
		t.Fatal("truncated binary STL accepted")
	}
}

// TestWriteSTLExternalReader checks the binary output against an independent
// STL implementation.
func TestWriteSTLExternalReader(t *testing.T) {
	want := testMesh()
	path := filepath.Join(t.TempDir(), "tetra.stl")
	fp, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteSTL(fp, want); err != nil {
		t.Fatal(err)
	}
	if err := fp.Close(); err != nil {
		t.Fatal(err)
	}
	solid, err := stl.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(solid.Triangles) != len(want.Faces) {
		t.Fatalf("external reader sees %d triangles, want %d", len(solid.Triangles), len(want.Faces))
	}
	for k, tri := range solid.Triangles {
		for c := 0; c < 3; c++ {
			v := want.Vertices[want.Faces[k][c]]
			got := tri.Vertices[c]
			if float64(got[0]) != v.X || float64(got[1]) != v.Y || float64(got[2]) != v.Z {
				t.Errorf("triangle %d corner %d: %v, want %v", k, c, got, v)
			}
		}
	}
}
