package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/exuberant/mdenoise"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOFF reads an OFF mesh: the "OFF" token, vertex/face/edge counts, the
// vertex coordinates, then faces each prefixed with their corner count.
// Faces must be triangles.
func ReadOFF(r io.Reader) (mdenoise.Mesh, error) {
	br := bufio.NewReader(r)
	var magic string
	if _, err := fmt.Fscan(br, &magic); err != nil || !strings.EqualFold(magic, "OFF") {
		return mdenoise.Mesh{}, fmt.Errorf("not a valid OFF file: missing OFF header")
	}
	var nv, nf, ne int
	if _, err := fmt.Fscan(br, &nv, &nf, &ne); err != nil {
		return mdenoise.Mesh{}, fmt.Errorf("not a valid OFF file: %w", err)
	}
	return readCounted(br, nv, nf)
}

// WriteOFF writes a mesh in OFF format.
func WriteOFF(w io.Writer, m mdenoise.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "OFF")
	fmt.Fprintf(bw, "%d %d %d\n", len(m.Vertices), len(m.Faces), 0)
	return writeCounted(bw, m)
}

// ReadPLY2 reads a PLY2 mesh: vertex count, face count, coordinates, then
// faces each prefixed with their corner count.
func ReadPLY2(r io.Reader) (mdenoise.Mesh, error) {
	br := bufio.NewReader(r)
	var nv, nf int
	if _, err := fmt.Fscan(br, &nv, &nf); err != nil {
		return mdenoise.Mesh{}, fmt.Errorf("not a valid PLY2 file: %w", err)
	}
	return readCounted(br, nv, nf)
}

// WritePLY2 writes a mesh in PLY2 format.
func WritePLY2(w io.Writer, m mdenoise.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n", len(m.Vertices), len(m.Faces))
	return writeCounted(bw, m)
}

// readCounted reads nv whitespace-separated coordinate triples followed by
// nf faces. Each face record starts with its corner count, which must be 3.
func readCounted(br *bufio.Reader, nv, nf int) (mdenoise.Mesh, error) {
	if nv < 0 || nf < 0 {
		return mdenoise.Mesh{}, fmt.Errorf("negative vertex or face count (%d, %d)", nv, nf)
	}
	m := mdenoise.Mesh{
		Vertices: make([]r3.Vec, nv),
		Faces:    make([][3]int, nf),
	}
	for i := 0; i < nv; i++ {
		v := &m.Vertices[i]
		if _, err := fmt.Fscan(br, &v.X, &v.Y, &v.Z); err != nil {
			return mdenoise.Mesh{}, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	for i := 0; i < nf; i++ {
		var n int
		if _, err := fmt.Fscan(br, &n); err != nil {
			return mdenoise.Mesh{}, fmt.Errorf("face %d: %w", i, err)
		}
		if n != 3 {
			return mdenoise.Mesh{}, fmt.Errorf("face %d: only triangular faces are supported, got %d corners", i, n)
		}
		f := &m.Faces[i]
		if _, err := fmt.Fscan(br, &f[0], &f[1], &f[2]); err != nil {
			return mdenoise.Mesh{}, fmt.Errorf("face %d: %w", i, err)
		}
	}
	if err := m.Validate(); err != nil {
		return mdenoise.Mesh{}, err
	}
	return m, nil
}

func writeCounted(bw *bufio.Writer, m mdenoise.Mesh) error {
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%f %f %f\n", v.X, v.Y, v.Z)
	}
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2])
	}
	return bw.Flush()
}
