package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/exuberant/mdenoise"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOBJ reads a Wavefront OBJ mesh. Only "v" and "f" records are
// interpreted; texture/normal references in face entries ("1/2/3") are
// stripped down to the vertex index. Faces must be triangles.
func ReadOBJ(r io.Reader) (mdenoise.Mesh, error) {
	var m mdenoise.Mesh
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return mdenoise.Mesh{}, fmt.Errorf("obj line %d: %w", line, err)
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			if len(fields) != 4 {
				return mdenoise.Mesh{}, fmt.Errorf("obj line %d: only triangular faces are supported, got %d corners", line, len(fields)-1)
			}
			var f [3]int
			for i, tok := range fields[1:] {
				// f entries may carry /vt/vn references.
				if slash := strings.IndexByte(tok, '/'); slash >= 0 {
					tok = tok[:slash]
				}
				idx, err := strconv.Atoi(tok)
				if err != nil {
					return mdenoise.Mesh{}, fmt.Errorf("obj line %d: bad face index %q", line, tok)
				}
				if idx < 1 {
					return mdenoise.Mesh{}, fmt.Errorf("obj line %d: face index %d is not positive", line, idx)
				}
				f[i] = idx - 1
			}
			m.Faces = append(m.Faces, f)
		}
	}
	if err := sc.Err(); err != nil {
		return mdenoise.Mesh{}, err
	}
	if err := m.Validate(); err != nil {
		return mdenoise.Mesh{}, err
	}
	return m, nil
}

// WriteOBJ writes a mesh as Wavefront OBJ with 1-based face indices.
func WriteOBJ(w io.Writer, m mdenoise.Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %f %f %f\n", v.X, v.Y, v.Z)
	}
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	return bw.Flush()
}

func parseVec3(fields []string) (r3.Vec, error) {
	if len(fields) < 3 {
		return r3.Vec{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("bad coordinate %q", fields[i])
		}
		c[i] = v
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
