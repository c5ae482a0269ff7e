package meshio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/exuberant/mdenoise"
	"gonum.org/v1/gonum/spatial/r3"
)

// stlHeader defines the binary STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlTriangle defines the triangle data within a binary STL file.
// Each record is 50 bytes on the wire.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

const stlTriangleSize = 50

// ReadSTL reads a binary or ASCII STL stream. STL stores each triangle with
// its own copies of the corner coordinates; bit-identical vertices are
// welded into a shared index space so the mesh has real connectivity for
// the denoiser to work with.
func ReadSTL(r io.Reader) (mdenoise.Mesh, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(5)
	if err != nil {
		return mdenoise.Mesh{}, fmt.Errorf("STL read failed: %w", err)
	}
	var tris [][3]r3.Vec
	if strings.EqualFold(string(head), "solid") {
		tris, err = readTextSTL(br)
	} else {
		tris, err = readBinarySTL(br)
	}
	if err != nil {
		return mdenoise.Mesh{}, err
	}
	return weldTriangles(tris), nil
}

// WriteSTL writes the mesh as binary STL. Face normals are computed from
// the vertex winding; a degenerate face gets a zero normal, which STL
// consumers treat as "derive it yourself".
func WriteSTL(w io.Writer, m mdenoise.Mesh) error {
	if len(m.Faces) == 0 {
		return errors.New("empty mesh")
	}
	header := stlHeader{Count: uint32(len(m.Faces))}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var b [stlTriangleSize]byte
	var d stlTriangle
	for _, f := range m.Faces {
		v1, v2, v3 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n := triangleNormal(v1, v2, v3)
		d.Normal = to3F32(n)
		d.Vertex1 = to3F32(v1)
		d.Vertex2 = to3F32(v2)
		d.Vertex3 = to3F32(v3)
		d.put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

func readBinarySTL(r io.Reader) ([][3]r3.Vec, error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, fmt.Errorf("STL header read failed: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	tris := make([][3]r3.Vec, 0, header.Count)
	var (
		buf [stlTriangleSize]byte
		d   stlTriangle
	)
	for i := 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, header.Count, err)
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		tris = append(tris, [3]r3.Vec{
			r3From3F32(d.Vertex1),
			r3From3F32(d.Vertex2),
			r3From3F32(d.Vertex3),
		})
	}
	return tris, nil
}

// readTextSTL parses ASCII STL leniently: it collects the "vertex" records
// and groups consecutive triples into triangles, ignoring the facet and
// loop keywords around them.
func readTextSTL(r io.Reader) ([][3]r3.Vec, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var corners []r3.Vec
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 || !strings.EqualFold(fields[0], "vertex") {
			continue
		}
		var c [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[1+i], 64)
			if err != nil {
				return nil, fmt.Errorf("bad STL vertex coordinate %q", fields[1+i])
			}
			c[i] = v
		}
		corners = append(corners, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(corners) == 0 || len(corners)%3 != 0 {
		return nil, fmt.Errorf("ASCII STL has %d vertex records, want a positive multiple of 3", len(corners))
	}
	tris := make([][3]r3.Vec, len(corners)/3)
	for i := range tris {
		tris[i] = [3]r3.Vec{corners[3*i], corners[3*i+1], corners[3*i+2]}
	}
	return tris, nil
}

func weldTriangles(tris [][3]r3.Vec) mdenoise.Mesh {
	m := mdenoise.Mesh{Faces: make([][3]int, 0, len(tris))}
	index := make(map[[3]float64]int)
	for _, tri := range tris {
		var f [3]int
		for j, v := range tri {
			key := [3]float64{v.X, v.Y, v.Z}
			idx, ok := index[key]
			if !ok {
				idx = len(m.Vertices)
				index[key] = idx
				m.Vertices = append(m.Vertices, v)
			}
			f[j] = idx
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}

func triangleNormal(v1, v2, v3 r3.Vec) r3.Vec {
	n := r3.Cross(r3.Sub(v2, v1), r3.Sub(v3, v1))
	norm := r3.Norm(n)
	if norm == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/norm, n)
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported.
}

func (t stlTriangle) validate() error {
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	return nil
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
