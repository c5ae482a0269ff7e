package meshio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/exuberant/mdenoise"
	"gonum.org/v1/gonum/spatial/r3"
)

// ESRIHeader describes an ESRI ASCII elevation grid and retains the mapping
// from grid cells to mesh vertices, so a denoised mesh can be written back
// as the same grid. Cells equal to the NODATA value produce no vertex.
type ESRIHeader struct {
	NCols, NRows         int
	XLLCorner, YLLCorner float64
	CellSize             float64
	NoData               float64
	HasNoData            bool

	// index maps row-major cells to mesh vertex indices, -1 for NODATA.
	index []int
}

// nodataEps is the single-precision machine epsilon. Grid producers store
// NODATA as a float32-precision constant, so cell values are compared
// against it at that precision.
const nodataEps = 1.19209290e-7

// ReadESRIGrid reads an ESRI ASCII grid and triangulates it into a mesh.
// Grid row i becomes coordinate x = i*cellsize and column j becomes
// y = j*cellsize, with the cell value as z. Each grid cell is split into two
// triangles along the diagonal with the smaller elevation difference, which
// keeps ridgelines out of the triangulation; cells missing one corner
// produce a single triangle and cells missing more produce none.
func ReadESRIGrid(r io.Reader) (mdenoise.Mesh, *ESRIHeader, error) {
	br := bufio.NewReader(r)
	h := &ESRIHeader{}
	for _, field := range []struct {
		name string
		dst  any
	}{
		{"ncols", &h.NCols},
		{"nrows", &h.NRows},
		{"xllcorner", &h.XLLCorner},
		{"yllcorner", &h.YLLCorner},
		{"cellsize", &h.CellSize},
	} {
		var tok string
		if _, err := fmt.Fscan(br, &tok, field.dst); err != nil {
			return mdenoise.Mesh{}, nil, fmt.Errorf("not a valid ESRI grid: reading %s: %w", field.name, err)
		}
		if !strings.EqualFold(tok, field.name) {
			return mdenoise.Mesh{}, nil, fmt.Errorf("not a valid ESRI grid: expected %s, got %q", field.name, tok)
		}
	}
	if h.NCols < 1 || h.NRows < 1 {
		return mdenoise.Mesh{}, nil, fmt.Errorf("ESRI grid has invalid dimensions %dx%d", h.NRows, h.NCols)
	}
	total := h.NCols * h.NRows
	values := make([]float64, total)

	// The sixth record is either the optional NODATA_value or already the
	// first data value.
	var tok string
	if _, err := fmt.Fscan(br, &tok); err != nil {
		return mdenoise.Mesh{}, nil, fmt.Errorf("ESRI grid truncated: %w", err)
	}
	next := 0
	if strings.EqualFold(tok, "NODATA_value") {
		h.HasNoData = true
		if _, err := fmt.Fscan(br, &h.NoData); err != nil {
			return mdenoise.Mesh{}, nil, fmt.Errorf("ESRI grid: reading NODATA_value: %w", err)
		}
	} else {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return mdenoise.Mesh{}, nil, fmt.Errorf("ESRI grid: bad value %q", tok)
		}
		values[0] = v
		next = 1
	}
	for i := next; i < total; i++ {
		if _, err := fmt.Fscan(br, &values[i]); err != nil {
			return mdenoise.Mesh{}, nil, fmt.Errorf("ESRI grid: %d/%d values read: %w", i, total, err)
		}
	}

	var m mdenoise.Mesh
	h.index = make([]int, total)
	for i := 0; i < h.NRows; i++ {
		for j := 0; j < h.NCols; j++ {
			k := j + i*h.NCols
			if h.HasNoData && math.Abs(values[k]-h.NoData) < nodataEps {
				h.index[k] = -1
				continue
			}
			h.index[k] = len(m.Vertices)
			m.Vertices = append(m.Vertices, r3.Vec{
				X: float64(i) * h.CellSize,
				Y: float64(j) * h.CellSize,
				Z: values[k],
			})
		}
	}
	m.Faces = triangulateGrid(h, values)
	return m, h, nil
}

// triangulateGrid emits the triangles of every grid cell. The cell corners
// are kk[0]=(i,j), kk[1]=(i,j+1), kk[2]=(i+1,j), kk[3]=(i+1,j+1).
func triangulateGrid(h *ESRIHeader, values []float64) [][3]int {
	faces := make([][3]int, 0, 2*(h.NCols-1)*(h.NRows-1))
	for i := 0; i < h.NRows-1; i++ {
		for j := 0; j < h.NCols-1; j++ {
			k0 := j + i*h.NCols
			kk := [4]int{k0, k0 + 1, k0 + h.NCols, k0 + h.NCols + 1}
			// missing is the index of the single NODATA corner, 4 when
			// all corners are present, 5 when two or more are missing.
			missing := 4
			for c := 0; c < 4; c++ {
				if h.index[kk[c]] < 0 {
					if missing < c {
						missing = 5
						break
					}
					missing = c
				}
			}
			idx := func(c int) int { return h.index[kk[c]] }
			switch missing {
			case 0:
				faces = append(faces, [3]int{idx(1), idx(3), idx(2)})
			case 1:
				faces = append(faces, [3]int{idx(0), idx(3), idx(2)})
			case 2:
				faces = append(faces, [3]int{idx(1), idx(3), idx(0)})
			case 3:
				faces = append(faces, [3]int{idx(0), idx(1), idx(2)})
			case 4:
				// Split along the diagonal with the smaller elevation
				// difference.
				if math.Abs(values[kk[2]]-values[kk[0]]) > math.Abs(values[kk[3]]-values[kk[1]]) &&
					math.Abs(values[kk[1]]-values[kk[0]]) > math.Abs(values[kk[3]]-values[kk[2]]) {
					faces = append(faces,
						[3]int{idx(0), idx(1), idx(2)},
						[3]int{idx(1), idx(3), idx(2)})
				} else {
					faces = append(faces,
						[3]int{idx(1), idx(3), idx(0)},
						[3]int{idx(0), idx(3), idx(2)})
				}
			}
		}
	}
	return faces
}

// WriteESRIGrid writes the mesh back as the ESRI ASCII grid it was read
// from: the produced z values are placed at their original cells and NODATA
// cells are restored. The mesh must have the vertex count the header's grid
// produced.
func WriteESRIGrid(w io.Writer, m mdenoise.Mesh, h *ESRIHeader) error {
	if h == nil || h.index == nil {
		return fmt.Errorf("ESRI header was not produced by ReadESRIGrid")
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols          %d\n", h.NCols)
	fmt.Fprintf(bw, "nrows          %d\n", h.NRows)
	fmt.Fprintf(bw, "xllcorner      %f\n", h.XLLCorner)
	fmt.Fprintf(bw, "yllcorner      %f\n", h.YLLCorner)
	fmt.Fprintf(bw, "cellsize       %f\n", h.CellSize)
	if h.HasNoData {
		fmt.Fprintf(bw, "NODATA_value   %f\n", h.NoData)
	}
	for i := 0; i < h.NRows; i++ {
		for j := 0; j < h.NCols; j++ {
			idx := h.index[j+i*h.NCols]
			switch {
			case idx < 0:
				fmt.Fprintf(bw, "%f ", h.NoData)
			case idx >= len(m.Vertices):
				return fmt.Errorf("mesh has %d vertices, grid expects index %d", len(m.Vertices), idx)
			default:
				fmt.Fprintf(bw, "%f ", m.Vertices[idx].Z)
			}
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
