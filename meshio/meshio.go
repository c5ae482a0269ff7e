// Package meshio reads and writes triangle meshes in the file formats the
// denoiser understands: Wavefront OBJ, OFF, PLY2, SMF, STL (binary and
// ASCII) and ESRI ASCII elevation grids. Every reader returns the plain
// in-memory mesh the denoising core consumes and validates face indices at
// this boundary; the core itself assumes index-consistent input.
package meshio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exuberant/mdenoise"
)

// Format identifies a mesh file format, usually detected from the file
// extension.
type Format int

const (
	FormatUnknown Format = iota
	FormatOBJ
	FormatOFF
	FormatPLY2
	FormatSMF
	FormatSTL
	FormatESRIGrid
)

func (f Format) String() string {
	switch f {
	case FormatOBJ:
		return "obj"
	case FormatOFF:
		return "off"
	case FormatPLY2:
		return "ply2"
	case FormatSMF:
		return "smf"
	case FormatSTL:
		return "stl"
	case FormatESRIGrid:
		return "esri grid"
	}
	return "unknown"
}

// ErrUnknownFormat is returned when a file extension maps to no supported
// mesh format.
var ErrUnknownFormat = errors.New("unknown mesh format")

// DetectFormat guesses the format of a mesh file from its extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return FormatOBJ
	case ".off":
		return FormatOFF
	case ".ply2":
		return FormatPLY2
	case ".smf":
		return FormatSMF
	case ".stl":
		return FormatSTL
	case ".asc":
		return FormatESRIGrid
	}
	return FormatUnknown
}

// ReadFile reads a mesh from path, detecting the format from the extension.
// ESRI grids are read through this too, but their grid header is discarded;
// use ReadESRIGrid directly when the mesh must be written back as a grid.
func ReadFile(path string) (mdenoise.Mesh, error) {
	fp, err := os.Open(path)
	if err != nil {
		return mdenoise.Mesh{}, err
	}
	defer fp.Close()
	switch DetectFormat(path) {
	case FormatOBJ:
		return ReadOBJ(fp)
	case FormatOFF:
		return ReadOFF(fp)
	case FormatPLY2:
		return ReadPLY2(fp)
	case FormatSMF:
		return ReadSMF(fp)
	case FormatSTL:
		return ReadSTL(fp)
	case FormatESRIGrid:
		m, _, err := ReadESRIGrid(fp)
		return m, err
	}
	return mdenoise.Mesh{}, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// WriteFile writes a mesh to path in the format matching the extension.
// SMF has no writer and ESRI grids need their original header; both return
// an error here.
func WriteFile(path string, m mdenoise.Mesh) error {
	var write func(*os.File) error
	switch f := DetectFormat(path); f {
	case FormatOBJ:
		write = func(fp *os.File) error { return WriteOBJ(fp, m) }
	case FormatOFF:
		write = func(fp *os.File) error { return WriteOFF(fp, m) }
	case FormatPLY2:
		write = func(fp *os.File) error { return WritePLY2(fp, m) }
	case FormatSTL:
		write = func(fp *os.File) error { return WriteSTL(fp, m) }
	case FormatSMF, FormatESRIGrid:
		return fmt.Errorf("writing %s through WriteFile is not supported", f)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(fp); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
