// Command mdenoise removes noise from a triangulated surface mesh while
// preserving sharp features. It reads OBJ, OFF, PLY2, SMF, STL and ESRI
// ASCII grid files and writes the denoised mesh in the format named by the
// output extension, which by default matches the input. Grid input is always
// processed in z-only mode.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/exuberant/mdenoise"
	"github.com/exuberant/mdenoise/meshio"
)

func main() {
	var (
		input       = flag.String("i", "", "input mesh file (.obj .off .ply2 .smf .stl .asc)")
		output      = flag.String("o", "", "output mesh file (default: derived from the input name and parameters)")
		commonEdge  = flag.Bool("e", false, "use the common-edge face neighborhood instead of common-vertex")
		threshold   = flag.Float64("t", 0.4, "normal similarity threshold, within (0,1)")
		normalIters = flag.Int("n", 20, "iterations of normal filtering")
		vertexIters = flag.Int("v", 50, "iterations of vertex position updating")
		zOnly       = flag.Bool("z", false, "only update z coordinates (gridded elevation data)")
	)
	flag.Parse()
	if *input == "" {
		fmt.Fprintln(os.Stderr, "mdenoise: input file required (-i)")
		flag.Usage()
		os.Exit(1)
	}

	// Out-of-range parameters fall back to the defaults with a warning
	// instead of aborting.
	opts := mdenoise.DefaultOptions()
	if *commonEdge {
		opts.Neighborhood = mdenoise.CommonEdge
	}
	opts.ZOnly = *zOnly
	if *threshold <= 0 || *threshold >= 1 {
		fmt.Printf("warning: the threshold must be within (0,1); using the default %g\n", opts.Threshold)
	} else {
		opts.Threshold = *threshold
	}
	if *normalIters < 1 {
		fmt.Printf("warning: normal iterations must be at least 1; using the default %d\n", opts.NormalIterations)
	} else {
		opts.NormalIterations = *normalIters
	}
	if *vertexIters < 1 {
		fmt.Printf("warning: vertex iterations must be at least 1; using the default %d\n", opts.VertexIterations)
	} else {
		opts.VertexIterations = *vertexIters
	}

	format := meshio.DetectFormat(*input)
	if format == meshio.FormatUnknown {
		fatalf("unsupported input format %q", filepath.Ext(*input))
	}
	var forced bool
	if opts, forced = gridOptions(format, opts); forced {
		fmt.Println("note: z-only mode is always used for ESRI grid input")
	}

	fmt.Printf("Input: %s\n", *input)
	fmt.Printf("Neighborhood: %s\n", opts.Neighborhood)
	fmt.Printf("Threshold: %g\n", opts.Threshold)
	fmt.Printf("Normal iterations: %d\n", opts.NormalIterations)
	fmt.Printf("Vertex iterations: %d\n", opts.VertexIterations)

	var (
		mesh mdenoise.Mesh
		grid *meshio.ESRIHeader
		err  error
	)
	start := time.Now()
	fmt.Print("Reading model...")
	if format == meshio.FormatESRIGrid {
		var fp *os.File
		fp, err = os.Open(*input)
		if err == nil {
			mesh, grid, err = meshio.ReadESRIGrid(fp)
			fp.Close()
		}
	} else {
		mesh, err = meshio.ReadFile(*input)
	}
	if err != nil {
		fatalf("reading %s: %v", *input, err)
	}
	fmt.Printf(" %8.3f seconds (%d vertices, %d faces)\n",
		time.Since(start).Seconds(), len(mesh.Vertices), len(mesh.Faces))

	start = time.Now()
	fmt.Print("Denoising model...")
	produced, err := mdenoise.Denoise(mesh, opts)
	if err != nil {
		fatalf("denoising: %v", err)
	}
	fmt.Printf(" %8.3f seconds\n", time.Since(start).Seconds())

	outPath := *output
	if outPath == "" {
		outPath = defaultOutputName(*input, opts)
	}
	start = time.Now()
	fmt.Print("Saving model...")
	if err := saveMesh(outPath, produced, grid); err != nil {
		fatalf("writing %s: %v", outPath, err)
	}
	fmt.Printf(" %8.3f seconds\n", time.Since(start).Seconds())
	fmt.Printf("Output: %s\n", outPath)
}

// gridOptions forces z-only mode for ESRI grid input: the planimetric
// coordinates of an elevation grid are authoritative, and the grid writer can
// only carry z back to the cells anyway. Reports whether it flipped the mode.
func gridOptions(format meshio.Format, opts mdenoise.Options) (mdenoise.Options, bool) {
	if format == meshio.FormatESRIGrid && !opts.ZOnly {
		opts.ZOnly = true
		return opts, true
	}
	return opts, false
}

// saveMesh writes the produced mesh to outPath in the format named by the
// output extension. The grid header is only consulted when the output itself
// is an ESRI grid; a grid input saved as .obj becomes a plain mesh file.
func saveMesh(outPath string, m mdenoise.Mesh, grid *meshio.ESRIHeader) error {
	if meshio.DetectFormat(outPath) != meshio.FormatESRIGrid {
		return meshio.WriteFile(outPath, m)
	}
	if grid == nil {
		return fmt.Errorf("cannot write %s as an ESRI grid: the input was not a grid", outPath)
	}
	fp, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := meshio.WriteESRIGrid(fp, m, grid); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// defaultOutputName derives the output file name from the input name and
// the run parameters, e.g. fandisk.obj -> fandisk_V_0.40_20_50.obj.
func defaultOutputName(path string, opts mdenoise.Options) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	nb := "V"
	if opts.Neighborhood == mdenoise.CommonEdge {
		nb = "E"
	}
	return fmt.Sprintf("%s_%s_%.2f_%d_%d%s",
		base, nb, opts.Threshold, opts.NormalIterations, opts.VertexIterations, ext)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "mdenoise: "+format+"\n", args...)
	os.Exit(1)
}
