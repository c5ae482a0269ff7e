package mdenoise_test

import (
	"testing"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
)

// stlToPNG renders an STL file to a PNG so failed denoising runs can be
// inspected by eye. Adapted camera setup for small meshes near the origin.
func stlToPNG(t testing.TB, stlName, outputname string) {
	mesh, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		t.Fatal(err)
	}
	const (
		width, height = 960, 540 // output width and height in pixels
		scale         = 2        // supersampling factor
		fovy          = 30       // vertical field of view in degrees
		near          = 1
		far           = 10
	)

	var (
		eye    = fauxgl.V(3, 3, 3)                    // camera position
		center = fauxgl.V(0, 0, 0)                    // view center position
		up     = fauxgl.V(0, 0, 1)                    // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize() // light direction
		color  = fauxgl.HexColor("#468966")           // object color
	)

	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(width, height, image, resize.Bilinear)
	if err := fauxgl.SavePNG(outputname, image); err != nil {
		t.Fatal(err)
	}
}
