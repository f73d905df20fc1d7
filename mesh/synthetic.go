package mesh

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Column builds a stack of n box-shaped vertebrae centered on the Y axis,
// the top one at y = top. Parts are emitted bottom first, like most exporters do.
func Column(n int, top, size, gap float64) *Model {
	model := &Model{}
	half := size / 2

	for i := n - 1; i >= 0; i-- {
		center := mgl64.Vec3{0, top - float64(i)*(size+gap), 0}
		part := &Part{Name: fmt.Sprintf("vertebra_%02d", i+1)}
		part.Vertices = boxVertices(center, mgl64.Vec3{half * 1.6, half * 0.8, half})
		model.Parts = append(model.Parts, part)
	}

	return model
}

func boxVertices(center, h mgl64.Vec3) []Vertex {
	faces := []struct {
		normal mgl64.Vec3
		u, v   mgl64.Vec3
	}{
		{mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}},
		{mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 1, 0}},
		{mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -1}},
		{mgl64.Vec3{0, -1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}},
		{mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
		{mgl64.Vec3{0, 0, -1}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 1, 0}},
	}

	scale := func(v mgl64.Vec3) mgl64.Vec3 {
		return mgl64.Vec3{v[0] * h[0], v[1] * h[1], v[2] * h[2]}
	}

	vertices := make([]Vertex, 0, 36)
	for _, f := range faces {
		corner := func(su, sv float64) Vertex {
			local := f.normal.Add(f.u.Mul(su)).Add(f.v.Mul(sv))
			return Vertex{
				Position: center.Add(scale(local)),
				UV:       mgl64.Vec2{(su + 1) / 2, (sv + 1) / 2},
				Normal:   f.normal,
			}
		}

		a, b, c, d := corner(-1, -1), corner(1, -1), corner(1, 1), corner(-1, 1)
		vertices = append(vertices, a, b, c, a, c, d)
	}

	return vertices
}

// BoneTextures generates a color map and a flat-ish normal map so the demo can
// run without image files
func BoneTextures(size int) (*Texture, *Texture) {
	colorMap := image.NewRGBA(image.Rect(0, 0, size, size))
	normalMap := image.NewRGBA(image.Rect(0, 0, size, size))

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float64(x) / float64(size)
			fy := float64(y) / float64(size)
			grain := 0.5 + 0.5*math.Sin(fx*40+math.Sin(fy*12)*3)

			colorMap.SetRGBA(x, y, color.RGBA{
				R: uint8(200 + 40*grain),
				G: uint8(185 + 35*grain),
				B: uint8(150 + 30*grain),
				A: 255,
			})

			// Tangent space normal tilted along the grain
			tilt := (grain - 0.5) * 0.3
			n := mgl64.Vec3{tilt, 0, 1}.Normalize()
			normalMap.SetRGBA(x, y, color.RGBA{
				R: uint8((n[0]*0.5 + 0.5) * 255),
				G: uint8((n[1]*0.5 + 0.5) * 255),
				B: uint8((n[2]*0.5 + 0.5) * 255),
				A: 255,
			})
		}
	}

	return NewTexture("synthetic_color", colorMap), NewTexture("synthetic_normal", normalMap)
}
