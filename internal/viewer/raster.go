package viewer

import (
	"image/color"
	"math"
)

// Canvas is a small software framebuffer for viewers without a GPU path
type Canvas struct {
	Width, Height int
	Pix           []color.RGBA
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		Pix:    make([]color.RGBA, max(0, width*height)),
	}
}

func (c *Canvas) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return color.RGBA{}
	}

	return c.Pix[y*c.Width+x]
}

func (c *Canvas) Clear(background color.RGBA) {
	for i := range c.Pix {
		c.Pix[i] = background
	}
}

// Draw paints a frame in painter order
func (c *Canvas) Draw(frame Frame) {
	for _, tri := range frame.Ground {
		c.Fill(tri, 1)
	}
	for _, tri := range frame.Shadows {
		c.Fill(tri, frame.ShadowAlpha)
	}
	for _, tri := range frame.Segments {
		c.Fill(tri, 1)
	}
}

// Fill rasterizes tri, interpolating vertex colors, and blends it with alpha.
// A pixel is covered when its center lies inside the triangle.
func (c *Canvas) Fill(tri Triangle, alpha float64) {
	v0, v1, v2 := tri.Vertices[0], tri.Vertices[1], tri.Vertices[2]

	area := edge(v0, v1, v2.X, v2.Y)
	if math.Abs(area) < 1e-12 {
		return
	}

	minX := max(0, int(math.Floor(min(v0.X, v1.X, v2.X))))
	maxX := min(c.Width-1, int(math.Ceil(max(v0.X, v1.X, v2.X))))
	minY := max(0, int(math.Floor(min(v0.Y, v1.Y, v2.Y))))
	maxY := min(c.Height-1, int(math.Ceil(max(v0.Y, v1.Y, v2.Y))))

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			w0 := edge(v1, v2, px, py) / area
			w1 := edge(v2, v0, px, py) / area
			w2 := edge(v0, v1, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			src := mix(v0.Color, v1.Color, v2.Color, w0, w1, w2)
			i := y*c.Width + x
			c.Pix[i] = blend(c.Pix[i], src, alpha)
		}
	}
}

func edge(a, b Vertex, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
}

func mix(c0, c1, c2 color.RGBA, w0, w1, w2 float64) color.RGBA {
	channel := func(a, b, c uint8) uint8 {
		return uint8(math.Round(float64(a)*w0 + float64(b)*w1 + float64(c)*w2))
	}

	return color.RGBA{
		R: channel(c0.R, c1.R, c2.R),
		G: channel(c0.G, c1.G, c2.G),
		B: channel(c0.B, c1.B, c2.B),
		A: 0xff,
	}
}

func blend(dst, src color.RGBA, alpha float64) color.RGBA {
	if alpha >= 1 {
		return src
	}

	channel := func(d, s uint8) uint8 {
		return uint8(math.Round(float64(d)*(1-alpha) + float64(s)*alpha))
	}

	return color.RGBA{
		R: channel(dst.R, src.R),
		G: channel(dst.G, src.G),
		B: channel(dst.B, src.B),
		A: 0xff,
	}
}
