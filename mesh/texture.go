package mesh

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
)

// Texture wraps a decoded image with repeat-wrapped UV sampling
type Texture struct {
	Name  string
	Image image.Image
}

// LoadTexture decodes a JPEG or PNG file
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &Texture{Name: path, Image: img}, nil
}

// NewTexture wraps an in-memory image
func NewTexture(name string, img image.Image) *Texture {
	return &Texture{Name: name, Image: img}
}

// Sample returns the nearest texel at uv. v = 0 is the bottom row, as in OBJ files.
func (t *Texture) Sample(u, v float64) color.RGBA {
	bounds := t.Image.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return color.RGBA{}
	}

	u -= math.Floor(u)
	v -= math.Floor(v)
	x := min(int(u*float64(w)), w-1)
	y := min(int((1-v)*float64(h)), h-1)

	r, g, b, a := t.Image.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// Average returns the mean color of the texture
func (t *Texture) Average() color.RGBA {
	bounds := t.Image.Bounds()
	var r, g, b, a, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, ca := t.Image.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			b += uint64(cb >> 8)
			a += uint64(ca >> 8)
			n++
		}
	}
	if n == 0 {
		return color.RGBA{}
	}

	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: uint8(a / n)}
}
