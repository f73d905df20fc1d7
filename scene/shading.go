package scene

import (
	"image/color"
	"math"

	"github.com/akmonengine/spine/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// Light is a directional light plus an ambient term
type Light struct {
	// Direction points from the scene toward the light
	Direction mgl64.Vec3
	Intensity float64
	Ambient   float64
}

// DefaultLight is a white directional light at (10, 10, -10) over a 0x404040 ambient
func DefaultLight() Light {
	return Light{
		Direction: mgl64.Vec3{10, 10, -10}.Normalize(),
		Intensity: 1.0,
		Ambient:   float64(0x40) / 255,
	}
}

// Lambert returns the lit factor of a surface with normal n
func (l Light) Lambert(n mgl64.Vec3) float64 {
	return l.Ambient + l.Intensity*math.Max(0, n.Dot(l.Direction))
}

// Shade lights the albedo sampled at uv. The vertex normal is bent by the
// tangent space normal map when one is given.
func (l Light) Shade(normal mgl64.Vec3, uv mgl64.Vec2, colorMap, normalMap *mesh.Texture) color.RGBA {
	albedo := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if colorMap != nil {
		albedo = colorMap.Sample(uv.X(), uv.Y())
	}

	if normalMap != nil && normal.Len() > 1e-12 {
		normal = PerturbNormal(normal, normalMap.Sample(uv.X(), uv.Y()))
	}

	k := math.Min(1, l.Lambert(normal))
	return color.RGBA{
		R: uint8(float64(albedo.R) * k),
		G: uint8(float64(albedo.G) * k),
		B: uint8(float64(albedo.B) * k),
		A: 255,
	}
}

// PerturbNormal applies a tangent space normal map texel to a world normal
func PerturbNormal(normal mgl64.Vec3, texel color.RGBA) mgl64.Vec3 {
	normal = normal.Normalize()
	tangent, bitangent := tangentBasis(normal)

	ts := mgl64.Vec3{
		float64(texel.R)/255*2 - 1,
		float64(texel.G)/255*2 - 1,
		float64(texel.B)/255*2 - 1,
	}

	bent := tangent.Mul(ts.X()).Add(bitangent.Mul(ts.Y())).Add(normal.Mul(ts.Z()))
	if bent.Len() < 1e-12 {
		return normal
	}

	return bent.Normalize()
}

// ShadowPoint projects p along the light direction onto the horizontal plane y = height
func (l Light) ShadowPoint(p mgl64.Vec3, height float64) (mgl64.Vec3, bool) {
	if l.Direction.Y() <= 1e-9 {
		return mgl64.Vec3{}, false
	}

	t := (p.Y() - height) / l.Direction.Y()
	return p.Sub(l.Direction.Mul(t)), true
}

func tangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent = mgl64.Vec3{0, 1, 0}
	} else {
		tangent = mgl64.Vec3{1, 0, 0}
	}

	tangent = tangent.Sub(normal.Mul(tangent.Dot(normal))).Normalize()
	bitangent := normal.Cross(tangent).Normalize()

	return tangent, bitangent
}
