// Package mesh loads the segmented spine model and its texture maps.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is one corner of a triangle
type Vertex struct {
	Position mgl64.Vec3
	UV       mgl64.Vec2
	Normal   mgl64.Vec3
}

// Part is a named sub-mesh, one vertebra of the spine
type Part struct {
	Name string
	// Vertices are stored three by three, one triangle each
	Vertices []Vertex
}

// Model is an ordered list of parts, in file order
type Model struct {
	Parts []*Part
}

// Sphere is a bounding sphere
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// TriangleCount returns the number of triangles of the part
func (p *Part) TriangleCount() int {
	return len(p.Vertices) / 3
}

// Triangle returns the three corners of triangle i
func (p *Part) Triangle(i int) (Vertex, Vertex, Vertex) {
	return p.Vertices[3*i], p.Vertices[3*i+1], p.Vertices[3*i+2]
}

// Bounds returns the axis aligned bounds of the part vertices
func (p *Part) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	if len(p.Vertices) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}

	lo := p.Vertices[0].Position
	hi := lo
	for _, v := range p.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], v.Position[i])
			hi[i] = math.Max(hi[i], v.Position[i])
		}
	}

	return lo, hi
}

// BoundingSphere centers the sphere on the bounds and grows it to reach the furthest vertex
func (p *Part) BoundingSphere() Sphere {
	lo, hi := p.Bounds()
	center := lo.Add(hi).Mul(0.5)

	maxDistSq := 0.0
	for _, v := range p.Vertices {
		maxDistSq = math.Max(maxDistSq, v.Position.Sub(center).LenSqr())
	}

	return Sphere{Center: center, Radius: math.Sqrt(maxDistSq)}
}

// computeNormals fills missing normals with the normal of their face
func (p *Part) computeNormals() {
	for i := 0; i < p.TriangleCount(); i++ {
		a, b, c := p.Triangle(i)
		faceNormal := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		if faceNormal.Len() > 1e-12 {
			faceNormal = faceNormal.Normalize()
		}

		for k := 0; k < 3; k++ {
			if p.Vertices[3*i+k].Normal.Len() < 1e-12 {
				p.Vertices[3*i+k].Normal = faceNormal
			}
		}
	}
}
