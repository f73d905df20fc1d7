package scene

import (
	"math"

	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/chain"
	"github.com/go-gl/mathgl/mgl64"
)

// Pickable is anything the pointer ray can hover
type Pickable interface {
	Name() string
	IntersectRay(r Ray) (float64, bool)
	// Body is nil for objects that are not simulated
	Body() *actor.RigidBody
}

// Hit is the closest pickable along a ray
type Hit struct {
	Object   Pickable
	Distance float64
	Point    mgl64.Vec3
}

type Scene struct {
	Objects []Pickable
}

func (s *Scene) Add(objects ...Pickable) {
	s.Objects = append(s.Objects, objects...)
}

// Raycast returns the nearest object hit by r
func (s *Scene) Raycast(r Ray) (Hit, bool) {
	var best Hit
	found := false
	for _, object := range s.Objects {
		t, ok := object.IntersectRay(r)
		if !ok {
			continue
		}
		if !found || t < best.Distance {
			best = Hit{Object: object, Distance: t, Point: r.At(t)}
			found = true
		}
	}

	return best, found
}

// SegmentPickable hits the triangles of a chain segment at its current transform
type SegmentPickable struct {
	Segment *chain.Segment
}

func (p SegmentPickable) Name() string {
	return p.Segment.Name()
}

func (p SegmentPickable) Body() *actor.RigidBody {
	return p.Segment.Body
}

func (p SegmentPickable) IntersectRay(r Ray) (float64, bool) {
	s := p.Segment
	bounds := actor.Sphere{Radius: s.Rest.Radius}
	if _, ok := bounds.Raycast(actor.NewTransformAt(s.Position), r.Origin, r.Direction); !ok {
		return 0, false
	}

	if s.Part.TriangleCount() == 0 {
		return s.Body.Shape.Raycast(s.Body.Transform, r.Origin, r.Direction)
	}

	best := math.Inf(1)
	for i := 0; i < s.Part.TriangleCount(); i++ {
		a, b, c := s.Part.Triangle(i)
		t, ok := IntersectTriangle(r, s.ToWorld(a.Position), s.ToWorld(b.Position), s.ToWorld(c.Position))
		if ok && t < best {
			best = t
		}
	}

	return best, !math.IsInf(best, 1)
}

// GroundPickable is the floor drawn under the chain, it is never pushed
type GroundPickable struct {
	Height float64
}

func (g GroundPickable) Name() string {
	return "ground"
}

func (g GroundPickable) Body() *actor.RigidBody {
	return nil
}

func (g GroundPickable) IntersectRay(r Ray) (float64, bool) {
	plane := actor.Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: -g.Height}
	return plane.Raycast(actor.NewTransform(), r.Origin, r.Direction)
}

// IntersectTriangle is the Möller–Trumbore test, both faces count
func IntersectTriangle(r Ray, a, b, c mgl64.Vec3) (float64, bool) {
	const epsilon = 1e-12

	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	h := r.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if math.Abs(det) < epsilon {
		return 0, false
	}

	invDet := 1.0 / det
	s := r.Origin.Sub(a)
	u := invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := invDet * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := invDet * edge2.Dot(q)
	if t <= epsilon {
		return 0, false
	}

	return t, true
}
