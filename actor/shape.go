package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypePlane
)

// ShapeInterface is the interface that all collision shapes must implement
type ShapeInterface interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeMass calculates mass data for the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	// Raycast returns the distance along the normalized direction at which
	// the ray starting at origin enters the shape placed at transform.
	Raycast(transform Transform, origin, direction mgl64.Vec3) (float64, bool)
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
	aabb   AABB
}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// Solid sphere: I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

func (s *Sphere) Raycast(transform Transform, origin, direction mgl64.Vec3) (float64, bool) {
	oc := origin.Sub(transform.Position)
	b := oc.Dot(direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// Origin outside and pointing away
	if c > 0 && b > 0 {
		return 0, false
	}

	discriminant := b*b - c
	if discriminant < 0 {
		return 0, false
	}

	t := -b - math.Sqrt(discriminant)
	if t < 0 {
		// Origin inside the sphere
		t = 0
	}

	return t, true
}

// Plane represents an infinite plane collision shape
// The plane is defined by the equation: Normal · p + Distance = 0
// where Normal is the plane's normal vector (must be normalized)
// and Distance is the signed distance from the origin along the normal
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
	aabb     AABB
}

func (p *Plane) Type() ShapeType {
	return ShapeTypePlane
}

// PointOnPlane returns the point of the plane closest to the transform origin
func (p *Plane) PointOnPlane(transform Transform) mgl64.Vec3 {
	return p.Normal.Mul(-p.Distance).Add(transform.Position)
}

// SignedDistance returns the distance of point above the plane
func (p *Plane) SignedDistance(transform Transform, point mgl64.Vec3) float64 {
	return point.Sub(p.PointOnPlane(transform)).Dot(p.Normal)
}

func (p *Plane) ComputeAABB(transform Transform) {
	const thickness = 1.0
	const infinity = 1e10

	planePoint := p.PointOnPlane(transform)

	// Base bounds with thickness along the normal
	min := planePoint.Sub(p.Normal.Mul(thickness))
	max := planePoint
	for i := 0; i < 3; i++ {
		if min[i] > max[i] {
			min[i], max[i] = max[i], min[i]
		}
	}

	// Extend to infinity along every axis that is not the normal axis
	for i := 0; i < 3; i++ {
		if math.Abs(p.Normal[i]) < 1.0 {
			min[i] = -infinity
			max[i] = infinity
		}
	}

	p.aabb = AABB{Min: min, Max: max}
}

func (p *Plane) GetAABB() AABB {
	return p.aabb
}

// ComputeMass calculates mass data for the plane
// Planes are always static with infinite mass
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

func (p *Plane) Raycast(transform Transform, origin, direction mgl64.Vec3) (float64, bool) {
	denominator := p.Normal.Dot(direction)
	if math.Abs(denominator) < 1e-12 {
		return 0, false
	}

	t := p.PointOnPlane(transform).Sub(origin).Dot(p.Normal) / denominator
	if t < 0 {
		return 0, false
	}

	return t, true
}
