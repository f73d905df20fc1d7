// Package scene holds what the viewers share: the camera, the pickable
// objects hit by the pointer ray, and the lighting model.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half line, Direction is normalized
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// At returns the point at distance t along the ray
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Camera is a perspective camera orbiting around Target
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	FovY   float64 // degrees
	Aspect float64
	Near   float64
	Far    float64
}

// NewCamera places the camera at (-6, 6, -6) looking at the origin
func NewCamera(aspect float64) *Camera {
	return &Camera{
		Position: mgl64.Vec3{-6, 6, -6},
		Target:   mgl64.Vec3{0, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		FovY:     60,
		Aspect:   aspect,
		Near:     0.01,
		Far:      1000,
	}
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// SetViewport updates the aspect ratio from a viewport size in pixels
func (c *Camera) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		c.Aspect = float64(width) / float64(height)
	}
}

// Ray builds the world ray passing through ndc, both components in [-1, 1]
func (c *Camera) Ray(ndc mgl64.Vec2) Ray {
	inverse := c.Projection().Mul4(c.View()).Inv()
	p := inverse.Mul4x1(mgl64.Vec4{ndc.X(), ndc.Y(), 0.5, 1})
	target := p.Vec3().Mul(1.0 / p.W())

	return Ray{Origin: c.Position, Direction: target.Sub(c.Position).Normalize()}
}

// Project maps a world point to pixel coordinates, depth is the view space distance
func (c *Camera) Project(p mgl64.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip.W() <= c.Near {
		return 0, 0, 0, false
	}

	ndc := clip.Vec3().Mul(1.0 / clip.W())
	x = (ndc.X() + 1) / 2 * float64(width)
	y = (1 - ndc.Y()) / 2 * float64(height)

	return x, y, clip.W(), true
}

// PixelsPerUnit approximates the on-screen size of one world unit at depth
func (c *Camera) PixelsPerUnit(depth float64, height int) float64 {
	if depth <= 0 {
		return 0
	}

	return float64(height) / (2 * depth * math.Tan(mgl64.DegToRad(c.FovY)/2))
}

// Orbit rotates the camera around its target, angles in radians.
// Pitch stays away from the poles.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius < 1e-9 {
		return
	}

	yaw := math.Atan2(offset.X(), offset.Z()) + dYaw
	pitch := math.Asin(offset.Y()/radius) + dPitch
	limit := mgl64.DegToRad(89)
	pitch = math.Max(-limit, math.Min(limit, pitch))

	c.Position = c.Target.Add(mgl64.Vec3{
		radius * math.Cos(pitch) * math.Sin(yaw),
		radius * math.Sin(pitch),
		radius * math.Cos(pitch) * math.Cos(yaw),
	})
}

// Zoom scales the distance to the target
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}

	offset := c.Position.Sub(c.Target)
	distance := math.Max(0.5, math.Min(500, offset.Len()*factor))
	c.Position = c.Target.Add(offset.Normalize().Mul(distance))
}
