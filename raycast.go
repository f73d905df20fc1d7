package spine

import (
	"math"

	"github.com/akmonengine/spine/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// RaycastHit describes the closest body along a ray
type RaycastHit struct {
	Body     *actor.RigidBody
	Distance float64
	Point    mgl64.Vec3
}

// Raycast returns the first body hit by the ray within maxDistance.
// A non-positive maxDistance means unbounded.
func (w *World) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RaycastHit, bool) {
	if direction.Len() < 1e-12 {
		return RaycastHit{}, false
	}
	direction = direction.Normalize()
	if maxDistance <= 0 {
		maxDistance = math.Inf(1)
	}

	var best RaycastHit
	found := false
	for _, body := range w.Bodies {
		if !isPlane(body) && !body.Shape.GetAABB().IntersectsRay(origin, direction, maxDistance) {
			continue
		}

		t, ok := body.Shape.Raycast(body.Transform, origin, direction)
		if !ok || t > maxDistance {
			continue
		}
		if !found || t < best.Distance {
			best = RaycastHit{Body: body, Distance: t, Point: origin.Add(direction.Mul(t))}
			found = true
		}
	}

	return best, found
}
