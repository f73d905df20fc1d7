package spine

import (
	"sync"

	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// BroadPhase fills the spatial grid and streams the pairs whose AABBs overlap
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.RigidBody, workersCount int, skip func(a, b *actor.RigidBody) bool) <-chan Pair {
	spatialGrid.Clear()
	for i, body := range bodies {
		if isPlane(body) {
			continue
		}
		spatialGrid.Insert(i, body)
	}
	spatialGrid.SortCells()

	return spatialGrid.FindPairsParallel(bodies, workersCount, skip)
}

// NarrowPhase turns candidate pairs into contact constraints.
// Only spheres and planes exist in a chain scene, so every test is analytic.
func NarrowPhase(pairs <-chan Pair, workersCount int) []*constraint.ContactConstraint {
	workersCount = max(1, workersCount)
	contactsChan := make(chan *constraint.ContactConstraint, workersCount*2)

	var wg sync.WaitGroup
	for range workersCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range pairs {
				if contact, ok := Collide(pair.BodyA, pair.BodyB); ok {
					contactsChan <- contact
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(contactsChan)
	}()

	contacts := make([]*constraint.ContactConstraint, 0)
	for c := range contactsChan {
		contacts = append(contacts, c)
	}

	return contacts
}

// Collide dispatches on the shape types of both bodies
func Collide(a, b *actor.RigidBody) (*constraint.ContactConstraint, bool) {
	switch {
	case a.Shape.Type() == actor.ShapeTypeSphere && b.Shape.Type() == actor.ShapeTypeSphere:
		return collideSpheres(a, b)
	case a.Shape.Type() == actor.ShapeTypePlane && b.Shape.Type() == actor.ShapeTypeSphere:
		return collideSpherePlane(a, b)
	case a.Shape.Type() == actor.ShapeTypeSphere && b.Shape.Type() == actor.ShapeTypePlane:
		return collideSpherePlane(b, a)
	default:
		return nil, false
	}
}

func collideSpheres(a, b *actor.RigidBody) (*constraint.ContactConstraint, bool) {
	sphereA := a.Shape.(*actor.Sphere)
	sphereB := b.Shape.(*actor.Sphere)

	delta := b.Transform.Position.Sub(a.Transform.Position)
	distance := delta.Len()
	penetration := sphereA.Radius + sphereB.Radius - distance
	if penetration <= 0 {
		return nil, false
	}

	normal := mgl64.Vec3{0, 1, 0}
	if distance > 1e-9 {
		normal = delta.Mul(1.0 / distance)
	}

	// Midway between both surfaces
	point := a.Transform.Position.Add(normal.Mul(sphereA.Radius - penetration/2))

	return &constraint.ContactConstraint{
		BodyA:  a,
		BodyB:  b,
		Normal: normal,
		Points: []constraint.ContactPoint{{Position: point, Penetration: penetration}},
	}, true
}

// collideSpherePlane always returns the plane as BodyA
func collideSpherePlane(planeBody, sphereBody *actor.RigidBody) (*constraint.ContactConstraint, bool) {
	plane := planeBody.Shape.(*actor.Plane)
	sphere := sphereBody.Shape.(*actor.Sphere)

	distance := plane.SignedDistance(planeBody.Transform, sphereBody.Transform.Position)
	penetration := sphere.Radius - distance
	if penetration <= 0 {
		return nil, false
	}

	point := sphereBody.Transform.Position.Sub(plane.Normal.Mul(sphere.Radius))

	return &constraint.ContactConstraint{
		BodyA:  planeBody,
		BodyB:  sphereBody,
		Normal: plane.Normal,
		Points: []constraint.ContactPoint{{Position: point, Penetration: penetration}},
	}, true
}
