package constraint

import (
	"math"

	"github.com/akmonengine/spine/actor"
	"github.com/go-gl/mathgl/mgl64"
)

type Constraint interface {
	SolvePosition(dt float64)
	SolveVelocity(dt float64)
}

// ComputeRestitution averages both materials
func ComputeRestitution(matA, matB actor.Material) float64 {
	return (matA.Restitution + matB.Restitution) / 2.0
}

// ComputeStaticFriction uses the geometric mean
func ComputeStaticFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.StaticFriction * matB.StaticFriction)
}

func ComputeDynamicFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.DynamicFriction * matB.DynamicFriction)
}

func clampSmallVelocities(rb *actor.RigidBody) {
	const velocityThreshold = 1e-5

	if rb.Velocity.Len() < velocityThreshold {
		rb.Velocity = mgl64.Vec3{0, 0, 0}
	}
	if rb.AngularVelocity.Len() < velocityThreshold {
		rb.AngularVelocity = mgl64.Vec3{0, 0, 0}
	}
}

// lockPair locks both bodies in ID order so that two constraints sharing
// bodies can never wait on each other
func lockPair(a, b *actor.RigidBody) func() {
	first, second := a, b
	if second.ID < first.ID {
		first, second = second, first
	}

	first.Mutex.Lock()
	if second != first {
		second.Mutex.Lock()
	}

	return func() {
		if second != first {
			second.Mutex.Unlock()
		}
		first.Mutex.Unlock()
	}
}
