package constraint

import (
	"github.com/akmonengine/spine/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultJointCompliance keeps the joint close to rigid while staying stable with one iteration per substep
	DefaultJointCompliance = 1e-9

	// jointWakeDistance is the pivot separation above which a sleeping body is woken up
	jointWakeDistance = 1e-3
)

// PointToPoint holds one pivot of each body at the same world position,
// approximating a ball joint. Pivots are expressed in each body's local frame.
type PointToPoint struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	PivotA mgl64.Vec3
	PivotB mgl64.Vec3

	// Compliance is the inverse stiffness (m/N), 0 means perfectly rigid
	Compliance float64
	// Damping reduces the relative velocity of the pivots, in 1/s
	Damping float64
	// CollideConnected lets the contact pipeline generate contacts between BodyA and BodyB
	CollideConnected bool
}

// NewPointToPoint creates a joint with the default compliance
func NewPointToPoint(bodyA *actor.RigidBody, pivotA mgl64.Vec3, bodyB *actor.RigidBody, pivotB mgl64.Vec3) *PointToPoint {
	return &PointToPoint{
		BodyA:      bodyA,
		BodyB:      bodyB,
		PivotA:     pivotA,
		PivotB:     pivotB,
		Compliance: DefaultJointCompliance,
	}
}

// WorldPivots returns the pivots in world space
func (j *PointToPoint) WorldPivots() (mgl64.Vec3, mgl64.Vec3) {
	return j.BodyA.Transform.ToWorld(j.PivotA), j.BodyB.Transform.ToWorld(j.PivotB)
}

// Error is the distance between both world pivots
func (j *PointToPoint) Error() float64 {
	a, b := j.WorldPivots()
	return b.Sub(a).Len()
}

// SolvePosition moves both pivots toward each other (XPBD positional constraint)
func (j *PointToPoint) SolvePosition(dt float64) {
	bodyA := j.BodyA
	bodyB := j.BodyB
	if bodyA.IsSleeping && bodyB.IsSleeping {
		return
	}

	unlock := lockPair(bodyA, bodyB)
	defer unlock()

	rA := bodyA.Transform.Rotation.Rotate(j.PivotA)
	rB := bodyB.Transform.Rotation.Rotate(j.PivotB)
	delta := bodyA.Transform.Position.Add(rA).Sub(bodyB.Transform.Position.Add(rB))

	c := delta.Len()
	if c <= 1e-10 {
		return
	}
	// n points from pivot B toward pivot A
	n := delta.Mul(1.0 / c)

	weight := pointWeight(bodyA, rA, n) + pointWeight(bodyB, rB, n)
	if weight <= 1e-12 {
		return
	}

	if c > jointWakeDistance {
		if bodyA.IsSleeping && bodyA.BodyType != actor.BodyTypeStatic {
			bodyA.Awake()
		}
		if bodyB.IsSleeping && bodyB.BodyType != actor.BodyTypeStatic {
			bodyB.Awake()
		}
	}

	alphaTilde := j.Compliance / (dt * dt)
	deltaLambda := -c / (weight + alphaTilde)
	p := n.Mul(deltaLambda)

	if bodyA.BodyType != actor.BodyTypeStatic && !bodyA.IsSleeping {
		bodyA.Transform.Position = bodyA.Transform.Position.Add(p.Mul(bodyA.InverseMass()))
		bodyA.ApplyRotation(bodyA.GetInverseInertiaWorld().Mul3x1(rA.Cross(p)))
	}
	if bodyB.BodyType != actor.BodyTypeStatic && !bodyB.IsSleeping {
		bodyB.Transform.Position = bodyB.Transform.Position.Sub(p.Mul(bodyB.InverseMass()))
		bodyB.ApplyRotation(bodyB.GetInverseInertiaWorld().Mul3x1(rB.Cross(p.Mul(-1))))
	}
}

// SolveVelocity damps the relative velocity of both pivots
func (j *PointToPoint) SolveVelocity(dt float64) {
	if j.Damping <= 0 {
		return
	}

	bodyA := j.BodyA
	bodyB := j.BodyB
	if bodyA.IsSleeping && bodyB.IsSleeping {
		return
	}

	unlock := lockPair(bodyA, bodyB)
	defer unlock()

	rA := bodyA.Transform.Rotation.Rotate(j.PivotA)
	rB := bodyB.Transform.Rotation.Rotate(j.PivotB)
	relativeVel := bodyB.Velocity.Add(bodyB.AngularVelocity.Cross(rB)).
		Sub(bodyA.Velocity.Add(bodyA.AngularVelocity.Cross(rA)))

	speed := relativeVel.Len()
	if speed <= 1e-9 {
		return
	}
	n := relativeVel.Mul(1.0 / speed)

	weight := pointWeight(bodyA, rA, n) + pointWeight(bodyB, rB, n)
	if weight <= 1e-12 {
		return
	}

	// Impulse that removes min(damping*dt, 1) of the relative velocity
	impulse := n.Mul(-speed * min(j.Damping*dt, 1.0) / weight)

	bodyA.Velocity = bodyA.Velocity.Sub(impulse.Mul(bodyA.InverseMass()))
	bodyB.Velocity = bodyB.Velocity.Add(impulse.Mul(bodyB.InverseMass()))
	bodyA.AngularVelocity = bodyA.AngularVelocity.Add(bodyA.GetInverseInertiaWorld().Mul3x1(rA.Cross(impulse.Mul(-1))))
	bodyB.AngularVelocity = bodyB.AngularVelocity.Add(bodyB.GetInverseInertiaWorld().Mul3x1(rB.Cross(impulse)))
}
