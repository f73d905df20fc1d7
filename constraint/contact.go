package constraint

import (
	"math"

	"github.com/akmonengine/spine/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCompliance controls soft constraint stiffness for contact resolution.
	// Lower values = stiffer contacts (less penetration, potential jitter)
	// Higher values = softer contacts (more penetration, smoother)
	// Typical range: 1e-10 (very stiff) to 1e-6 (soft)
	DefaultCompliance = 1e-7

	// penetrationSlop is ignored to keep resting contacts quiet
	penetrationSlop = 1e-8
)

type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

// ContactConstraint pushes BodyB away from BodyA along Normal
type ContactConstraint struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Points []ContactPoint
	// Normal points from BodyA toward BodyB
	Normal mgl64.Vec3
}

// pointWeight is the generalized inverse mass of a body at lever arm r along n
func pointWeight(body *actor.RigidBody, r, n mgl64.Vec3) float64 {
	rn := r.Cross(n)
	return body.InverseMass() + body.GetInverseInertiaWorld().Mul3x1(rn).Dot(rn)
}

// SolvePosition resolves penetration with a single XPBD correction for the whole manifold
func (c *ContactConstraint) SolvePosition(dt float64) {
	if len(c.Points) == 0 {
		return
	}
	if c.BodyA.IsSleeping && c.BodyB.IsSleeping {
		return
	}

	bodyA := c.BodyA
	bodyB := c.BodyB

	unlock := lockPair(bodyA, bodyB)
	defer unlock()

	var totalWeight, totalPenetration float64
	var torqueArmA, torqueArmB mgl64.Vec3
	for _, point := range c.Points {
		if point.Penetration <= penetrationSlop {
			continue
		}

		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)
		totalWeight += pointWeight(bodyA, rA, c.Normal) + pointWeight(bodyB, rB, c.Normal)
		totalPenetration += point.Penetration

		torqueArmA = torqueArmA.Add(rA)
		torqueArmB = torqueArmB.Add(rB)
	}

	if totalWeight <= 1e-8 {
		return
	}

	// A moving body pushes a sleeping one awake
	if bodyA.IsSleeping && bodyA.BodyType != actor.BodyTypeStatic {
		bodyA.Awake()
	}
	if bodyB.IsSleeping && bodyB.BodyType != actor.BodyTypeStatic {
		bodyB.Awake()
	}

	alphaTilde := DefaultCompliance / (dt * dt)
	deltaLambda := -totalPenetration / (totalWeight + alphaTilde)
	impulse := c.Normal.Mul(deltaLambda)

	if bodyA.BodyType != actor.BodyTypeStatic {
		bodyA.Transform.Position = bodyA.Transform.Position.Add(impulse.Mul(bodyA.InverseMass()))
		bodyA.ApplyRotation(bodyA.GetInverseInertiaWorld().Mul3x1(torqueArmA.Cross(impulse)))
	}
	if bodyB.BodyType != actor.BodyTypeStatic {
		bodyB.Transform.Position = bodyB.Transform.Position.Sub(impulse.Mul(bodyB.InverseMass()))
		bodyB.ApplyRotation(bodyB.GetInverseInertiaWorld().Mul3x1(torqueArmB.Cross(impulse.Mul(-1))))
	}
}

// SolveVelocity applies restitution and Coulomb friction
func (c *ContactConstraint) SolveVelocity(dt float64) {
	if len(c.Points) == 0 {
		return
	}
	if c.BodyA.IsSleeping && c.BodyB.IsSleeping {
		return
	}

	bodyA := c.BodyA
	bodyB := c.BodyB

	unlock := lockPair(bodyA, bodyB)
	defer unlock()

	invMassA := bodyA.InverseMass()
	invMassB := bodyB.InverseMass()
	IAInv := bodyA.GetInverseInertiaWorld()
	IBInv := bodyB.GetInverseInertiaWorld()

	restitution := ComputeRestitution(bodyA.Material, bodyB.Material)
	staticFriction := ComputeStaticFriction(bodyA.Material, bodyB.Material)
	dynamicFriction := ComputeDynamicFriction(bodyA.Material, bodyB.Material)

	var linearA, linearB, angularA, angularB mgl64.Vec3
	apply := func(impulse, rA, rB mgl64.Vec3) {
		linearA = linearA.Sub(impulse.Mul(invMassA))
		linearB = linearB.Add(impulse.Mul(invMassB))
		angularA = angularA.Add(IAInv.Mul3x1(rA.Cross(impulse.Mul(-1))))
		angularB = angularB.Add(IBInv.Mul3x1(rB.Cross(impulse)))
	}

	for _, point := range c.Points {
		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)

		relativeVel := bodyB.Velocity.Add(bodyB.AngularVelocity.Cross(rB)).
			Sub(bodyA.Velocity.Add(bodyA.AngularVelocity.Cross(rA)))
		normalVel := relativeVel.Dot(c.Normal)

		relativeVelPrev := bodyB.PresolveVelocity.Add(bodyB.PresolveAngularVelocity.Cross(rB)).
			Sub(bodyA.PresolveVelocity.Add(bodyA.PresolveAngularVelocity.Cross(rA)))
		normalVelPrev := relativeVelPrev.Dot(c.Normal)

		effectiveMassNormal := pointWeight(bodyA, rA, c.Normal) + pointWeight(bodyB, rB, c.Normal)
		if effectiveMassNormal < 1e-10 {
			continue
		}

		// Never pull the bodies together
		lambdaNormal := math.Max(0, (-restitution*normalVelPrev-normalVel)/effectiveMassNormal)
		apply(c.Normal.Mul(lambdaNormal), rA, rB)

		if lambdaNormal == 0 {
			continue
		}

		tangentVel := relativeVel.Sub(c.Normal.Mul(normalVel))
		tangentSpeed := tangentVel.Len()
		if tangentSpeed <= 1e-6 {
			continue
		}
		tangentDir := tangentVel.Mul(1.0 / tangentSpeed)

		effectiveMassTangent := pointWeight(bodyA, rA, tangentDir) + pointWeight(bodyB, rB, tangentDir)
		if effectiveMassTangent < 1e-10 {
			continue
		}

		// Coulomb: |F_friction| <= mu * |F_normal|
		lambdaTangent := -tangentSpeed / effectiveMassTangent
		if math.Abs(lambdaTangent) <= staticFriction*lambdaNormal {
			apply(tangentDir.Mul(lambdaTangent), rA, rB)
		} else {
			apply(tangentDir.Mul(-dynamicFriction*lambdaNormal), rA, rB)
		}
	}

	bodyA.Velocity = bodyA.Velocity.Add(linearA)
	bodyB.Velocity = bodyB.Velocity.Add(linearB)
	bodyA.AngularVelocity = bodyA.AngularVelocity.Add(angularA)
	bodyB.AngularVelocity = bodyB.AngularVelocity.Add(angularB)

	clampSmallVelocities(bodyA)
	clampSmallVelocities(bodyB)
}
