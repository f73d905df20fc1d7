package actor

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g. the anchor vertebra, the ground)
	BodyTypeStatic
)

type Material struct {
	Density     float64
	mass        float64
	Restitution float64 // 0 = no rebound, 1 = perfect restitution

	StaticFriction  float64
	DynamicFriction float64
	LinearDamping   float64 // 0.0 - 1.0, typical: 0.01
	AngularDamping  float64 // 0.0 - 1.0, typical: 0.05
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// ID is assigned by the world, 0 means the body was never added
	ID   uint64
	Name string

	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion
	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3 // Linear velocity (m/s)

	// Angular motion
	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3 // rad/s
	InertiaLocal            mgl64.Mat3
	InverseInertiaLocal     mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64

	// Physical properties
	Material Material
	BodyType BodyType // Dynamic or Static

	// Collision shape
	Shape ShapeInterface

	// Mutex guards the transform and velocities while constraints are solved in parallel
	Mutex sync.Mutex
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static)
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, density float64) *RigidBody {
	if bodyType == BodyTypeStatic {
		return newRigidBody(transform, shape, bodyType, Material{mass: math.Inf(1)})
	}

	return newRigidBody(transform, shape, bodyType, Material{
		Density: density,
		mass:    shape.ComputeMass(density),
	})
}

// NewRigidBodyWithMass creates a body from an explicit mass.
// A mass lower or equal to zero creates a static body.
func NewRigidBodyWithMass(transform Transform, shape ShapeInterface, mass float64) *RigidBody {
	if mass <= 0 {
		return newRigidBody(transform, shape, BodyTypeStatic, Material{mass: math.Inf(1)})
	}

	return newRigidBody(transform, shape, BodyTypeDynamic, Material{mass: mass})
}

func newRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, material Material) *RigidBody {
	if transform.Rotation.Len() == 0 {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.InverseRotation = transform.Rotation.Inverse()

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		Material:          material,
	}

	if bodyType == BodyTypeDynamic {
		rb.InertiaLocal = shape.ComputeInertia(rb.Material.mass)
		rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
	}
	rb.Shape.ComputeAABB(rb.Transform)

	return rb
}

// InverseMass returns 0 for static bodies
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType == BodyTypeStatic {
		return 0
	}

	return 1.0 / rb.Material.mass
}

func (rb *RigidBody) TrySleep(dt float64, timethreshold float64, velocityThreshold float64) {
	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold && rb.accumulatedForce.Len() == 0 {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timethreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		rb.ClearForces()
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.Rotation = rb.Transform.Rotation

	// Linear: v += (g + F/m) * dt
	acceleration := gravity.Add(rb.accumulatedForce.Mul(rb.InverseMass()))
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	// Angular: w += I^-1 * T * dt
	angularAccel := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()

	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity

	rb.Shape.ComputeAABB(rb.Transform)
}

func (rb *RigidBody) Update(dt float64) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	// Commit predicted position to actual position
	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / dt)
	qDelta := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate())
	qDelta = qDelta.Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}

	rb.Shape.ComputeAABB(rb.Transform)
}

// AddForce applies a force (N) at the center of mass until ClearForces
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.Awake()

	rb.accumulatedForce = rb.accumulatedForce.Add(force)
}

// AddForceAtPoint applies a force (N) at a world space point, producing a torque
// around the center of mass
func (rb *RigidBody) AddForceAtPoint(force, point mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}

	rb.AddForce(force)
	rb.accumulatedTorque = rb.accumulatedTorque.Add(point.Sub(rb.Transform.Position).Cross(force))
}

// AddTorque in N⋅m
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.Awake()

	rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
}

// AccumulatedForce returns the force applied since the last ClearForces
func (rb *RigidBody) AccumulatedForce() mgl64.Vec3 {
	return rb.accumulatedForce
}

// AccumulatedTorque returns the torque applied since the last ClearForces
func (rb *RigidBody) AccumulatedTorque() mgl64.Vec3 {
	return rb.accumulatedTorque
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// GetInertiaWorld returns I_world = R * I_local * R^T
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns I_world^-1 = R * I_local^-1 * R^T
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType == BodyTypeStatic {
		return mgl64.Mat3{}
	}

	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// ApplyRotation rotates the body by a small world space rotation vector
func (rb *RigidBody) ApplyRotation(rotation mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rotation.Len() <= 1e-12 {
		return
	}

	qDelta := mgl64.Quat{W: 0, V: rotation}.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDelta).Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
}
