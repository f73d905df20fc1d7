package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/spine/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// createTestContact builds a static floor A under a unit sphere B sinking by penetration
func createTestContact(penetration float64) (*ContactConstraint, *actor.RigidBody, *actor.RigidBody) {
	floor := actor.NewRigidBody(
		actor.NewTransform(),
		&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}},
		actor.BodyTypeStatic,
		0,
	)
	ball := actor.NewRigidBodyWithMass(actor.NewTransformAt(mgl64.Vec3{0, 1 - penetration, 0}), &actor.Sphere{Radius: 1}, 1)

	contact := &ContactConstraint{
		BodyA:  floor,
		BodyB:  ball,
		Normal: mgl64.Vec3{0, 1, 0},
		Points: []ContactPoint{{Position: mgl64.Vec3{0, -penetration, 0}, Penetration: penetration}},
	}

	return contact, floor, ball
}

func TestContactConstraint_SolvePosition_NoPenetration(t *testing.T) {
	contact, _, ball := createTestContact(0)
	before := ball.Transform.Position

	contact.SolvePosition(1.0 / 60.0)

	if ball.Transform.Position != before {
		t.Errorf("ball moved from %v to %v without penetration", before, ball.Transform.Position)
	}
}

func TestContactConstraint_SolvePosition_WithPenetration(t *testing.T) {
	contact, floor, ball := createTestContact(0.1)

	contact.SolvePosition(1.0 / 60.0)

	if math.Abs(ball.Transform.Position.Y()-1.0) > 1e-3 {
		t.Errorf("ball Y = %v, want about 1.0", ball.Transform.Position.Y())
	}
	if floor.Transform.Position != (mgl64.Vec3{}) {
		t.Errorf("static floor moved to %v", floor.Transform.Position)
	}
}

func TestContactConstraint_SolvePosition_WakesSleepingBody(t *testing.T) {
	contact, _, ball := createTestContact(0.1)
	ball.Sleep()

	contact.SolvePosition(1.0 / 60.0)

	if ball.IsSleeping {
		t.Error("penetrating contact should wake the ball")
	}
}

func TestContactConstraint_SolvePosition_EqualMasses(t *testing.T) {
	a := actor.NewRigidBodyWithMass(actor.NewTransformAt(mgl64.Vec3{-0.45, 0, 0}), &actor.Sphere{Radius: 0.5}, 1)
	b := actor.NewRigidBodyWithMass(actor.NewTransformAt(mgl64.Vec3{0.45, 0, 0}), &actor.Sphere{Radius: 0.5}, 1)
	contact := &ContactConstraint{
		BodyA:  a,
		BodyB:  b,
		Normal: mgl64.Vec3{1, 0, 0},
		Points: []ContactPoint{{Position: mgl64.Vec3{}, Penetration: 0.1}},
	}

	contact.SolvePosition(1.0 / 60.0)

	if math.Abs(a.Transform.Position.X()+b.Transform.Position.X()) > 1e-9 {
		t.Errorf("equal masses should move symmetrically: %v, %v", a.Transform.Position, b.Transform.Position)
	}
	if b.Transform.Position.X()-a.Transform.Position.X() < 0.999 {
		t.Errorf("bodies still overlap: %v, %v", a.Transform.Position, b.Transform.Position)
	}
}

func TestContactConstraint_SolveVelocity(t *testing.T) {
	tests := []struct {
		name        string
		velocity    mgl64.Vec3
		restitution float64
		wantY       float64
	}{
		{"approaching stops", mgl64.Vec3{0, -1, 0}, 0, 0},
		{"approaching bounces", mgl64.Vec3{0, -1, 0}, 1, 1},
		{"half bounce", mgl64.Vec3{0, -2, 0}, 0.5, 1},
		{"separating untouched", mgl64.Vec3{0, 1, 0}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contact, floor, ball := createTestContact(0.01)
			floor.Material.Restitution = tt.restitution
			ball.Material.Restitution = tt.restitution
			ball.Velocity = tt.velocity
			ball.PresolveVelocity = tt.velocity

			contact.SolveVelocity(1.0 / 60.0)

			if math.Abs(ball.Velocity.Y()-tt.wantY) > 1e-9 {
				t.Errorf("Velocity.Y = %v, want %v", ball.Velocity.Y(), tt.wantY)
			}
		})
	}
}

func TestContactConstraint_SolveVelocity_Friction(t *testing.T) {
	contact, floor, ball := createTestContact(0.01)
	floor.Material.StaticFriction, floor.Material.DynamicFriction = 1, 1
	ball.Material.StaticFriction, ball.Material.DynamicFriction = 1, 1
	ball.Velocity = mgl64.Vec3{0.1, -1, 0}
	ball.PresolveVelocity = ball.Velocity

	contact.SolveVelocity(1.0 / 60.0)

	if math.Abs(ball.Velocity.X()) >= 0.1 {
		t.Errorf("friction should slow the tangential velocity, got %v", ball.Velocity.X())
	}
}

func TestContactConstraint_BothSleeping(t *testing.T) {
	contact, floor, ball := createTestContact(0.1)
	floor.Sleep()
	ball.Sleep()
	before := ball.Transform.Position

	contact.SolvePosition(1.0 / 60.0)
	contact.SolveVelocity(1.0 / 60.0)

	if ball.Transform.Position != before {
		t.Error("sleeping pair should be skipped")
	}
}
