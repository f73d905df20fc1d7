package spine

import (
	"math"
	"testing"

	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

func newSphere(position mgl64.Vec3, radius, mass float64) *actor.RigidBody {
	return actor.NewRigidBodyWithMass(actor.NewTransformAt(position), &actor.Sphere{Radius: radius}, mass)
}

func newGround(height float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransform(),
		&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: -height},
		actor.BodyTypeStatic,
		0,
	)
}

// =============================================================================
// Bodies and joints
// =============================================================================

func TestWorld_AddBodyAssignsIDs(t *testing.T) {
	world := NewWorld(mgl64.Vec3{0, -9.8, 0})
	a := newSphere(mgl64.Vec3{}, 1, 1)
	b := newSphere(mgl64.Vec3{}, 1, 1)

	world.AddBody(a)
	world.AddBody(b)

	if a.ID == 0 || b.ID == 0 || a.ID == b.ID {
		t.Errorf("IDs should be unique and non zero, got %d and %d", a.ID, b.ID)
	}
	if len(world.Bodies) != 2 {
		t.Errorf("len(Bodies) = %d, want 2", len(world.Bodies))
	}
}

func TestWorld_RemoveBodyDropsJoints(t *testing.T) {
	world := NewWorld(mgl64.Vec3{})
	a := newSphere(mgl64.Vec3{0, 0, 0}, 0.25, 0)
	b := newSphere(mgl64.Vec3{0, -1, 0}, 0.25, 1)
	c := newSphere(mgl64.Vec3{0, -2, 0}, 0.25, 1)
	for _, body := range []*actor.RigidBody{a, b, c} {
		world.AddBody(body)
	}
	world.AddJoint(constraint.NewPointToPoint(a, mgl64.Vec3{}, b, mgl64.Vec3{}))
	world.AddJoint(constraint.NewPointToPoint(b, mgl64.Vec3{}, c, mgl64.Vec3{}))

	world.RemoveBody(c)

	if len(world.Bodies) != 2 {
		t.Errorf("len(Bodies) = %d, want 2", len(world.Bodies))
	}
	if len(world.Joints) != 1 || world.Joints[0].BodyB != b {
		t.Errorf("only the a-b joint should remain, got %d joints", len(world.Joints))
	}

	// Removing an unknown body is a no-op
	world.RemoveBody(newSphere(mgl64.Vec3{}, 1, 1))
	if len(world.Bodies) != 2 {
		t.Errorf("len(Bodies) = %d after removing an unknown body", len(world.Bodies))
	}
}

// =============================================================================
// Step
// =============================================================================

func TestWorld_Step_FreeFall(t *testing.T) {
	world := NewWorld(mgl64.Vec3{0, -9.8, 0})
	body := newSphere(mgl64.Vec3{0, 10, 0}, 0.5, 1)
	world.AddBody(body)

	world.Step(0.1)

	if math.Abs(body.Velocity.Y()+0.98) > 1e-6 {
		t.Errorf("Velocity.Y = %v, want -0.98", body.Velocity.Y())
	}
	if body.Transform.Position.Y() >= 10 {
		t.Errorf("body did not fall: %v", body.Transform.Position)
	}
}

func TestWorld_Step_NonPositiveDtIsNoop(t *testing.T) {
	world := NewWorld(mgl64.Vec3{0, -9.8, 0})
	body := newSphere(mgl64.Vec3{0, 10, 0}, 0.5, 1)
	world.AddBody(body)

	world.Step(0)
	world.Step(-1)

	if body.Transform.Position.Y() != 10 {
		t.Errorf("body moved to %v", body.Transform.Position)
	}
}

func TestWorld_Step_ForceActsOverWholeStep(t *testing.T) {
	const dt = 1.0 / 60.0

	tests := []struct {
		name     string
		substeps int
	}{
		{"single substep", 1},
		{"four substeps", 4},
		{"default substeps", DEFAULT_SUBSTEPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld(mgl64.Vec3{})
			world.Substeps = tt.substeps
			body := newSphere(mgl64.Vec3{}, 0.5, 0.3)
			world.AddBody(body)

			body.AddForce(mgl64.Vec3{30, 0, 0})
			world.Step(dt)

			// dv = F/m * dt
			if want := 30 / 0.3 * dt; math.Abs(body.Velocity.X()-want) > 1e-9 {
				t.Errorf("Velocity.X = %v, want %v", body.Velocity.X(), want)
			}
			if body.AccumulatedForce() != (mgl64.Vec3{}) {
				t.Errorf("force should be cleared after the step, got %v", body.AccumulatedForce())
			}

			// Without a new push the body keeps its velocity
			world.Step(dt)
			if want := 30 / 0.3 * dt; math.Abs(body.Velocity.X()-want) > 1e-9 {
				t.Errorf("Velocity.X = %v after a free step, want %v", body.Velocity.X(), want)
			}
		})
	}
}

func TestWorld_Step_RestsOnGround(t *testing.T) {
	world := NewWorld(mgl64.Vec3{0, -9.8, 0})
	world.AddBody(newGround(0))
	ball := newSphere(mgl64.Vec3{0, 2, 0}, 0.5, 1)
	world.AddBody(ball)

	for i := 0; i < 240; i++ {
		world.Step(1.0 / 60.0)
	}

	if math.Abs(ball.Transform.Position.Y()-0.5) > 0.02 {
		t.Errorf("ball Y = %v, want about 0.5", ball.Transform.Position.Y())
	}
}

func TestWorld_Step_HangingChainHoldsTogether(t *testing.T) {
	world := NewWorld(mgl64.Vec3{0, -9.8, 0})

	var bodies []*actor.RigidBody
	for i := 0; i < 5; i++ {
		mass := 0.3
		if i == 0 {
			mass = 0
		}
		body := newSphere(mgl64.Vec3{0, -0.6 * float64(i), 0}, 0.15, mass)
		world.AddBody(body)
		bodies = append(bodies, body)

		if i > 0 {
			half := mgl64.Vec3{0, 0.3, 0}
			world.AddJoint(constraint.NewPointToPoint(bodies[i-1], half.Mul(-1), body, half))
		}
	}
	bodies[4].AddForce(mgl64.Vec3{30, 0, 0})

	for i := 0; i < 120; i++ {
		world.Step(1.0 / 60.0)
	}

	for i, joint := range world.Joints {
		if joint.Error() > 0.01 {
			t.Errorf("joint %d error = %v, want < 0.01", i, joint.Error())
		}
	}
	if bodies[0].Transform.Position != (mgl64.Vec3{}) {
		t.Errorf("anchor moved to %v", bodies[0].Transform.Position)
	}
}

func TestWorld_Step_ConnectedBodiesDoNotCollide(t *testing.T) {
	world := NewWorld(mgl64.Vec3{})
	a := newSphere(mgl64.Vec3{0, 0, 0}, 0.5, 0)
	b := newSphere(mgl64.Vec3{0, -0.5, 0}, 0.5, 1)
	world.AddBody(a)
	world.AddBody(b)

	joint := constraint.NewPointToPoint(a, mgl64.Vec3{0, -0.25, 0}, b, mgl64.Vec3{0, 0.25, 0})
	world.AddJoint(joint)

	var entered int
	world.Events.Subscribe(COLLISION_ENTER, func(Event) { entered++ })
	world.Step(1.0 / 60.0)

	if entered != 0 {
		t.Errorf("jointed bodies produced %d collision events", entered)
	}

	joint.CollideConnected = true
	world.Step(1.0 / 60.0)
	if entered != 1 {
		t.Errorf("CollideConnected joint should let the pair collide, got %d events", entered)
	}
}

func TestWorld_Step_Workers(t *testing.T) {
	build := func(workers int) *World {
		world := NewWorld(mgl64.Vec3{0, -9.8, 0})
		world.Workers = workers
		world.AddBody(newGround(0))
		for i := 0; i < 8; i++ {
			world.AddBody(newSphere(mgl64.Vec3{float64(i) * 2, 1 + float64(i)*0.1, 0}, 0.5, 1))
		}
		return world
	}

	single := build(1)
	parallel := build(4)
	for i := 0; i < 30; i++ {
		single.Step(1.0 / 60.0)
		parallel.Step(1.0 / 60.0)
	}

	for i := range single.Bodies {
		a, b := single.Bodies[i].Transform.Position, parallel.Bodies[i].Transform.Position
		if a.Sub(b).Len() > 1e-9 {
			t.Errorf("body %d: %v with 1 worker, %v with 4", i, a, b)
		}
	}
}

// =============================================================================
// StepFixed
// =============================================================================

func TestWorld_StepFixed(t *testing.T) {
	const fixed = 1.0 / 60.0

	tests := []struct {
		name            string
		elapsed         []float64
		maxSubsteps     int
		wantSteps       []int
		wantAccumulated float64
	}{
		{"exact frame", []float64{fixed}, 1, []int{1}, 0},
		{"short frames accumulate", []float64{fixed / 2, fixed / 2}, 1, []int{0, 1}, 0},
		{"catch up within budget", []float64{2.5 * fixed}, 3, []int{2}, 0.5 * fixed},
		{"backlog dropped", []float64{3.5 * fixed}, 1, []int{1}, 0.5 * fixed},
		{"no time", []float64{0}, 1, []int{0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld(mgl64.Vec3{0, -9.8, 0})
			world.AddBody(newSphere(mgl64.Vec3{}, 0.5, 1))

			for i, elapsed := range tt.elapsed {
				if got := world.StepFixed(fixed, elapsed, tt.maxSubsteps); got != tt.wantSteps[i] {
					t.Errorf("call %d: StepFixed() = %d, want %d", i, got, tt.wantSteps[i])
				}
			}
			if math.Abs(world.Accumulator()-tt.wantAccumulated) > 1e-9 {
				t.Errorf("Accumulator() = %v, want %v", world.Accumulator(), tt.wantAccumulated)
			}
		})
	}
}

// =============================================================================
// Sleep
// =============================================================================

func TestWorld_Step_SleepAndWake(t *testing.T) {
	world := NewWorld(mgl64.Vec3{})
	body := newSphere(mgl64.Vec3{}, 0.5, 1)
	world.AddBody(body)

	var slept, woke int
	world.Events.Subscribe(ON_SLEEP, func(Event) { slept++ })
	world.Events.Subscribe(ON_WAKE, func(Event) { woke++ })

	for i := 0; i < 60; i++ {
		world.Step(1.0 / 60.0)
	}
	if !body.IsSleeping || slept != 1 {
		t.Fatalf("body should sleep once at rest, IsSleeping=%v events=%d", body.IsSleeping, slept)
	}

	body.AddForce(mgl64.Vec3{10, 0, 0})
	world.Step(1.0 / 60.0)
	if body.IsSleeping || woke != 1 {
		t.Errorf("a force should wake the body, IsSleeping=%v events=%d", body.IsSleeping, woke)
	}
}

func TestWorld_Step_AllowSleepFalse(t *testing.T) {
	world := NewWorld(mgl64.Vec3{})
	world.AllowSleep = false
	body := newSphere(mgl64.Vec3{}, 0.5, 1)
	world.AddBody(body)

	for i := 0; i < 60; i++ {
		world.Step(1.0 / 60.0)
	}

	if body.IsSleeping {
		t.Error("body should never sleep when AllowSleep is false")
	}
}

func TestWorld_Step_StaticBodiesNeverSleep(t *testing.T) {
	world := NewWorld(mgl64.Vec3{})
	anchor := newSphere(mgl64.Vec3{}, 0.5, 0)
	ground := newGround(-5)
	ball := newSphere(mgl64.Vec3{3, 0, 0}, 0.5, 1)
	for _, body := range []*actor.RigidBody{anchor, ground, ball} {
		world.AddBody(body)
	}

	var slept []*actor.RigidBody
	world.Events.Subscribe(ON_SLEEP, func(event Event) {
		slept = append(slept, event.(SleepEvent).Body)
	})

	for i := 0; i < 60; i++ {
		world.Step(1.0 / 60.0)
	}

	if anchor.IsSleeping || ground.IsSleeping {
		t.Error("static bodies should stay out of the sleep cycle")
	}
	if len(slept) != 1 || slept[0] != ball {
		t.Errorf("only the ball should report sleeping, got %d events", len(slept))
	}
}
