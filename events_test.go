package spine

import (
	"testing"

	"github.com/akmonengine/spine/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{COLLISION_ENTER, "collision-enter"},
		{COLLISION_STAY, "collision-stay"},
		{COLLISION_EXIT, "collision-exit"},
		{ON_SLEEP, "sleep"},
		{ON_WAKE, "wake"},
		{EventType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.eventType.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.eventType, got, tt.want)
		}
	}
}

func TestMakePairKey_Ordered(t *testing.T) {
	a := newSphere(mgl64.Vec3{}, 1, 1)
	b := newSphere(mgl64.Vec3{}, 1, 1)
	a.ID, b.ID = 1, 2

	if makePairKey(a, b) != makePairKey(b, a) {
		t.Error("pair key should not depend on argument order")
	}
}

// =============================================================================
// Collision events
// =============================================================================

func TestEvents_CollisionLifecycle(t *testing.T) {
	world := NewWorld(mgl64.Vec3{})
	world.AllowSleep = false
	a := newSphere(mgl64.Vec3{0, 0, 0}, 0.5, 0)
	b := newSphere(mgl64.Vec3{2, 0, 0}, 0.5, 1)
	world.AddBody(a)
	world.AddBody(b)

	var got []EventType
	for _, eventType := range []EventType{COLLISION_ENTER, COLLISION_STAY, COLLISION_EXIT} {
		world.Events.Subscribe(eventType, func(event Event) { got = append(got, event.Type()) })
	}

	// Apart
	world.Step(1.0 / 60.0)
	// Overlapping twice
	b.Transform.Position = mgl64.Vec3{0.8, 0, 0}
	b.Shape.ComputeAABB(b.Transform)
	world.Step(1.0 / 60.0)
	b.Transform.Position = mgl64.Vec3{0.8, 0, 0}
	b.Velocity = mgl64.Vec3{}
	world.Step(1.0 / 60.0)
	// Apart again
	b.Transform.Position = mgl64.Vec3{5, 0, 0}
	b.Velocity = mgl64.Vec3{}
	world.Step(1.0 / 60.0)

	want := []EventType{COLLISION_ENTER, COLLISION_STAY, COLLISION_EXIT}
	if len(got) != len(want) {
		t.Fatalf("got events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEvents_CollisionEnterCarriesBodies(t *testing.T) {
	world := NewWorld(mgl64.Vec3{})
	ground := newGround(0)
	ball := newSphere(mgl64.Vec3{0, 0.4, 0}, 0.5, 1)
	world.AddBody(ground)
	world.AddBody(ball)

	var event CollisionEnterEvent
	world.Events.Subscribe(COLLISION_ENTER, func(e Event) { event = e.(CollisionEnterEvent) })
	world.Step(1.0 / 60.0)

	if event.BodyA != ground || event.BodyB != ball {
		t.Errorf("event bodies = %v, %v", event.BodyA, event.BodyB)
	}
}

// =============================================================================
// Sleep events
// =============================================================================

func TestEvents_SleepStates(t *testing.T) {
	events := NewEvents()
	body := newSphere(mgl64.Vec3{}, 1, 1)
	bodies := []*actor.RigidBody{body}

	var slept, woke int
	events.Subscribe(ON_SLEEP, func(e Event) {
		if e.(SleepEvent).Body == body {
			slept++
		}
	})
	events.Subscribe(ON_WAKE, func(e Event) {
		if e.(WakeEvent).Body == body {
			woke++
		}
	})

	// First sight only records the state
	events.processSleepEvents(bodies)
	events.flush()

	body.Sleep()
	events.processSleepEvents(bodies)
	events.flush()
	events.processSleepEvents(bodies)
	events.flush()

	body.Awake()
	events.processSleepEvents(bodies)
	events.flush()

	if slept != 1 || woke != 1 {
		t.Errorf("slept = %d, woke = %d, want 1 and 1", slept, woke)
	}
}

func TestEvents_ZeroValueSubscribe(t *testing.T) {
	var events Events

	called := false
	events.Subscribe(ON_SLEEP, func(Event) { called = true })
	events.buffer = append(events.buffer, SleepEvent{})
	events.flush()

	if !called {
		t.Error("listener registered on a zero Events should be called")
	}
}
