package spine

import (
	"math"

	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_WORKERS  = 1
	DEFAULT_SUBSTEPS = 10

	// Bodies slower than SLEEP_VELOCITY for SLEEP_TIME seconds fall asleep
	SLEEP_TIME     = 0.5
	SLEEP_VELOCITY = 0.02
)

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Joints are solved in insertion order, before contacts
	Joints []*constraint.PointToPoint
	// Gravity acceleration (m/s², or N/kg)
	Gravity     mgl64.Vec3
	Substeps    int
	SpatialGrid *SpatialGrid
	Workers     int
	AllowSleep  bool

	Events Events

	nextID      uint64
	accumulator float64
}

// NewWorld creates a world with the default substeps and a spatial grid sized for small scenes
func NewWorld(gravity mgl64.Vec3) *World {
	return &World{
		Gravity:     gravity,
		Substeps:    DEFAULT_SUBSTEPS,
		SpatialGrid: NewSpatialGrid(1.0, 1024),
		Workers:     DEFAULT_WORKERS,
		AllowSleep:  true,
		Events:      NewEvents(),
	}
}

// AddBody adds a rigid body to the world and assigns its ID
func (w *World) AddBody(body *actor.RigidBody) {
	w.nextID++
	body.ID = w.nextID
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body and every joint attached to it
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}

	n := 0
	for _, joint := range w.Joints {
		if joint.BodyA != body && joint.BodyB != body {
			w.Joints[n] = joint
			n++
		}
	}
	clear(w.Joints[n:])
	w.Joints = w.Joints[:n]

	w.Events.init()
	w.Events.forget(body)
}

// AddJoint adds a joint between two bodies of the world
func (w *World) AddJoint(joint *constraint.PointToPoint) {
	w.Joints = append(w.Joints, joint)
}

// Step advances the simulation by dt seconds, split in Substeps
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	w.Substeps = max(1, w.Substeps)
	if w.SpatialGrid == nil {
		w.SpatialGrid = NewSpatialGrid(1.0, 1024)
	}
	w.Events.init()

	h := dt / float64(w.Substeps)
	skip := w.connectedPairs()

	for range w.Substeps {
		w.integrate(h)

		contacts := w.detectCollision(skip)
		w.Events.recordCollisions(contacts)

		// Only one iteration is required thanks to substeps
		w.solvePosition(h, contacts)
		w.update(h)
		w.solveVelocity(h, contacts)

		if w.AllowSleep {
			w.trySleep(h)
		}
	}
	w.clearForces()

	w.Events.processSleepEvents(w.Bodies)
	w.Events.flush()
}

// StepFixed advances the world by whole fixedDt steps using the elapsed wall-clock
// time. Time that does not fill a step is carried to the next call; when
// maxSubsteps is exhausted the remaining backlog is dropped. It returns the
// number of steps performed.
func (w *World) StepFixed(fixedDt, elapsed float64, maxSubsteps int) int {
	if fixedDt <= 0 || elapsed <= 0 {
		return 0
	}
	maxSubsteps = max(1, maxSubsteps)

	w.accumulator += elapsed
	steps := 0
	for w.accumulator >= fixedDt && steps < maxSubsteps {
		w.Step(fixedDt)
		w.accumulator -= fixedDt
		steps++
	}

	if steps == maxSubsteps {
		w.accumulator = math.Mod(w.accumulator, fixedDt)
	}

	return steps
}

// Accumulator returns the time carried over to the next StepFixed call
func (w *World) Accumulator() float64 {
	return w.accumulator
}

// connectedPairs returns the filter excluding jointed bodies from contact generation
func (w *World) connectedPairs() func(a, b *actor.RigidBody) bool {
	if len(w.Joints) == 0 {
		return nil
	}

	pairs := make(map[pairKey]bool, len(w.Joints))
	for _, joint := range w.Joints {
		if !joint.CollideConnected {
			pairs[makePairKey(joint.BodyA, joint.BodyB)] = true
		}
	}

	return func(a, b *actor.RigidBody) bool {
		return pairs[makePairKey(a, b)]
	}
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

func (w *World) detectCollision(skip func(a, b *actor.RigidBody) bool) []*constraint.ContactConstraint {
	return NarrowPhase(BroadPhase(w.SpatialGrid, w.Bodies, w.Workers, skip), w.Workers)
}

// solvePosition runs joints sequentially so corrections propagate down the chain
func (w *World) solvePosition(h float64, contacts []*constraint.ContactConstraint) {
	for _, joint := range w.Joints {
		joint.SolvePosition(h)
	}

	task(w.Workers, contacts, func(contact *constraint.ContactConstraint) {
		contact.SolvePosition(h)
	})
}

func (w *World) update(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Update(h)
	})
}

func (w *World) solveVelocity(h float64, contacts []*constraint.ContactConstraint) {
	for _, joint := range w.Joints {
		joint.SolveVelocity(h)
	}

	task(w.Workers, contacts, func(contact *constraint.ContactConstraint) {
		contact.SolveVelocity(h)
	})
}

// trySleep is too cheap per body to be worth a task. Static bodies never move,
// so they are left out.
func (w *World) trySleep(h float64) {
	for _, body := range w.Bodies {
		if body.BodyType == actor.BodyTypeStatic {
			continue
		}
		body.TrySleep(h, SLEEP_TIME, SLEEP_VELOCITY)
	}
}

// clearForces drops the forces applied for this step, they act over all of its substeps
func (w *World) clearForces() {
	for _, body := range w.Bodies {
		body.ClearForces()
	}
}
