package main

import (
	"fmt"

	"github.com/akmonengine/spine"
	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/chain"
	"github.com/akmonengine/spine/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene hangs a column of vertebrae from its top one, above a ground plane
func SetupScene(segments int) (*spine.World, *chain.Chain, error) {
	world := spine.NewWorld(mgl64.Vec3{0, -9.8, 0})

	ground := actor.NewRigidBody(
		actor.NewTransform(),
		&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 5.0},
		actor.BodyTypeStatic,
		0.0,
	)
	ground.Name = "ground"
	world.AddBody(ground)

	opts := chain.DefaultOptions()
	opts.Pivot = chain.PivotMidpoint
	opts.JointDamping = 2.0

	c, err := chain.Build(world, mesh.Column(segments, 3.0, 0.5, 0.1).Parts, opts)
	if err != nil {
		return nil, nil, err
	}

	world.Events.Subscribe(spine.ON_SLEEP, func(event spine.Event) {
		fmt.Printf("  💤 %s fell asleep\n", event.(spine.SleepEvent).Body.Name)
	})

	return world, c, nil
}

// PushTip applies a sideways force on the last vertebra for a few steps, then
// lets the chain swing back under gravity
func PushTip() {
	fmt.Println("🧪 Hanging chain: push the tip, watch it settle")
	fmt.Println("================================================")

	world, c, err := SetupScene(8)
	if err != nil {
		fmt.Println("setup failed:", err)
		return
	}

	tip := c.Segments[len(c.Segments)-1]
	fmt.Printf("Initial setup:\n")
	fmt.Printf("  Anchor: %s at %v\n", c.Segments[0].Name(), c.Segments[0].Body.Transform.Position)
	fmt.Printf("  Tip:    %s at %v\n", tip.Name(), tip.Body.Transform.Position)
	fmt.Printf("  Joints: %d\n", len(c.Joints))
	fmt.Println()

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 240
	const pushSteps int = 30

	for step := 0; step < maxSteps; step++ {
		if step < pushSteps {
			tip.Body.AddForce(mgl64.Vec3{30, 0, 0})
		}

		world.StepFixed(dt, dt, 1)
		c.Sync(true)

		if step%30 == 29 {
			p := tip.Position
			fmt.Printf("--- STEP %d ---\n", step+1)
			fmt.Printf("  Tip position: (%.3f, %.3f, %.3f)\n", p.X(), p.Y(), p.Z())
			fmt.Printf("  Tip velocity: %.3f m/s\n", tip.Body.Velocity.Len())
			fmt.Printf("  Joint error:  %.2e\n", c.JointError())
		}
	}

	// Cast rays at the settled chain from the side, one per rest height
	fmt.Println("--- RAYS ---")
	for _, s := range c.Segments {
		origin := mgl64.Vec3{-10, s.Rest.Center.Y(), 0}
		hit, ok := world.Raycast(origin, mgl64.Vec3{1, 0, 0}, 20)
		if !ok {
			fmt.Printf("  y=%.2f: miss\n", origin.Y())
			continue
		}
		fmt.Printf("  y=%.2f: %s at %.3f\n", origin.Y(), hit.Body.Name, hit.Distance)
	}

	fmt.Println("Done!")
}

func main() {
	PushTip()
}
