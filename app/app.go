// Package app wires the world, the chain, the scene and the controller, and
// runs the per-frame loop: step, raycast, render.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/akmonengine/spine"
	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/chain"
	"github.com/akmonengine/spine/config"
	"github.com/akmonengine/spine/interaction"
	"github.com/akmonengine/spine/mesh"
	"github.com/akmonengine/spine/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Renderer draws the current state once per frame, after stepping and raycasting
type Renderer interface {
	Render(a *App) error
}

type App struct {
	Config     config.Config
	Assets     *mesh.Assets
	World      *spine.World
	Chain      *chain.Chain
	Ground     *actor.RigidBody
	Scene      *scene.Scene
	Camera     *scene.Camera
	Light      scene.Light
	Controller *interaction.Controller
	Renderer   Renderer
	Logger     *log.Logger

	last    time.Duration
	started bool
	frames  uint64
}

// NewLogger returns the logger used across the demo
func NewLogger(w io.Writer) *log.Logger {
	return log.New(w, "spine: ", log.LstdFlags|log.Lmsgprefix)
}

// LoadAssets reads the asset files, or generates a synthetic column when asked
func LoadAssets(ctx context.Context, cfg config.Config) (*mesh.Assets, error) {
	if cfg.Synthetic > 0 {
		colorMap, normalMap := mesh.BoneTextures(64)
		return &mesh.Assets{
			Model:  mesh.Column(cfg.Synthetic, 3, 0.5, 0.1),
			Color:  colorMap,
			Normal: normalMap,
		}, nil
	}

	loaded := mesh.LoadAssetsAsync(ctx, mesh.Paths{
		Mesh:      cfg.MeshPath,
		ColorMap:  cfg.ColorMapPath,
		NormalMap: cfg.NormalMapPath,
	})

	// The frame loop only starts once the load callback fired
	select {
	case result := <-loaded:
		if result.Err != nil {
			return nil, fmt.Errorf("load assets: %w", result.Err)
		}
		return result.Assets, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load assets: %w", ctx.Err())
	}
}

// New builds the simulation from loaded assets
func New(cfg config.Config, assets *mesh.Assets, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = NewLogger(io.Discard)
	}

	a := &App{
		Config:     cfg,
		Assets:     assets,
		Camera:     scene.NewCamera(float64(cfg.Width) / float64(max(1, cfg.Height))),
		Light:      scene.DefaultLight(),
		Controller: interaction.NewController(stateFrom(cfg)),
		Logger:     logger,
	}

	if err := a.build(); err != nil {
		return nil, err
	}

	return a, nil
}

func stateFrom(cfg config.Config) interaction.State {
	state := interaction.DefaultState()
	state.Step = cfg.Step
	state.Raycast = cfg.Raycast
	state.Shadows = cfg.Shadows
	state.MouseForce = max(interaction.MinMouseForce, min(interaction.MaxMouseForce, cfg.MouseForce))

	return state
}

// build creates a fresh world, chain and scene; the controller state is kept
func (a *App) build() error {
	opts, err := a.Config.ChainOptions()
	if err != nil {
		return err
	}

	world := spine.NewWorld(mgl64.Vec3{0, a.Config.Gravity, 0})
	world.Substeps = a.Config.Substeps
	world.Workers = a.Config.Workers
	world.AllowSleep = a.Config.AllowSleep

	c, err := chain.Build(world, a.Assets.Model.Parts, opts)
	if err != nil {
		return fmt.Errorf("build chain: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	s := &scene.Scene{}
	for _, segment := range c.Segments {
		s.Add(scene.SegmentPickable{Segment: segment})
	}
	s.Add(scene.GroundPickable{Height: a.Config.GroundHeight})

	a.Ground = nil
	if a.Config.Ground {
		a.Ground = actor.NewRigidBody(
			actor.NewTransform(),
			&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: -a.Config.GroundHeight},
			actor.BodyTypeStatic,
			0,
		)
		a.Ground.Name = "ground"
		world.AddBody(a.Ground)
	}

	a.World = world
	a.Chain = c
	a.Scene = s
	a.started = false
	a.subscribe()

	a.Logger.Printf("chain built: %d segments, %d joints, anchor %q", len(c.Segments), len(c.Joints), c.Segments[0].Name())

	return nil
}

func (a *App) subscribe() {
	if !a.Config.Verbose {
		return
	}

	logBody := func(event spine.Event) {
		switch e := event.(type) {
		case spine.SleepEvent:
			a.Logger.Printf("%s: %s", e.Type(), e.Body.Name)
		case spine.WakeEvent:
			a.Logger.Printf("%s: %s", e.Type(), e.Body.Name)
		case spine.CollisionEnterEvent:
			a.Logger.Printf("%s: %s / %s", e.Type(), e.BodyA.Name, e.BodyB.Name)
		case spine.CollisionExitEvent:
			a.Logger.Printf("%s: %s / %s", e.Type(), e.BodyA.Name, e.BodyB.Name)
		}
	}

	for _, t := range []spine.EventType{spine.ON_SLEEP, spine.ON_WAKE, spine.COLLISION_ENTER, spine.COLLISION_EXIT} {
		a.World.Events.Subscribe(t, logBody)
	}
}

// Reset rebuilds the chain at rest from the loaded assets
func (a *App) Reset() error {
	return a.build()
}

// Frame runs one display refresh. now is a monotonic timestamp; the first
// frame only records it.
func (a *App) Frame(now time.Duration) error {
	state := &a.Controller.State

	if a.started && state.Step {
		elapsed := (now - a.last).Seconds()
		if a.World.StepFixed(a.Config.FixedStep, elapsed, a.Config.MaxSubsteps) > 0 {
			a.Chain.Sync(a.Config.SyncRotation)
		}
	}

	a.Controller.Update(a.Scene, a.Camera)

	if a.Renderer != nil {
		if err := a.Renderer.Render(a); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	a.last = now
	a.started = true
	a.frames++

	return nil
}

// Frames returns the number of frames run since the app was created
func (a *App) Frames() uint64 {
	return a.frames
}

// Tip returns the last segment of the chain
func (a *App) Tip() *chain.Segment {
	return a.Chain.Segments[len(a.Chain.Segments)-1]
}
