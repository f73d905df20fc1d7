// Package interaction turns pointer input into hover reports and forces on the chain.
package interaction

import (
	"fmt"

	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/scene"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	NoHover = "none"

	MinMouseForce = 0.0
	MaxMouseForce = 100.0
)

// State holds the toggles edited from the debug panel and the input handlers
type State struct {
	Shadows     bool
	Step        bool
	Raycast     bool
	PointerDown bool
	MouseForce  float64
	// Hovering is read-only for the panel
	Hovering string
}

func DefaultState() State {
	return State{
		Shadows:    true,
		Step:       false,
		Raycast:    true,
		MouseForce: 30,
		Hovering:   NoHover,
	}
}

type Controller struct {
	State State
	// Pointer is in normalized device coordinates, both axes in [-1, 1], y up
	Pointer mgl64.Vec2
	// ForceDirection is scaled by MouseForce and applied at the hovered body origin
	ForceDirection mgl64.Vec3

	// OnPress is called when a press starts pushing a new body
	OnPress func(hit scene.Hit)

	pushing *actor.RigidBody
}

func NewController(state State) *Controller {
	return &Controller{
		State:          state,
		ForceDirection: mgl64.Vec3{1, 0, 0},
	}
}

// PointerMove converts a pixel position within a width x height viewport
func (c *Controller) PointerMove(x, y float64, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	c.Pointer = mgl64.Vec2{
		x/float64(width)*2 - 1,
		-(y/float64(height)*2 - 1),
	}
}

func (c *Controller) PointerDown() {
	c.State.PointerDown = true
}

func (c *Controller) PointerUp() {
	c.State.PointerDown = false
	c.pushing = nil
}

func (c *Controller) ToggleShadows() { c.State.Shadows = !c.State.Shadows }
func (c *Controller) ToggleStep()    { c.State.Step = !c.State.Step }
func (c *Controller) ToggleRaycast() { c.State.Raycast = !c.State.Raycast }

// SetMouseForce clamps the force to the panel range
func (c *Controller) SetMouseForce(force float64) {
	c.State.MouseForce = max(MinMouseForce, min(MaxMouseForce, force))
}

// Update casts the pointer ray, reports the hovered object and pushes it while
// the pointer is held. It does nothing unless both raycasting and stepping are on.
// It returns the body that received a force, if any.
func (c *Controller) Update(s *scene.Scene, camera *scene.Camera) *actor.RigidBody {
	if !c.State.Raycast || !c.State.Step {
		return nil
	}

	hit, ok := s.Raycast(camera.Ray(c.Pointer))
	if !ok {
		c.State.Hovering = NoHover
		c.pushing = nil
		return nil
	}
	c.State.Hovering = hit.Object.Name()

	body := hit.Object.Body()
	if !c.State.PointerDown || body == nil {
		c.pushing = nil
		return nil
	}

	body.AddForce(c.ForceDirection.Mul(c.State.MouseForce))
	if body != c.pushing && c.OnPress != nil {
		c.OnPress(hit)
	}
	c.pushing = body

	return body
}

// Entry is one line of the debug panel
type Entry struct {
	Folder   string
	Label    string
	Value    string
	Key      string
	Editable bool
}

// Panel lists the debug panel content, in display order
func (c *Controller) Panel() []Entry {
	return []Entry{
		{Folder: "Rendering", Label: "shadows", Value: onOff(c.State.Shadows), Key: "H", Editable: true},
		{Folder: "Physics", Label: "step", Value: onOff(c.State.Step), Key: "Space", Editable: true},
		{Folder: "Physics", Label: "raycast", Value: onOff(c.State.Raycast), Key: "R", Editable: true},
		{Folder: "Force", Label: "mouseforce", Value: fmt.Sprintf("%.2f", c.State.MouseForce), Key: "+/-", Editable: true},
		{Folder: "Force", Label: "Hovering", Value: c.State.Hovering},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
