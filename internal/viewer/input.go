package viewer

import (
	"math"

	"github.com/akmonengine/spine/app"
)

// Action is a key binding shared by every viewer
type Action int

const (
	ActionNone Action = iota
	ActionToggleShadows
	ActionToggleStep
	ActionToggleRaycast
	ActionForceUp
	ActionForceDown
	ActionReset
	ActionQuit
)

const (
	ForceIncrement = 5.0

	// OrbitSpeed is in radians per pixel of drag
	OrbitSpeed = 0.01
	// ZoomStep scales the camera distance per wheel notch
	ZoomStep = 0.9
)

// ActionForRune maps a typed character to its action
func ActionForRune(r rune) Action {
	switch r {
	case 'h', 'H':
		return ActionToggleShadows
	case ' ':
		return ActionToggleStep
	case 'r', 'R':
		return ActionToggleRaycast
	case '+', '=':
		return ActionForceUp
	case '-', '_':
		return ActionForceDown
	case 'x', 'X':
		return ActionReset
	case 'q', 'Q':
		return ActionQuit
	default:
		return ActionNone
	}
}

// Apply runs action against the app. It reports false once the viewer should quit.
func Apply(a *app.App, action Action) (bool, error) {
	c := a.Controller

	switch action {
	case ActionToggleShadows:
		c.ToggleShadows()
	case ActionToggleStep:
		c.ToggleStep()
	case ActionToggleRaycast:
		c.ToggleRaycast()
	case ActionForceUp:
		c.SetMouseForce(c.State.MouseForce + ForceIncrement)
	case ActionForceDown:
		c.SetMouseForce(c.State.MouseForce - ForceIncrement)
	case ActionReset:
		if err := a.Reset(); err != nil {
			return true, err
		}
	case ActionQuit:
		return false, nil
	}

	return true, nil
}

// Wheel zooms the camera, dy > 0 moves closer
func Wheel(a *app.App, dy float64) {
	if dy == 0 {
		return
	}

	a.Camera.Zoom(math.Pow(ZoomStep, dy))
}

// Drag orbits the camera by a pointer displacement in pixels
func Drag(a *app.App, dx, dy float64) {
	a.Camera.Orbit(-dx*OrbitSpeed, dy*OrbitSpeed)
}
