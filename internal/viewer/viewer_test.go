package viewer

import (
	"context"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/akmonengine/spine/app"
	"github.com/akmonengine/spine/config"
)

func newApp(t *testing.T) *app.App {
	t.Helper()

	cfg := config.Default()
	cfg.Synthetic = 4
	assets, err := app.LoadAssets(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	a, err := app.New(cfg, assets, nil)
	if err != nil {
		t.Fatal(err)
	}

	return a
}

// =============================================================================
// Input
// =============================================================================

func TestActionForRune(t *testing.T) {
	tests := []struct {
		r    rune
		want Action
	}{
		{'h', ActionToggleShadows},
		{'H', ActionToggleShadows},
		{' ', ActionToggleStep},
		{'r', ActionToggleRaycast},
		{'+', ActionForceUp},
		{'=', ActionForceUp},
		{'-', ActionForceDown},
		{'x', ActionReset},
		{'q', ActionQuit},
		{'z', ActionNone},
	}

	for _, tt := range tests {
		if got := ActionForRune(tt.r); got != tt.want {
			t.Errorf("ActionForRune(%q) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	a := newApp(t)
	c := a.Controller

	steps := []struct {
		action  Action
		running bool
		check   func() bool
	}{
		{ActionToggleShadows, true, func() bool { return !c.State.Shadows }},
		{ActionToggleStep, true, func() bool { return c.State.Step }},
		{ActionToggleRaycast, true, func() bool { return !c.State.Raycast }},
		{ActionForceUp, true, func() bool { return c.State.MouseForce == 35 }},
		{ActionForceDown, true, func() bool { return c.State.MouseForce == 30 }},
		{ActionNone, true, func() bool { return true }},
		{ActionQuit, false, func() bool { return true }},
	}

	for _, step := range steps {
		running, err := Apply(a, step.action)
		if err != nil {
			t.Fatalf("Apply(%v) error = %v", step.action, err)
		}
		if running != step.running {
			t.Errorf("Apply(%v) running = %v, want %v", step.action, running, step.running)
		}
		if !step.check() {
			t.Errorf("Apply(%v) did not update the state: %+v", step.action, c.State)
		}
	}
}

func TestApply_Reset(t *testing.T) {
	a := newApp(t)
	world := a.World

	if running, err := Apply(a, ActionReset); !running || err != nil {
		t.Fatalf("Apply(reset) = %v, %v", running, err)
	}
	if a.World == world {
		t.Error("reset should rebuild the world")
	}
}

func TestWheelAndDrag(t *testing.T) {
	a := newApp(t)
	distance := func() float64 { return a.Camera.Position.Sub(a.Camera.Target).Len() }
	before := distance()

	Wheel(a, 1)
	if got := distance(); math.Abs(got-before*ZoomStep) > 1e-9 {
		t.Errorf("wheel up distance = %v, want %v", got, before*ZoomStep)
	}
	Wheel(a, 0)
	Wheel(a, -1)
	if got := distance(); math.Abs(got-before) > 1e-9 {
		t.Errorf("wheel down should undo wheel up, got %v", got)
	}

	position := a.Camera.Position
	Drag(a, 30, 0)
	if a.Camera.Position == position {
		t.Error("drag should orbit the camera")
	}
	if math.Abs(distance()-before) > 1e-9 {
		t.Error("orbiting should keep the distance")
	}
}

func TestPanelLines(t *testing.T) {
	a := newApp(t)
	a.Controller.State.Hovering = "vertebra_02"

	lines := PanelLines(a)

	want := []string{
		"Rendering: shadows on [H]",
		"Physics: step off [Space]  raycast on [R]",
		"Force: mouseforce 30.00 [+/-]  Hovering vertebra_02",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("PanelLines() =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

// =============================================================================
// Projection
// =============================================================================

func TestProject(t *testing.T) {
	a := newApp(t)

	frame := Project(a, 320, 240)

	if len(frame.Segments) != 4*12 {
		t.Errorf("got %d segment triangles, want 48", len(frame.Segments))
	}
	if len(frame.Shadows) != 4*12 {
		t.Errorf("got %d shadow triangles, want 48", len(frame.Shadows))
	}
	if len(frame.Ground) == 0 {
		t.Error("ground should be visible")
	}
	for i := 1; i < len(frame.Segments); i++ {
		if frame.Segments[i].Depth > frame.Segments[i-1].Depth {
			t.Fatal("segments should be sorted back to front")
		}
	}
	for _, tri := range frame.Segments {
		for _, v := range tri.Vertices {
			if v.Light < a.Light.Ambient-1e-9 || v.Light > 1 {
				t.Fatalf("vertex light %v out of range", v.Light)
			}
		}
	}
}

func TestProject_ShadowsOff(t *testing.T) {
	a := newApp(t)
	a.Controller.ToggleShadows()

	if frame := Project(a, 320, 240); len(frame.Shadows) != 0 {
		t.Errorf("got %d shadow triangles with shadows off", len(frame.Shadows))
	}
}

func TestProject_EmptyViewport(t *testing.T) {
	a := newApp(t)

	frame := Project(a, 0, 240)
	if len(frame.Ground)+len(frame.Shadows)+len(frame.Segments) != 0 {
		t.Error("an empty viewport projects nothing")
	}
}

func TestColliders(t *testing.T) {
	a := newApp(t)
	a.Controller.State.Hovering = a.Chain.Segments[1].Name()

	colliders := Colliders(a, 320, 240)

	if len(colliders) != 4 {
		t.Fatalf("got %d colliders, want 4", len(colliders))
	}
	for i, collider := range colliders {
		if collider.Radius <= 0 {
			t.Errorf("collider %d radius = %v", i, collider.Radius)
		}
		if collider.Hovered != (i == 1) {
			t.Errorf("collider %d Hovered = %v", i, collider.Hovered)
		}
	}
}

// =============================================================================
// Raster
// =============================================================================

func flat(c color.RGBA, points ...[2]float64) Triangle {
	var tri Triangle
	for i, p := range points {
		tri.Vertices[i] = Vertex{X: p[0], Y: p[1], Color: c}
	}

	return tri
}

func TestCanvas_Fill(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	tests := []struct {
		name string
		tri  Triangle
	}{
		{"clockwise", flat(red, [2]float64{0, 0}, [2]float64{4, 0}, [2]float64{0, 4})},
		{"counter clockwise", flat(red, [2]float64{0, 0}, [2]float64{0, 4}, [2]float64{4, 0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := NewCanvas(4, 4)
			canvas.Fill(tt.tri, 1)

			if canvas.At(0, 0) != red {
				t.Errorf("inside pixel = %v", canvas.At(0, 0))
			}
			if canvas.At(3, 3) == red {
				t.Error("pixel beyond the hypotenuse should stay empty")
			}
		})
	}
}

func TestCanvas_FillBlendsAndClips(t *testing.T) {
	canvas := NewCanvas(4, 4)
	canvas.Clear(color.RGBA{R: 200, G: 200, B: 200, A: 255})

	black := color.RGBA{A: 255}
	canvas.Fill(flat(black, [2]float64{-10, -10}, [2]float64{20, -10}, [2]float64{-10, 20}), 0.5)

	if got := canvas.At(0, 0); got != (color.RGBA{R: 100, G: 100, B: 100, A: 255}) {
		t.Errorf("half blended pixel = %v", got)
	}
	if got := canvas.At(10, 10); got != (color.RGBA{}) {
		t.Errorf("At() outside the canvas = %v", got)
	}
}

func TestCanvas_FillDegenerate(t *testing.T) {
	canvas := NewCanvas(4, 4)
	canvas.Fill(flat(color.RGBA{R: 255, A: 255}, [2]float64{0, 0}, [2]float64{2, 2}, [2]float64{4, 4}), 1)

	for _, p := range canvas.Pix {
		if p != (color.RGBA{}) {
			t.Fatal("a flat triangle should not cover any pixel")
		}
	}
}

func TestCanvas_Draw(t *testing.T) {
	a := newApp(t)
	canvas := NewCanvas(160, 120)
	canvas.Clear(color.RGBA{A: 255})

	canvas.Draw(Project(a, canvas.Width, canvas.Height))

	painted := 0
	for _, p := range canvas.Pix {
		if p != (color.RGBA{A: 255}) {
			painted++
		}
	}
	if painted == 0 {
		t.Error("drawing the demo frame should paint pixels")
	}
}
