// Package viewer turns the app state into screen-space triangles, shared by the
// window and terminal front ends.
package viewer

import (
	"image/color"
	"sort"

	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/app"
	"github.com/akmonengine/spine/chain"
	"github.com/akmonengine/spine/scene"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	groundExtent = 10.0
	groundTile   = 2.0
	shadowAlpha  = 0.45
)

var (
	GroundColor = color.RGBA{R: 0x7a, G: 0x7a, B: 0x7a, A: 0xff}
	ShadowColor = color.RGBA{A: 0xff}
)

// Vertex is a projected, lit vertex. U and V are texture coordinates,
// Light is the lit factor applied to the texture, Color the fully shaded color.
type Vertex struct {
	X, Y  float64
	U, V  float64
	Light float64
	Color color.RGBA
}

type Triangle struct {
	Vertices [3]Vertex
	// Depth is the mean view distance, used for back to front ordering
	Depth float64
}

// Frame is what a viewer draws, in painter order: Ground, Shadows, Segments
type Frame struct {
	Ground   []Triangle
	Shadows  []Triangle
	Segments []Triangle
	// Alpha of the shadow triangles
	ShadowAlpha float64
}

// Project builds the frame for a width x height viewport
func Project(a *app.App, width, height int) Frame {
	frame := Frame{ShadowAlpha: shadowAlpha}
	if width <= 0 || height <= 0 {
		return frame
	}

	groundY := a.Config.GroundHeight
	frame.Ground = projectGround(a, groundY, width, height)

	for _, s := range a.Chain.Segments {
		frame.Segments = append(frame.Segments, projectSegment(a, s, width, height)...)
		if a.Controller.State.Shadows {
			frame.Shadows = append(frame.Shadows, projectShadow(a, s, groundY, width, height)...)
		}
	}

	sortBackToFront(frame.Segments)

	return frame
}

func sortBackToFront(triangles []Triangle) {
	sort.SliceStable(triangles, func(i, j int) bool {
		return triangles[i].Depth > triangles[j].Depth
	})
}

func projectSegment(a *app.App, s *chain.Segment, width, height int) []Triangle {
	var triangles []Triangle

	for i := 0; i < s.Part.TriangleCount(); i++ {
		v0, v1, v2 := s.Part.Triangle(i)

		var tri Triangle
		visible := true
		for k, v := range [3]struct {
			p, n mgl64.Vec3
			uv   mgl64.Vec2
		}{
			{v0.Position, v0.Normal, v0.UV},
			{v1.Position, v1.Normal, v1.UV},
			{v2.Position, v2.Normal, v2.UV},
		} {
			world := s.ToWorld(v.p)
			x, y, depth, ok := a.Camera.Project(world, width, height)
			if !ok {
				visible = false
				break
			}

			normal := s.Rotation.Rotate(v.n)
			tri.Vertices[k] = shadeVertex(a, x, y, normal, v.uv)
			tri.Depth += depth / 3
		}

		if visible {
			triangles = append(triangles, tri)
		}
	}

	return triangles
}

func shadeVertex(a *app.App, x, y float64, normal mgl64.Vec3, uv mgl64.Vec2) Vertex {
	light := a.Light.Ambient
	if normal.Len() > 1e-12 {
		n := normal
		if a.Assets.Normal != nil {
			n = scene.PerturbNormal(normal, a.Assets.Normal.Sample(uv.X(), uv.Y()))
		}
		light = min(1, a.Light.Lambert(n))
	}

	return Vertex{
		X:     x,
		Y:     y,
		U:     uv.X(),
		V:     uv.Y(),
		Light: light,
		Color: a.Light.Shade(normal, uv, a.Assets.Color, a.Assets.Normal),
	}
}

func projectShadow(a *app.App, s *chain.Segment, groundY float64, width, height int) []Triangle {
	var triangles []Triangle
	// Lift the shadow a little so it wins over the ground
	const lift = 1e-3

	for i := 0; i < s.Part.TriangleCount(); i++ {
		v0, v1, v2 := s.Part.Triangle(i)

		var tri Triangle
		visible := true
		for k, p := range [3]mgl64.Vec3{v0.Position, v1.Position, v2.Position} {
			shadow, ok := a.Light.ShadowPoint(s.ToWorld(p), groundY+lift)
			if !ok {
				visible = false
				break
			}
			x, y, depth, ok := a.Camera.Project(shadow, width, height)
			if !ok {
				visible = false
				break
			}
			tri.Vertices[k] = Vertex{X: x, Y: y, Color: ShadowColor}
			tri.Depth += depth / 3
		}

		if visible {
			triangles = append(triangles, tri)
		}
	}

	return triangles
}

// projectGround tiles the floor so tiles behind the camera can be dropped alone
func projectGround(a *app.App, groundY float64, width, height int) []Triangle {
	k := min(1, a.Light.Lambert(mgl64.Vec3{0, 1, 0}))
	shaded := color.RGBA{
		R: uint8(float64(GroundColor.R) * k),
		G: uint8(float64(GroundColor.G) * k),
		B: uint8(float64(GroundColor.B) * k),
		A: 0xff,
	}

	var triangles []Triangle
	for x := -groundExtent; x < groundExtent; x += groundTile {
		for z := -groundExtent; z < groundExtent; z += groundTile {
			corners := [4]mgl64.Vec3{
				{x, groundY, z},
				{x + groundTile, groundY, z},
				{x + groundTile, groundY, z + groundTile},
				{x, groundY, z + groundTile},
			}

			var projected [4]Vertex
			depth := 0.0
			visible := true
			for i, c := range corners {
				px, py, d, ok := a.Camera.Project(c, width, height)
				if !ok {
					visible = false
					break
				}
				projected[i] = Vertex{X: px, Y: py, Light: k, Color: shaded}
				depth += d / 4
			}
			if !visible {
				continue
			}

			triangles = append(triangles,
				Triangle{Vertices: [3]Vertex{projected[0], projected[1], projected[2]}, Depth: depth},
				Triangle{Vertices: [3]Vertex{projected[0], projected[2], projected[3]}, Depth: depth},
			)
		}
	}

	return triangles
}

// Collider is the on-screen circle of a segment's collision sphere
type Collider struct {
	X, Y, Radius float64
	Hovered      bool
}

// Colliders projects the collision spheres, for wireframe overlays
func Colliders(a *app.App, width, height int) []Collider {
	var colliders []Collider
	hovering := a.Controller.State.Hovering

	for _, s := range a.Chain.Segments {
		x, y, depth, ok := a.Camera.Project(s.Body.Transform.Position, width, height)
		if !ok {
			continue
		}

		radius := s.Rest.Radius
		if sphere, ok := s.Body.Shape.(*actor.Sphere); ok {
			radius = sphere.Radius
		}

		colliders = append(colliders, Collider{
			X:       x,
			Y:       y,
			Radius:  radius * a.Camera.PixelsPerUnit(depth, height),
			Hovered: s.Name() == hovering,
		})
	}

	return colliders
}
