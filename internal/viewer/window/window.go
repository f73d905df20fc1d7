// Package window is the desktop viewer: textured, lit segments drawn with ebiten.
package window

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/akmonengine/spine/app"
	"github.com/akmonengine/spine/internal/viewer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Triangles per DrawTriangles call, ebiten indices are uint16
const batchTriangles = 65535 / 3

var (
	background    = color.RGBA{R: 0x20, G: 0x22, B: 0x2a, A: 0xff}
	colliderColor = color.RGBA{R: 0x40, G: 0xc0, B: 0x60, A: 0xff}
	hoverColor    = color.RGBA{R: 0xff, G: 0x90, B: 0x20, A: 0xff}
)

// Run opens the window and blocks until it is closed
func Run(a *app.App, title string) error {
	g := newGame(a)

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(a.Config.Width, a.Config.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}

	return err
}

type game struct {
	app   *app.App
	start time.Time

	width, height int
	frame         viewer.Frame

	colorImage *ebiten.Image
	whiteImage *ebiten.Image

	showColliders bool
	dragging      bool
	lastX, lastY  int

	vertices []ebiten.Vertex
	indices  []uint16
}

func newGame(a *app.App) *game {
	g := &game{
		app:    a,
		start:  time.Now(),
		width:  a.Config.Width,
		height: a.Config.Height,
	}

	if a.Assets.Color != nil {
		g.colorImage = ebiten.NewImageFromImage(a.Assets.Color.Image)
	}

	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	g.whiteImage = white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

	a.Renderer = g
	return g
}

// Update handles input then runs one app frame; projection happens in Render
func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r == 'c' || r == 'C' {
			g.showColliders = !g.showColliders
			continue
		}

		running, err := viewer.Apply(g.app, viewer.ActionForRune(r))
		if err != nil {
			return err
		}
		if !running {
			return ebiten.Termination
		}
	}

	g.handlePointer()

	return g.app.Frame(time.Since(g.start))
}

func (g *game) handlePointer() {
	c := g.app.Controller
	x, y := ebiten.CursorPosition()
	c.PointerMove(float64(x), float64(y), g.width, g.height)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		c.PointerDown()
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		c.PointerUp()
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		if g.dragging {
			viewer.Drag(g.app, float64(x-g.lastX), float64(y-g.lastY))
		}
		g.dragging = true
	} else {
		g.dragging = false
	}
	g.lastX, g.lastY = x, y

	if _, dy := ebiten.Wheel(); dy != 0 {
		viewer.Wheel(g.app, dy)
	}
}

// Render is called by app.Frame after stepping and raycasting
func (g *game) Render(a *app.App) error {
	g.frame = viewer.Project(a, g.width, g.height)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	g.drawFlat(screen, g.frame.Ground, 1)
	g.drawFlat(screen, g.frame.Shadows, g.frame.ShadowAlpha)
	g.drawSegments(screen, g.frame.Segments)

	if g.showColliders {
		for _, c := range viewer.Colliders(g.app, g.width, g.height) {
			clr := colliderColor
			if c.Hovered {
				clr = hoverColor
			}
			vector.StrokeCircle(screen, float32(c.X), float32(c.Y), float32(c.Radius), 1, clr, true)
		}
	}

	panel := viewer.PanelLines(g.app)
	panel = append(panel, "right drag orbit, wheel zoom, c colliders, x reset")
	ebitenutil.DebugPrint(screen, strings.Join(panel, "\n"))
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.app.Camera.SetViewport(g.width, g.height)
	}

	return g.width, g.height
}

// drawSegments maps the color texture onto the triangles, tinted by the light factor
func (g *game) drawSegments(screen *ebiten.Image, triangles []viewer.Triangle) {
	if g.colorImage == nil {
		g.drawFlat(screen, triangles, 1)
		return
	}

	bounds := g.colorImage.Bounds()
	w, h := float32(bounds.Dx()), float32(bounds.Dy())

	g.batch(screen, triangles, g.colorImage, func(v viewer.Vertex) ebiten.Vertex {
		light := float32(v.Light)
		return ebiten.Vertex{
			DstX:   float32(v.X),
			DstY:   float32(v.Y),
			SrcX:   float32(v.U) * w,
			SrcY:   (1 - float32(v.V)) * h,
			ColorR: light,
			ColorG: light,
			ColorB: light,
			ColorA: 1,
		}
	})
}

// drawFlat fills triangles with their vertex colors
func (g *game) drawFlat(screen *ebiten.Image, triangles []viewer.Triangle, alpha float64) {
	a := float32(alpha)

	g.batch(screen, triangles, g.whiteImage, func(v viewer.Vertex) ebiten.Vertex {
		return ebiten.Vertex{
			DstX:   float32(v.X),
			DstY:   float32(v.Y),
			SrcX:   1.5,
			SrcY:   1.5,
			ColorR: float32(v.Color.R) / 0xff,
			ColorG: float32(v.Color.G) / 0xff,
			ColorB: float32(v.Color.B) / 0xff,
			ColorA: a,
		}
	})
}

func (g *game) batch(screen *ebiten.Image, triangles []viewer.Triangle, src *ebiten.Image, vertex func(viewer.Vertex) ebiten.Vertex) {
	options := &ebiten.DrawTrianglesOptions{Address: ebiten.AddressRepeat}

	for start := 0; start < len(triangles); start += batchTriangles {
		end := min(len(triangles), start+batchTriangles)

		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]
		for _, tri := range triangles[start:end] {
			for _, v := range tri.Vertices {
				g.indices = append(g.indices, uint16(len(g.vertices)))
				g.vertices = append(g.vertices, vertex(v))
			}
		}

		screen.DrawTriangles(g.vertices, g.indices, src, options)
	}
}
