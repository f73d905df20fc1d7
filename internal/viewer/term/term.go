// Package term draws the chain in a terminal, two pixels per cell.
package term

import (
	"context"
	"image/color"
	"time"

	"github.com/akmonengine/spine/app"
	"github.com/akmonengine/spine/internal/viewer"
	"github.com/gdamore/tcell/v2"
)

const (
	statusRows = 2
	frameTime  = 16 * time.Millisecond
)

var background = color.RGBA{R: 0x18, G: 0x18, B: 0x20, A: 0xff}

// Viewer is an app.Renderer writing to a tcell screen
type Viewer struct {
	app    *app.App
	screen tcell.Screen
	canvas *viewer.Canvas

	dragging   bool
	lastMouseX int
	lastMouseY int
}

// New takes ownership of an initialized screen and installs itself as the app renderer
func New(a *app.App, screen tcell.Screen) *Viewer {
	screen.EnableMouse()
	screen.HideCursor()

	v := &Viewer{app: a, screen: screen}
	v.resize()
	a.Renderer = v

	return v
}

// Run opens the terminal and blocks until the user quits or ctx is done
func Run(ctx context.Context, a *app.App) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return New(a, screen).Loop(ctx)
}

// Loop polls screen events and runs one frame per tick
func (v *Viewer) Loop(ctx context.Context) error {
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			running, err := v.Handle(ev)
			if err != nil {
				return err
			}
			if !running {
				return nil
			}
		case now := <-ticker.C:
			if err := v.app.Frame(now.Sub(start)); err != nil {
				return err
			}
		}
	}
}

// Handle applies one terminal event. It reports false when the user quits.
func (v *Viewer) Handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false, nil
		}
		if ev.Key() == tcell.KeyRune {
			return viewer.Apply(v.app, viewer.ActionForRune(ev.Rune()))
		}

	case *tcell.EventMouse:
		v.handleMouse(ev)

	case *tcell.EventResize:
		v.screen.Sync()
		v.resize()
	}

	return true, nil
}

func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	c := v.app.Controller

	// Cell centers, the canvas has two rows per cell
	c.PointerMove(float64(x)+0.5, float64(y*2)+1, v.canvas.Width, v.canvas.Height)

	if buttons&tcell.Button1 != 0 {
		c.PointerDown()
	} else if c.State.PointerDown {
		c.PointerUp()
	}

	if buttons&tcell.Button2 != 0 {
		if v.dragging {
			viewer.Drag(v.app, float64(x-v.lastMouseX), float64(y-v.lastMouseY)*2)
		}
		v.dragging = true
	} else {
		v.dragging = false
	}
	v.lastMouseX, v.lastMouseY = x, y

	switch {
	case buttons&tcell.WheelUp != 0:
		viewer.Wheel(v.app, 1)
	case buttons&tcell.WheelDown != 0:
		viewer.Wheel(v.app, -1)
	}
}

func (v *Viewer) resize() {
	width, height := v.screen.Size()
	rows := max(1, height-statusRows)
	v.canvas = viewer.NewCanvas(width, rows*2)
	v.app.Camera.SetViewport(v.canvas.Width, v.canvas.Height)
}

// Render draws the projected frame with upper half blocks, then the panel
func (v *Viewer) Render(a *app.App) error {
	v.canvas.Clear(background)
	v.canvas.Draw(viewer.Project(a, v.canvas.Width, v.canvas.Height))

	v.screen.Clear()
	for y := 0; y < v.canvas.Height/2; y++ {
		for x := 0; x < v.canvas.Width; x++ {
			top := v.canvas.At(x, y*2)
			bottom := v.canvas.At(x, y*2+1)
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			v.screen.SetContent(x, y, '▀', nil, style)
		}
	}

	v.drawStatus(a)
	v.screen.Show()

	return nil
}

func (v *Viewer) drawStatus(a *app.App) {
	width, height := v.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(0, 0, 0))

	lines := viewer.PanelLines(a)
	status := []string{
		joinFit(lines, width),
		"H shadows  Space step  R raycast  +/- force  x reset  q quit",
	}

	for row, text := range status {
		y := height - statusRows + row
		if y < 0 {
			continue
		}
		x := 0
		for _, ch := range text {
			if x >= width {
				break
			}
			v.screen.SetContent(x, y, ch, nil, style)
			x++
		}
		for ; x < width; x++ {
			v.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func joinFit(lines []string, width int) string {
	text := ""
	for i, line := range lines {
		if i > 0 {
			text += " | "
		}
		text += line
	}
	if r := []rune(text); len(r) > width {
		return string(r[:width])
	}

	return text
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
