package app

import (
	"context"
	"fmt"
	"log"
	"time"
)

// HeadlessConfig controls the no-window runner
type HeadlessConfig struct {
	Hz    int
	Ticks uint64
}

// RunHeadless drives Frame from a ticker until ctx is done or Ticks frames ran.
// Ticks = 0 runs until cancelled.
func RunHeadless(ctx context.Context, a *App, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	start := time.Now()
	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			if err := a.Frame(now.Sub(start)); err != nil {
				return err
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

// LogRenderer prints the tip of the chain every Every frames
type LogRenderer struct {
	Logger *log.Logger
	Every  uint64
}

func (r LogRenderer) Render(a *App) error {
	every := max(1, r.Every)
	if a.Frames()%every != 0 {
		return nil
	}

	tip := a.Tip()
	p := tip.Position
	r.Logger.Printf("frame %d: %s at (%.3f, %.3f, %.3f), hovering %s, joint error %.2e",
		a.Frames(), tip.Name(), p.X(), p.Y(), p.Z(), a.Controller.State.Hovering, a.Chain.JointError())

	return nil
}
