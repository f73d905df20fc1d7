package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/akmonengine/spine/app"
	"github.com/akmonengine/spine/config"
	"github.com/akmonengine/spine/internal/audio"
	"github.com/akmonengine/spine/internal/viewer/term"
	"github.com/akmonengine/spine/internal/viewer/window"
	"github.com/akmonengine/spine/scene"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal viewer owns the screen, logging would tear it
	var logOutput io.Writer = os.Stderr
	if cfg.Mode == config.ModeTerminal {
		logOutput = io.Discard
	}
	logger := app.NewLogger(logOutput)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	assets, err := app.LoadAssets(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Printf("assets loaded: %d parts", len(assets.Model.Parts))

	a, err := app.New(cfg, assets, logger)
	if err != nil {
		return err
	}

	if cfg.Audio && cfg.Mode != config.ModeHeadless {
		cue := audio.NewCue(0)
		if err := cue.Initialize(); err != nil {
			// Non-fatal, the demo runs without sound
			logger.Printf("audio initialization failed: %v", err)
		}
		defer cue.Close()

		a.Controller.OnPress = func(hit scene.Hit) {
			if segment, ok := a.Chain.SegmentOf(hit.Object.Body()); ok {
				cue.Press(segment.Index, len(a.Chain.Segments))
			}
		}
	}

	switch cfg.Mode {
	case config.ModeHeadless:
		a.Renderer = app.LogRenderer{Logger: logger, Every: uint64(cfg.Hz)}
		return app.RunHeadless(ctx, a, app.HeadlessConfig{Hz: cfg.Hz, Ticks: cfg.Ticks})
	case config.ModeTerminal:
		return term.Run(ctx, a)
	default:
		return window.Run(a, "spine")
	}
}
