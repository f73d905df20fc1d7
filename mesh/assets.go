package mesh

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Assets bundles everything the spine needs to be built and drawn
type Assets struct {
	Model  *Model
	Color  *Texture
	Normal *Texture
}

// Paths names the three asset files
type Paths struct {
	Mesh      string
	ColorMap  string
	NormalMap string
}

// LoadAssets loads the mesh and both textures concurrently. The first failure
// cancels the remaining loads.
func LoadAssets(ctx context.Context, paths Paths) (*Assets, error) {
	g, ctx := errgroup.WithContext(ctx)
	assets := &Assets{}

	g.Go(func() error {
		model, err := Load(paths.Mesh)
		if err != nil {
			return err
		}
		assets.Model = model
		return ctx.Err()
	})
	g.Go(func() error {
		texture, err := LoadTexture(paths.ColorMap)
		if err != nil {
			return fmt.Errorf("color map: %w", err)
		}
		assets.Color = texture
		return ctx.Err()
	})
	g.Go(func() error {
		texture, err := LoadTexture(paths.NormalMap)
		if err != nil {
			return fmt.Errorf("normal map: %w", err)
		}
		assets.Normal = texture
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assets, nil
}

// LoadAssetsAsync runs LoadAssets in the background and delivers the result
// once on the returned channel
func LoadAssetsAsync(ctx context.Context, paths Paths) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		assets, err := LoadAssets(ctx, paths)
		ch <- Result{Assets: assets, Err: err}
	}()

	return ch
}

// Result of an asynchronous load
type Result struct {
	Assets *Assets
	Err    error
}
