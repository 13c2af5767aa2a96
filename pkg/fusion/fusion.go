// Package fusion composites a foreground cutout onto a background with
// optional colour matching, directional lighting and a contact shadow.
//
// The final output (Fuse, FuseImage) and the live preview (Preview) share
// the same core and differ only in where the pixels end up.
package fusion

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"golang.org/x/sync/errgroup"
)

// Engine runs the fusion pipeline with a given Loader.
type Engine struct {
	Loader *Loader
}

// NewEngine returns an Engine using l, or a default Loader when l is nil.
func NewEngine(l *Loader) *Engine {
	if l == nil {
		l = NewLoader(LoaderConfig{})
	}
	return &Engine{Loader: l}
}

var defaultEngine = NewEngine(nil)

// loadPair loads the foreground and background concurrently.
func (e *Engine) loadPair(ctx context.Context, fgRef, bgRef string) (fg, bg *image.NRGBA, err error) {
	loader := e.Loader
	if loader == nil {
		loader = defaultEngine.Loader
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fg, err = loader.Load(gctx, fgRef)
		return err
	})
	g.Go(func() error {
		var err error
		bg, err = loader.Load(gctx, bgRef)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fg, bg, nil
}

// FuseImage loads both references and returns the composite, sized to the
// background.
func (e *Engine) FuseImage(ctx context.Context, fgRef, bgRef string, opts Options) (*image.NRGBA, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fg, bg, err := e.loadPair(ctx, fgRef, bgRef)
	if err != nil {
		return nil, err
	}
	out := image.NewNRGBA(image.Rect(0, 0, bg.Rect.Dx(), bg.Rect.Dy()))
	if _, err := Compose(out, fg, bg, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// Fuse is FuseImage encoded as PNG.
func (e *Engine) Fuse(ctx context.Context, fgRef, bgRef string, opts Options) ([]byte, error) {
	img, err := e.FuseImage(ctx, fgRef, bgRef, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, &PipelineError{Stage: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

// Preview draws the composite into dst after resizing it to the
// background. A nil dst fails with ErrNoCanvas before anything is loaded.
func (e *Engine) Preview(ctx context.Context, fgRef, bgRef string, opts Options, dst Surface) (Surface, error) {
	if dst == nil {
		return nil, ErrNoCanvas
	}
	if c, ok := dst.(*Canvas); ok && c == nil {
		return nil, ErrNoCanvas
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fg, bg, err := e.loadPair(ctx, fgRef, bgRef)
	if err != nil {
		return nil, err
	}
	dst.Resize(bg.Rect.Dx(), bg.Rect.Dy())
	if _, err := Compose(dst, fg, bg, opts); err != nil {
		return nil, err
	}
	return dst, nil
}

// SimpleOverlay fuses with every stage disabled.
func (e *Engine) SimpleOverlay(ctx context.Context, fgRef, bgRef string) ([]byte, error) {
	return e.Fuse(ctx, fgRef, bgRef, Options{})
}

// Fuse runs Engine.Fuse on the default engine.
func Fuse(ctx context.Context, fgRef, bgRef string, opts Options) ([]byte, error) {
	return defaultEngine.Fuse(ctx, fgRef, bgRef, opts)
}

// Preview runs Engine.Preview on the default engine.
func Preview(ctx context.Context, fgRef, bgRef string, opts Options, dst Surface) (Surface, error) {
	return defaultEngine.Preview(ctx, fgRef, bgRef, opts, dst)
}

// SimpleOverlay runs Engine.SimpleOverlay on the default engine.
func SimpleOverlay(ctx context.Context, fgRef, bgRef string) ([]byte, error) {
	return defaultEngine.SimpleOverlay(ctx, fgRef, bgRef)
}
