package fusion

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/imgfuse/pkg/stdimg"
)

func TestFuseProducesBackgroundSizedPNG(t *testing.T) {
	fg := writePNG(t, solid(400, 600, red))
	bg := writePNG(t, solid(800, 800, blue))
	opts := Options{ColorTransfer: &stdimg.ColorTransfer{Strength: 1, StdClamp: [2]float64{1, 1}}}

	out, err := NewEngine(nil).Fuse(context.Background(), fg, bg, opts)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 800), img.Bounds())
	r, g, b, a := img.At(400, 500).RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff, 0xffff}, []uint32{r, g, b, a})
}

func TestFuseIsDeterministic(t *testing.T) {
	fg := dataURL(t, solid(30, 50, red))
	bg := dataURL(t, solid(90, 60, grey))
	opts := DefaultOptions()
	g := DefaultGroundShadow()
	opts.Lighting.Ground = &g

	first, err := Fuse(context.Background(), fg, bg, opts)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Fuse(context.Background(), fg, bg, opts)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, first, r)
	}
}

func TestSimpleOverlayMatchesDisabledOptions(t *testing.T) {
	fg := dataURL(t, solid(10, 10, red))
	bg := dataURL(t, solid(20, 20, blue))
	a, err := SimpleOverlay(context.Background(), fg, bg)
	require.NoError(t, err)
	b, err := Fuse(context.Background(), fg, bg, Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFuseLoadFailure(t *testing.T) {
	bg := dataURL(t, solid(20, 20, blue))
	_, err := Fuse(context.Background(), "/no/such/fg.png", bg, DefaultOptions())
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "/no/such/fg.png", lerr.Ref)
}

func TestFuseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fuse(ctx, "https://example.invalid/fg.png", "https://example.invalid/bg.png", Options{})
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
}

func TestPreviewWithoutCanvas(t *testing.T) {
	// refs are never touched
	_, err := Preview(context.Background(), "/no/fg.png", "/no/bg.png", DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrNoCanvas)

	var c *Canvas
	_, err = Preview(context.Background(), "/no/fg.png", "/no/bg.png", DefaultOptions(), c)
	assert.ErrorIs(t, err, ErrNoCanvas)
}

func TestPreviewResizesCanvas(t *testing.T) {
	fg := dataURL(t, solid(100, 200, red))
	bg := dataURL(t, solid(800, 600, grey))
	canvas := NewCanvas(10, 10)

	s, err := Preview(context.Background(), fg, bg, DefaultOptions(), canvas)
	require.NoError(t, err)
	assert.Same(t, canvas, s)
	assert.Equal(t, image.Rect(0, 0, 800, 600), canvas.Bounds())
	assert.Equal(t, "800 / 600", canvas.AspectRatio())

	final, err := NewEngine(nil).FuseImage(context.Background(), fg, bg, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, final.Pix, canvas.Image().Pix)
}

func TestPreviewRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Lighting.Softness = 0
	_, err := Preview(context.Background(), "/no/fg.png", "/no/bg.png", opts, NewCanvas(1, 1))
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
