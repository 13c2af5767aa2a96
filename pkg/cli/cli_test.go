package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/imgfuse/pkg/fusion"
)

func solidPNG(t *testing.T, dir, name string, w, h int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	path := filepath.Join(dir, name)
	require.NoError(t, SaveImage(path, img))
	return path
}

func newTestApp() (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &App{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
		Env:    Env{LogLevel: slog.LevelWarn, HTTPTimeout: fusion.DefaultHTTPTimeout},
	}, &stdout, &stderr
}

func TestFuseCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	fg := solidPNG(t, dir, "fg.png", 40, 60, color.NRGBA{R: 255, A: 255})
	bg := solidPNG(t, dir, "bg.png", 80, 80, color.NRGBA{B: 255, A: 255})
	out := filepath.Join(dir, "out.png")

	app, _, stderr := newTestApp()
	code := app.Run(context.Background(), []string{"fuse", "-fg", fg, "-bg", bg, "-o", out,
		"-no-lighting", "-strength", "1", "-highlights=false"})
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "wrote")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 80, 80), img.Bounds())
	r, g, b, _ := img.At(40, 50).RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff}, []uint32{r, g, b})
}

func TestFuseCommandStdout(t *testing.T) {
	dir := t.TempDir()
	fg := solidPNG(t, dir, "fg.png", 10, 10, color.NRGBA{R: 255, A: 255})
	bg := solidPNG(t, dir, "bg.png", 30, 20, color.NRGBA{G: 255, A: 255})

	app, stdout, stderr := newTestApp()
	code := app.Run(context.Background(), []string{"fuse", "-fg", fg, "-bg", bg, "-o", "-", "-no-lighting", "-no-color"})
	require.Equal(t, 0, code, stderr.String())
	img, err := png.Decode(stdout)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())
	r, _, _, _ := img.At(15, 15).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestFuseCommandUsageErrors(t *testing.T) {
	app, _, stderr := newTestApp()
	assert.Equal(t, 2, app.Run(context.Background(), []string{"fuse", "-bg", "x.png", "-o", "y.png"}))
	assert.Contains(t, stderr.String(), "-fg and -bg are required")

	app, _, _ = newTestApp()
	assert.Equal(t, 2, app.Run(context.Background(), []string{"fuse", "-fg", "a", "-bg", "b"}))

	app, _, _ = newTestApp()
	assert.Equal(t, 2, app.Run(context.Background(), []string{"fuse", "-bogus"}))

	app, _, _ = newTestApp()
	assert.Equal(t, 2, app.Run(context.Background(), []string{"blend"}))

	app, _, _ = newTestApp()
	assert.Equal(t, 2, app.Run(context.Background(), nil))
}

func TestFuseCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	bg := solidPNG(t, dir, "bg.png", 10, 10, color.NRGBA{A: 255})
	app, _, stderr := newTestApp()
	code := app.Run(context.Background(), []string{"fuse", "-fg", filepath.Join(dir, "nope.png"), "-bg", bg, "-o", filepath.Join(dir, "o.png")})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "nope.png")
}

func TestFuseCommandInvalidOptions(t *testing.T) {
	app, _, stderr := newTestApp()
	code := app.Run(context.Background(), []string{"fuse", "-fg", "a.png", "-bg", "b.png", "-o", "c.png", "-strength", "2"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid options")
}

func TestInspectCommand(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 120, 120))
	for y := 10; y < 110; y++ {
		for x := 10; x < 110; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "cutout.png")
	require.NoError(t, SaveImage(path, img))

	app, stdout, stderr := newTestApp()
	require.Equal(t, 0, app.Run(context.Background(), []string{"inspect", path}), stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Size: 120x120")
	assert.Contains(t, out, "Opaque bounds: x=10 y=10 w=100 h=100")
	assert.Contains(t, out, "Visible pixels: 10000")
	assert.Contains(t, out, "R: mean=200.00 std=0.00")
}

func TestPreviewCommandInline(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "inline")
	dir := t.TempDir()
	fg := solidPNG(t, dir, "fg.png", 10, 10, color.NRGBA{R: 255, A: 255})
	bg := solidPNG(t, dir, "bg.png", 40, 20, color.NRGBA{G: 255, A: 255})

	app, stdout, stderr := newTestApp()
	require.Equal(t, 0, app.Run(context.Background(), []string{"preview", "-fg", fg, "-bg", bg, "-ground"}), stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "\x1b]1337;File=name=preview.png;inline=1;")
	assert.Contains(t, out, "Canvas: 40x20 (aspect-ratio 40 / 20)")
}

func TestVersionCommand(t *testing.T) {
	app, stdout, _ := newTestApp()
	require.Equal(t, 0, app.Run(context.Background(), []string{"version"}))
	assert.Equal(t, "imgfuse "+Version+"\n", stdout.String())
}

func TestLoaderUsesInjectedFactory(t *testing.T) {
	app, stdout, stderr := newTestApp()
	var seen []string
	app.newLoader = func(_ context.Context, refs ...string) (*fusion.Loader, error) {
		seen = refs
		return fusion.NewLoader(fusion.LoaderConfig{}), nil
	}
	path := solidPNG(t, t.TempDir(), "a.png", 2, 2, color.NRGBA{A: 255})
	require.Equal(t, 0, app.Run(context.Background(), []string{"inspect", path}), stderr.String())
	assert.Equal(t, []string{path}, seen)
	assert.Contains(t, stdout.String(), "Size: 2x2")
}
