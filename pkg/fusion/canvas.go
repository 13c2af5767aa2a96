package fusion

import (
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Surface is a drawable destination that Preview can size to the
// background before drawing into it.
type Surface interface {
	xdraw.Image
	// Resize sets the surface to w x h pixels and clears it.
	Resize(w, h int)
}

// Canvas is an in-memory Surface backed by an NRGBA grid.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas returns a transparent w x h canvas.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize discards the current content and reallocates the pixel grid.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.img = image.NewNRGBA(image.Rect(0, 0, w, h))
}

func (c *Canvas) grid() *image.NRGBA {
	if c.img == nil {
		c.img = image.NewNRGBA(image.Rectangle{})
	}
	return c.img
}

func (c *Canvas) ColorModel() color.Model            { return color.NRGBAModel }
func (c *Canvas) Bounds() image.Rectangle            { return c.grid().Rect }
func (c *Canvas) At(x, y int) color.Color            { return c.grid().At(x, y) }
func (c *Canvas) Set(x, y int, col color.Color)      { c.grid().Set(x, y, col) }
func (c *Canvas) SetNRGBA(x, y int, col color.NRGBA) { c.grid().SetNRGBA(x, y, col) }

// Image returns the canvas pixels. The grid is shared, not copied.
func (c *Canvas) Image() *image.NRGBA { return c.grid() }

// AspectRatio returns the intrinsic aspect ratio as "W / H", the form CSS
// aspect-ratio accepts.
func (c *Canvas) AspectRatio() string {
	b := c.Bounds()
	return fmt.Sprintf("%d / %d", b.Dx(), b.Dy())
}

// DisplaySize fits the canvas into maxW x maxH without distorting it and
// without enlarging it. A non-positive limit leaves that axis unbounded.
func (c *Canvas) DisplaySize(maxW, maxH int) (int, int) {
	b := c.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0, 0
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	return int(math.Round(float64(w) * scale)), int(math.Round(float64(h) * scale))
}
