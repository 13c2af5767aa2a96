package fusion

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/Fepozopo/imgfuse/pkg/stdimg"
)

// Layout is where the foreground ends up on the canvas.
type Layout struct {
	// Canvas is the output area, sized to the background.
	Canvas image.Rectangle
	// Bounds is the opaque region of the foreground that gets drawn.
	Bounds image.Rectangle
	// Scale applied to Bounds, never above 1.
	Scale float64
	// Display is the destination rectangle, horizontally centred and
	// resting on the bottom edge.
	Display image.Rectangle
}

// ComputeLayout fits bounds into a cw x ch canvas without upscaling.
func ComputeLayout(bounds image.Rectangle, cw, ch int) Layout {
	l := Layout{Canvas: image.Rect(0, 0, cw, ch), Bounds: bounds}
	bw, bh := bounds.Dx(), bounds.Dy()
	if bw <= 0 || bh <= 0 || cw <= 0 || ch <= 0 {
		return l
	}
	l.Scale = math.Min(math.Min(float64(cw)/float64(bw), float64(ch)/float64(bh)), 1)
	dw := int(math.Round(float64(bw) * l.Scale))
	dh := int(math.Round(float64(bh) * l.Scale))
	x := int(math.Round(float64(cw-dw) / 2))
	y := ch - dh
	l.Display = image.Rect(x, y, x+dw, y+dh)
	return l
}

// groundShadow places the contact shadow under the display rectangle.
func groundShadow(g GroundShadowConfig, display image.Rectangle) stdimg.ContactShadow {
	dw, dh := float64(display.Dx()), float64(display.Dy())
	height := g.HeightPx
	if height <= 0 {
		height = math.Max(8, math.Round(dh*0.05))
	}
	return stdimg.ContactShadow{
		CX:      float64(display.Min.X) + dw/2,
		CY:      float64(display.Min.Y) + dh + g.OffsetY,
		RX:      math.Max(4, dw*g.WidthScale),
		RY:      math.Max(2, height),
		Opacity: math.Max(0, math.Min(1, g.Opacity)),
	}
}

// Compose runs the enabled stages on fg and draws the result over bg into
// dst, which must already have bg's dimensions. fg and bg are not modified.
func Compose(dst xdraw.Image, fg, bg *image.NRGBA, opts Options) (Layout, error) {
	if err := opts.Validate(); err != nil {
		return Layout{}, err
	}
	if fg == nil || fg.Rect.Empty() {
		return Layout{}, &PipelineError{Stage: "foreground", Err: ErrEmptyImage}
	}
	if bg == nil || bg.Rect.Empty() {
		return Layout{}, &PipelineError{Stage: "background", Err: ErrEmptyImage}
	}
	log := Logger()

	bounds := stdimg.OpaqueBounds(fg)
	processed := fg
	if opts.Lighting != nil {
		processed = stdimg.DirectionalLighting(processed, opts.Lighting.Lighting)
		log.Debug("lighting applied",
			"direction", opts.Lighting.Direction.String(),
			"intensity", opts.Lighting.Intensity)
	}
	if opts.ColorTransfer != nil {
		processed = stdimg.TransferColor(processed, bg, *opts.ColorTransfer)
		log.Debug("colour transfer applied", "strength", opts.ColorTransfer.Strength)
	}

	origin := dst.Bounds().Min
	layout := ComputeLayout(bounds, dst.Bounds().Dx(), dst.Bounds().Dy())
	log.Debug("layout computed",
		"bounds", bounds.String(),
		"scale", layout.Scale,
		"display", layout.Display.String())

	stdimg.FillImage(dst, bg)
	if layout.Display.Empty() {
		return layout, nil
	}
	display := layout.Display.Add(origin)
	if opts.Lighting != nil && opts.Lighting.Ground != nil {
		stdimg.DrawContactShadow(dst, groundShadow(*opts.Lighting.Ground, display))
	}
	stdimg.DrawRegion(dst, display, processed, bounds)
	return layout, nil
}
