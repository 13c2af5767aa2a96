package stdimg

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// ContactShadow describes a soft elliptical shadow on the ground plane.
// Center is in destination pixel coordinates; RX and RY are the radii.
type ContactShadow struct {
	CX, CY  float64
	RX, RY  float64
	Opacity float64
}

// DrawContactShadow fills the ellipse described by s with a radial gradient
// from black at s.Opacity in the centre to fully transparent at the rim, and
// composites it source-over onto dst. The gradient is evaluated in unit
// circle space and stretched by the radii, so it follows the ellipse.
func DrawContactShadow(dst xdraw.Image, s ContactShadow) {
	if dst == nil || s.RX <= 0 || s.RY <= 0 {
		return
	}
	opacity := clampFloat(s.Opacity, 0, 1)
	if opacity == 0 {
		return
	}
	brush := gg.NewRadialGradientBrush(0, 0, 0, 1).
		AddColorStop(0, gg.RGBA2(0, 0, 0, opacity)).
		AddColorStop(1, gg.Transparent)

	area := image.Rect(
		int(math.Floor(s.CX-s.RX)), int(math.Floor(s.CY-s.RY)),
		int(math.Ceil(s.CX+s.RX)), int(math.Ceil(s.CY+s.RY)),
	).Intersect(dst.Bounds())

	for y := area.Min.Y; y < area.Max.Y; y++ {
		v := (float64(y) + 0.5 - s.CY) / s.RY
		for x := area.Min.X; x < area.Max.X; x++ {
			u := (float64(x) + 0.5 - s.CX) / s.RX
			if u*u+v*v > 1 {
				continue
			}
			a := brush.ColorAt(u, v).A
			if a <= 0 {
				continue
			}
			dst.Set(x, y, darken(dst.At(x, y), a))
		}
	}
}

// darken composites black with alpha a over c.
func darken(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	da := float64(n.A) / 255
	outA := a + da*(1-a)
	if outA <= 0 {
		return color.NRGBA{}
	}
	// black contributes nothing to the premultiplied colour
	k := da * (1 - a) / outA
	return color.NRGBA{
		R: uint8(math.Round(float64(n.R) * k)),
		G: uint8(math.Round(float64(n.G) * k)),
		B: uint8(math.Round(float64(n.B) * k)),
		A: uint8(math.Round(clampFloatToUint8(outA * 255))),
	}
}
