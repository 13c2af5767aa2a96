package stdimg

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// LightDirection selects the top corner a directional light is anchored at.
type LightDirection int

const (
	LightTopLeft LightDirection = iota
	LightTopRight
)

func (d LightDirection) String() string {
	if d == LightTopRight {
		return "top-right"
	}
	return "top-left"
}

// ParseLightDirection accepts "top-left"/"left-top" and "top-right"/"right-top"
// (case-insensitive).
func ParseLightDirection(s string) (LightDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top-left", "left-top", "topleft", "left":
		return LightTopLeft, nil
	case "top-right", "right-top", "topright", "right":
		return LightTopRight, nil
	}
	return LightTopLeft, fmt.Errorf("unknown light direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d LightDirection) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *LightDirection) UnmarshalText(b []byte) error {
	v, err := ParseLightDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Lighting parameters for DirectionalLighting.
//
// Softness is the falloff radius as a fraction of max(width, height).
// Intensity brightens towards the light corner, ShadowIntensity darkens
// towards the opposite bottom corner. Neither is clamped.
type Lighting struct {
	Direction       LightDirection `json:"direction"`
	Intensity       float64        `json:"intensity"`
	Softness        float64        `json:"softness"`
	ShadowIntensity float64        `json:"shadowIntensity"`
}

// DefaultLighting returns a soft top-left light with a mild opposite shadow.
func DefaultLighting() Lighting {
	return Lighting{
		Direction:       LightTopLeft,
		Intensity:       0.6,
		Softness:        0.75,
		ShadowIntensity: 0.3,
	}
}

// DirectionalLighting multiplies the RGB channels of every visible pixel by a
// gain field: 1 + Intensity at the light corner fading to 1 at Softness*max(w,h)
// away, optionally scaled down towards the diagonally opposite bottom corner.
// Alpha and fully transparent pixels are left untouched. src is not modified.
func DirectionalLighting(src *image.NRGBA, l Lighting) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := CloneNRGBA(src)
	b := out.Bounds()
	w := b.Dx()
	h := b.Dy()
	if w == 0 || h == 0 {
		return out
	}

	lightX, shadowX := 0.0, float64(w-1)
	if l.Direction == LightTopRight {
		lightX, shadowX = float64(w-1), 0.0
	}
	const lightY = 0.0
	shadowY := float64(h - 1)
	radius := math.Max(1, l.Softness*float64(maxInt(w, h)))

	for y := 0; y < h; y++ {
		i := out.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			if out.Pix[i+3] == 0 {
				i += 4
				continue
			}
			d := math.Min(1, math.Hypot(float64(x)-lightX, float64(y)-lightY)/radius)
			gain := 1 + l.Intensity*(1-d)
			if l.ShadowIntensity > 0 {
				sd := math.Min(1, math.Hypot(float64(x)-shadowX, float64(y)-shadowY)/radius)
				gain *= math.Max(0, 1-l.ShadowIntensity*(1-sd))
			}
			out.Pix[i+0] = applyGain(out.Pix[i+0], gain)
			out.Pix[i+1] = applyGain(out.Pix[i+1], gain)
			out.Pix[i+2] = applyGain(out.Pix[i+2], gain)
			i += 4
		}
	}
	return out
}

// applyGain rounds half up, matching Math.round on non-negative values.
func applyGain(v uint8, gain float64) uint8 {
	return uint8(clampFloatToUint8(math.Floor(float64(v)*gain + 0.5)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
