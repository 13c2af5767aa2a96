package fusion

import (
	"fmt"
	"math"

	"github.com/Fepozopo/imgfuse/pkg/stdimg"
)

// GroundShadowConfig controls the soft ellipse drawn under the subject.
// HeightPx <= 0 picks max(8, round(displayHeight*0.05)).
type GroundShadowConfig struct {
	Opacity    float64 `json:"opacity"`
	WidthScale float64 `json:"widthScale"`
	HeightPx   float64 `json:"heightPx"`
	OffsetY    float64 `json:"offsetY"`
}

// DefaultGroundShadow returns the ground shadow used when one is requested
// without explicit values.
func DefaultGroundShadow() GroundShadowConfig {
	return GroundShadowConfig{
		Opacity:    0.25,
		WidthScale: 0.45,
		OffsetY:    4,
	}
}

// LightingConfig enables the lighting stage. A nil Ground means no ground shadow.
type LightingConfig struct {
	stdimg.Lighting
	Ground *GroundShadowConfig `json:"ground,omitempty"`
}

// Options selects which pipeline stages run. A nil stage is disabled, so the
// zero value is a plain overlay.
type Options struct {
	Lighting      *LightingConfig       `json:"lighting,omitempty"`
	ColorTransfer *stdimg.ColorTransfer `json:"colorTransfer,omitempty"`
}

// DefaultOptions enables lighting (without ground shadow) and colour transfer.
func DefaultOptions() Options {
	ct := stdimg.DefaultColorTransfer()
	return Options{
		Lighting:      &LightingConfig{Lighting: stdimg.DefaultLighting()},
		ColorTransfer: &ct,
	}
}

// Validate reports parameter combinations the stages cannot work with.
func (o Options) Validate() error {
	if l := o.Lighting; l != nil {
		if !(l.Softness > 0) {
			return invalidf("lighting softness must be > 0, got %v", l.Softness)
		}
		if l.Intensity < 0 || math.IsNaN(l.Intensity) {
			return invalidf("lighting intensity must be >= 0, got %v", l.Intensity)
		}
		if l.ShadowIntensity < 0 || math.IsNaN(l.ShadowIntensity) {
			return invalidf("lighting shadowIntensity must be >= 0, got %v", l.ShadowIntensity)
		}
		if l.Direction != stdimg.LightTopLeft && l.Direction != stdimg.LightTopRight {
			return invalidf("unknown light direction %d", int(l.Direction))
		}
		if g := l.Ground; g != nil {
			if !(g.WidthScale > 0) {
				return invalidf("ground widthScale must be > 0, got %v", g.WidthScale)
			}
			if math.IsNaN(g.Opacity) || math.IsNaN(g.HeightPx) || math.IsNaN(g.OffsetY) {
				return invalidf("ground shadow values must be numbers")
			}
		}
	}
	if ct := o.ColorTransfer; ct != nil {
		if !(ct.Strength >= 0 && ct.Strength <= 1) {
			return invalidf("colour strength must be within [0, 1], got %v", ct.Strength)
		}
		if ct.StdClamp[0] > ct.StdClamp[1] || math.IsNaN(ct.StdClamp[0]) || math.IsNaN(ct.StdClamp[1]) {
			return invalidf("stdClamp low %v exceeds high %v", ct.StdClamp[0], ct.StdClamp[1])
		}
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}
