package stdimg

import (
	"image"
	"math"
)

// ColorTransfer parameters.
//
// Strength blends between the original pixel (0) and the fully transferred
// colour (1). StdClamp bounds the target/source deviation ratio so contrast is
// never rescaled wildly. PreserveHighlights weakens the transfer for
// near-white pixels so bright clothing is not tinted.
type ColorTransfer struct {
	Strength           float64    `json:"strength"`
	StdClamp           [2]float64 `json:"stdClamp"`
	PreserveHighlights bool       `json:"preserveHighlights"`
}

// DefaultColorTransfer returns a moderate transfer with a narrow contrast clamp.
func DefaultColorTransfer() ColorTransfer {
	return ColorTransfer{
		Strength:           0.6,
		StdClamp:           [2]float64{0.85, 1.15},
		PreserveHighlights: true,
	}
}

// TransferColor shifts the colour distribution of the visible pixels of src
// towards the distribution of target. Statistics are taken from the visible
// pixels of both images. src is not modified.
func TransferColor(src, target *image.NRGBA, ct ColorTransfer) *image.NRGBA {
	if src == nil {
		return nil
	}
	return ApplyColorTransfer(src, ComputeChannelStats(src), ComputeChannelStats(target), ct)
}

// ApplyColorTransfer remaps every visible pixel of src from the source
// statistics to the target statistics:
//
//	out = p*(1-mix) + ((p-srcMean)*clamp(tgtStd/srcStd) + tgtMean)*mix
//
// where mix = clamp(Strength*atten, 0, 1) and atten drops to 0.6 above an
// average of 210 and to 0.3 above 235 when PreserveHighlights is set.
// Transparent pixels pass through unchanged.
func ApplyColorTransfer(src *image.NRGBA, source, target ChannelStats, ct ColorTransfer) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := CloneNRGBA(src)

	var ratio [3]float64
	for c := 0; c < 3; c++ {
		r := 1.0
		if source.Std[c] > 0 {
			r = target.Std[c] / source.Std[c]
		}
		ratio[c] = math.Max(ct.StdClamp[0], math.Min(ct.StdClamp[1], r))
	}

	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := out.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if out.Pix[i+3] == 0 {
				i += 4
				continue
			}
			p := [3]float64{float64(out.Pix[i+0]), float64(out.Pix[i+1]), float64(out.Pix[i+2])}

			atten := 1.0
			if ct.PreserveHighlights {
				avg := (p[0] + p[1] + p[2]) / 3
				if avg > 235 {
					atten = 0.3
				} else if avg > 210 {
					atten = 0.6
				}
			}
			mix := clampFloat(ct.Strength*atten, 0, 1)

			for c := 0; c < 3; c++ {
				transferred := (p[c]-source.Mean[c])*ratio[c] + target.Mean[c]
				v := p[c]*(1-mix) + transferred*mix
				out.Pix[i+c] = uint8(math.RoundToEven(clampFloatToUint8(v)))
			}
			i += 4
		}
	}
	return out
}
