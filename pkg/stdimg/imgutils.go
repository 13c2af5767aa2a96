package stdimg

import (
	"image"
	"image/draw"
)

// ToNRGBA converts any image.Image to a freshly allocated *image.NRGBA
// (non-premultiplied RGBA) whose bounds start at the origin.
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		// row copy keeps sub-images and padded strides intact
		w := b.Dx() * 4
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := out.PixOffset(0, y)
			copy(out.Pix[di:di+w], n.Pix[si:si+w])
		}
		return out
	}
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return out
}

// CloneNRGBA returns a copy of the provided image.NRGBA
func CloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := image.NewNRGBA(src.Rect)
	w := src.Rect.Dx() * 4
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		i := src.PixOffset(src.Rect.Min.X, y)
		o := out.PixOffset(src.Rect.Min.X, y)
		copy(out.Pix[o:o+w], src.Pix[i:i+w])
	}
	return out
}

// clampFloat clamps v to [lo,hi]
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloatToUint8 ensures v in [0,255]
func clampFloatToUint8(v float64) float64 {
	return clampFloat(v, 0, 255)
}
