package stdimg

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// DrawRegion draws the sr region of src onto dst inside dr using source-over
// compositing. When the sizes differ the region is resampled bilinearly,
// which is what a 2D canvas does by default; an unscaled region is copied
// exactly.
func DrawRegion(dst xdraw.Image, dr image.Rectangle, src image.Image, sr image.Rectangle) {
	if dst == nil || src == nil || dr.Empty() || sr.Empty() {
		return
	}
	if dr.Dx() == sr.Dx() && dr.Dy() == sr.Dy() {
		xdraw.Draw(dst, dr, src, sr.Min, xdraw.Over)
		return
	}
	xdraw.BiLinear.Scale(dst, dr, src, sr, xdraw.Over, nil)
}

// FillImage replaces the whole of dst with src stretched to dst's bounds.
func FillImage(dst xdraw.Image, src image.Image) {
	if dst == nil || src == nil {
		return
	}
	db := dst.Bounds()
	sb := src.Bounds()
	if db.Dx() == sb.Dx() && db.Dy() == sb.Dy() {
		xdraw.Draw(dst, db, src, sb.Min, xdraw.Src)
		return
	}
	xdraw.BiLinear.Scale(dst, db, src, sb, xdraw.Src, nil)
}
