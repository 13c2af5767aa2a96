package stdimg

import (
	"image"
)

// OpaqueBounds returns the tight bounding box of the pixels in src whose alpha
// is non-zero. Four directional scans (top-down, bottom-up, left-right and
// right-left) each stop at the first row or column holding a visible pixel.
// A fully transparent (or empty) image yields its full bounds, so the result
// always lies within src.Bounds().
func OpaqueBounds(src *image.NRGBA) image.Rectangle {
	if src == nil {
		return image.Rectangle{}
	}
	b := src.Bounds()
	if b.Empty() {
		return b
	}

	top := -1
	for y := b.Min.Y; y < b.Max.Y && top < 0; y++ {
		if rowVisible(src, y, b) {
			top = y
		}
	}
	bottom := -1
	for y := b.Max.Y - 1; y >= b.Min.Y && bottom < 0; y-- {
		if rowVisible(src, y, b) {
			bottom = y
		}
	}
	left := -1
	for x := b.Min.X; x < b.Max.X && left < 0; x++ {
		if columnVisible(src, x, b) {
			left = x
		}
	}
	right := -1
	for x := b.Max.X - 1; x >= b.Min.X && right < 0; x-- {
		if columnVisible(src, x, b) {
			right = x
		}
	}

	if top < 0 || bottom < 0 || left < 0 || right < 0 {
		return b
	}
	return image.Rect(left, top, right+1, bottom+1)
}

func rowVisible(src *image.NRGBA, y int, b image.Rectangle) bool {
	i := src.PixOffset(b.Min.X, y) + 3
	for x := b.Min.X; x < b.Max.X; x++ {
		if src.Pix[i] > 0 {
			return true
		}
		i += 4
	}
	return false
}

func columnVisible(src *image.NRGBA, x int, b image.Rectangle) bool {
	i := src.PixOffset(x, b.Min.Y) + 3
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if src.Pix[i] > 0 {
			return true
		}
		i += src.Stride
	}
	return false
}
