package stdimg

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawRegionUnscaledIsExact(t *testing.T) {
	bg := makeSolidNRGBA(80, 60, color.NRGBA{R: 255, A: 255})
	fg := image.NewNRGBA(image.Rect(0, 0, 30, 30))
	fillRect(fg, image.Rect(5, 5, 25, 25), color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	DrawRegion(bg, image.Rect(10, 20, 30, 40), fg, image.Rect(5, 5, 25, 25))

	if got := bg.NRGBAAt(10, 20); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Fatalf("expected exact copy at region origin, got %+v", got)
	}
	if got := bg.NRGBAAt(29, 39); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Fatalf("expected exact copy at region end, got %+v", got)
	}
	if got := bg.NRGBAAt(30, 40); got != (color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("pixel outside the region changed: %+v", got)
	}
}

func TestDrawRegionBlendsTranslucentSource(t *testing.T) {
	bg := makeSolidNRGBA(20, 20, color.NRGBA{R: 255, A: 255})
	fg := makeSolidNRGBA(20, 20, color.NRGBA{B: 255, A: 128})
	DrawRegion(bg, bg.Bounds(), fg, fg.Bounds())
	got := bg.NRGBAAt(10, 10)
	if got.A != 255 || got.R < 120 || got.R > 135 || got.B < 120 || got.B > 135 {
		t.Fatalf("expected an even red/blue blend, got %+v", got)
	}
}

func TestDrawRegionScales(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	src := makeSolidNRGBA(100, 100, color.NRGBA{G: 200, A: 255})
	DrawRegion(dst, image.Rect(0, 25, 25, 50), src, src.Bounds())
	if got := dst.NRGBAAt(12, 37); got != (color.NRGBA{G: 200, A: 255}) {
		t.Fatalf("expected scaled fill, got %+v", got)
	}
	if got := dst.NRGBAAt(30, 10); got.A != 0 {
		t.Fatalf("expected untouched pixel outside destination rect, got %+v", got)
	}
}

func TestFillImageStretches(t *testing.T) {
	dst := makeSolidNRGBA(40, 40, color.NRGBA{R: 9, A: 255})
	src := makeSolidNRGBA(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	FillImage(dst, src)
	for _, p := range []image.Point{{0, 0}, {39, 39}, {20, 5}} {
		if got := dst.NRGBAAt(p.X, p.Y); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
			t.Fatalf("pixel %v = %+v", p, got)
		}
	}
}
