package stdimg

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

func makeSolidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
	}
	return img
}

// fillRect paints r with c, in place.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// saveTestOutput dumps img for manual inspection when IMGFUSE_SAVE_TEST_OUTPUT=1.
func saveTestOutput(t *testing.T, name string, img image.Image) {
	t.Helper()
	if os.Getenv("IMGFUSE_SAVE_TEST_OUTPUT") != "1" {
		return
	}
	f, err := os.Create(name)
	if err != nil {
		t.Logf("save %s: %v", name, err)
		return
	}
	defer f.Close()
	_ = png.Encode(f, img)
}

func TestToNRGBAFromRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	// premultiplied half-transparent red
	src.SetRGBA(5, 5, color.RGBA{R: 128, G: 0, B: 0, A: 128})
	src.SetRGBA(6, 5, color.RGBA{R: 0, G: 0, B: 255, A: 255})

	out := ToNRGBA(src)
	if out.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("expected bounds at origin, got %v", out.Bounds())
	}
	if got := out.NRGBAAt(0, 0); got.R != 255 || got.A != 128 {
		t.Fatalf("expected unpremultiplied red, got %+v", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{B: 255, A: 255}) {
		t.Fatalf("unexpected second pixel %+v", got)
	}
}

func TestToNRGBASubImageCopies(t *testing.T) {
	base := makeSolidNRGBA(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	base.SetNRGBA(4, 4, color.NRGBA{R: 9, G: 9, B: 9, A: 9})
	sub := base.SubImage(image.Rect(4, 4, 6, 6)).(*image.NRGBA)

	out := ToNRGBA(sub)
	if len(out.Pix) != 2*2*4 {
		t.Fatalf("expected tightly packed pixels, got %d bytes", len(out.Pix))
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 9, G: 9, B: 9, A: 9}) {
		t.Fatalf("unexpected origin pixel %+v", got)
	}
	out.Pix[0] = 200
	if base.Pix[base.PixOffset(4, 4)] != 9 {
		t.Fatalf("ToNRGBA must not alias its input")
	}
}

func TestCloneNRGBA(t *testing.T) {
	src := makeSolidNRGBA(3, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	out := CloneNRGBA(src)
	if out == src || &out.Pix[0] == &src.Pix[0] {
		t.Fatalf("clone shares storage with its source")
	}
	for i := range src.Pix {
		if src.Pix[i] != out.Pix[i] {
			t.Fatalf("byte %d differs: %d vs %d", i, src.Pix[i], out.Pix[i])
		}
	}
	if CloneNRGBA(nil) != nil {
		t.Fatalf("expected nil clone of nil")
	}
}
