package halfsquare

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// gradient returns an opaque w×h image whose pixels encode their own coordinates.
func gradient(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: seed, A: 0xff})
		}
	}
	return img
}

func writePNG(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func readNRGBA(t testing.TB, path string) *image.NRGBA {
	t.Helper()
	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// upperLeft reports whether (x,y) belongs to the mask's white triangle,
// the pixels centred on the hypotenuse included.
func upperLeft(x, y, size int) bool { return x+y <= size-1 }

func lowerRight(x, y, size int) bool { return !upperLeft(x, y, size) }
