package halfsquare

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/exp/constraints"
	"golang.org/x/image/draw"
)

// ImageOps is the set of raster primitives the pipeline is built from.
type ImageOps interface {
	// Mask returns a size×size black square with the upper-left triangle
	// (0,0), (0,size), (size,0) filled in white, diagonal pixels included.
	Mask(size int) (image.Image, error)
	// Buffer returns a fully transparent size×size canvas.
	Buffer(size int) (image.Image, error)
	// Crop returns the size×size region at the top-left of img, rebased to (0,0).
	Crop(img image.Image, size int) (image.Image, error)
	// Negate inverts the tones of img.
	Negate(img image.Image) image.Image
	// ApplyMask replaces the alpha channel of img with the mask luminance,
	// or with the negated mask luminance when invert is set.
	ApplyMask(img, mask image.Image, invert bool) (image.Image, error)
	// Compose draws top over bottom using source-over blending.
	Compose(bottom, top image.Image) (image.Image, error)
}

// Engine implements ImageOps in process.
type Engine struct{}

var _ ImageOps = Engine{}

func (Engine) Mask(size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	// Pixels centred on the hypotenuse belong to the upper-left triangle: pushing
	// the edge half a pixel out gives them 7/8 coverage and their lower-right
	// neighbours 1/8, both far from the binarize threshold.
	s := float64(size) + 0.5

	ctx := gg.NewContext(size, size)
	ctx.SetRGB(0, 0, 0)
	ctx.Clear()
	ctx.MoveTo(0, 0)
	ctx.LineTo(0, s)
	ctx.LineTo(s, 0)
	ctx.ClosePath()
	ctx.SetRGB(1, 1, 1)
	ctx.Fill()

	return binarize(ctx.Image()), nil
}

func (Engine) Buffer(size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return imaging.New(size, size, color.NRGBA{}), nil
}

func (Engine) Crop(img image.Image, size int) (image.Image, error) {
	b := img.Bounds()
	if b.Dx() < size || b.Dy() < size {
		return nil, fmt.Errorf("%w: source is %dx%d, largest usable size is %d",
			ErrUndersized, b.Dx(), b.Dy(), Min(b.Dx(), b.Dy()))
	}
	return imaging.Crop(img, image.Rect(0, 0, size, size).Add(b.Min)), nil
}

func (Engine) Negate(img image.Image) image.Image {
	return imaging.Invert(img)
}

func (e Engine) ApplyMask(img, mask image.Image, invert bool) (image.Image, error) {
	if img.Bounds().Size() != mask.Bounds().Size() {
		return nil, fmt.Errorf("%w: image %v, mask %v", ErrSizeMismatch, img.Bounds().Size(), mask.Bounds().Size())
	}
	if invert {
		mask = e.Negate(mask)
	}

	// Both are packed NRGBA with their origin at (0,0), so offsets line up.
	dst := imaging.Clone(img)
	alpha := imaging.Grayscale(mask)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = alpha.Pix[i-3]
	}
	return dst, nil
}

func (Engine) Compose(bottom, top image.Image) (image.Image, error) {
	if bottom.Bounds().Size() != top.Bounds().Size() {
		return nil, fmt.Errorf("%w: %v over %v", ErrSizeMismatch, top.Bounds().Size(), bottom.Bounds().Size())
	}
	dst := imaging.Clone(bottom)
	draw.Draw(dst, dst.Bounds(), top, top.Bounds().Min, draw.Over)
	return dst, nil
}

// binarize snaps the antialiased polygon edge to pure black or white.
func binarize(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			lum := color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			if lum >= 0x80 {
				dst.Pix[dst.PixOffset(x, y)] = 0xff
			}
		}
	}
	return dst
}

// Min returns the smallest of the given values.
func Min[T constraints.Ordered](values ...T) T {
	acc := values[0]
	for _, v := range values {
		if v < acc {
			acc = v
		}
	}
	return acc
}
