package imageprocessing

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// lumaFrame is a single-channel frame with samples in [0, 255].
type lumaFrame struct {
	width  int
	height int
	pix    []float64
}

func newLumaFrame(width, height int) *lumaFrame {
	return &lumaFrame{width: width, height: height, pix: make([]float64, width*height)}
}

func (f *lumaFrame) at(x, y int) float64 {
	return f.pix[y*f.width+x]
}

// resizedHeight keeps the native aspect ratio and rounds up to an even
// height so edges can be trimmed symmetrically.
func resizedHeight(srcWidth, srcHeight, width int) int {
	h := int(float64(srcHeight) / float64(srcWidth) * float64(width))
	if h%2 == 1 {
		h++
	}
	if h < 2 {
		h = 2
	}
	return h
}

// resizeFrame converts img to luminance and resamples it to the given
// width with a Lanczos filter.
func resizeFrame(img image.Image, width int) (*lumaFrame, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.Wrapf(ErrInputContract, "empty frame %dx%d", b.Dx(), b.Dy())
	}
	height := resizedHeight(b.Dx(), b.Dy(), width)

	gray := imaging.Grayscale(img)
	resized := imaging.Resize(gray, width, height, imaging.Lanczos)

	f := newLumaFrame(width, height)
	for y := 0; y < height; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < width; x++ {
			// grayscale output has R == G == B
			f.pix[y*width+x] = float64(row[x*4])
		}
	}
	return f, nil
}
