package imageprocessing

import (
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizedHeight(t *testing.T) {
	tests := []struct {
		srcW, srcH, width int
		want              int
	}{
		{32, 32, 32, 32},
		{100, 50, 32, 16},
		{100, 53, 32, 16},
		{10, 17, 32, 54},
		{3, 1, 32, 10},
		{32, 33, 32, 34},
		{64, 27, 32, 14},
		{1000, 1, 32, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resizedHeight(tt.srcW, tt.srcH, tt.width), "%dx%d to width %d", tt.srcW, tt.srcH, tt.width)
	}
}

func TestResizeFrameUsesNativeAspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 110, 70))
	f, err := resizeFrame(img, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, f.width)
	assert.Equal(t, 16, f.height)
	assert.Len(t, f.pix, 32*16)
}

func TestFrameSequenceSeek(t *testing.T) {
	a := image.NewGray(image.Rect(0, 0, 2, 2))
	b := image.NewGray(image.Rect(0, 0, 2, 2))
	src := NewFrameSequence([]image.Image{a, b})

	require.NoError(t, src.Seek(0))
	assert.ErrorIs(t, src.Seek(2), ErrInvalidSeek)
	require.NoError(t, src.Seek(1))

	got, err := src.Frame()
	require.NoError(t, err)
	assert.Same(t, b, got)

	assert.ErrorIs(t, src.Seek(2), ErrEndOfFrames)
	require.NoError(t, src.Seek(0))
	got, err = src.Frame()
	require.NoError(t, err)
	assert.Same(t, a, got)
}

// probeSource hides the frame count of a sequence.
type probeSource struct {
	FrameSource
}

func TestIsMultiFrameResetsCursor(t *testing.T) {
	frames := []image.Image{image.NewGray(image.Rect(0, 0, 1, 1)), image.NewGray(image.Rect(0, 0, 1, 1))}

	for _, tt := range []struct {
		name string
		src  FrameSource
		want bool
	}{
		{"capability still", NewFrameSequence(frames[:1]), false},
		{"capability animation", NewFrameSequence(frames), true},
		{"probe still", probeSource{NewFrameSequence(frames[:1])}, false},
		{"probe animation", probeSource{NewFrameSequence(frames)}, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			multi, err := isMultiFrame(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, multi)

			// cursor is back on frame 0, so the next step forward is frame 1
			got, err := tt.src.Frame()
			require.NoError(t, err)
			assert.Same(t, frames[0], got)
		})
	}
}

func TestGIFFramesComposite(t *testing.T) {
	palette := color.Palette{color.Transparent, color.Black, color.White}
	full := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
	for i := range full.Pix {
		full.Pix[i] = 1
	}
	patch := image.NewPaletted(image.Rect(1, 1, 3, 3), palette)
	for i := range patch.Pix {
		patch.Pix[i] = 2
	}
	src := NewGIFFrames(&gif.GIF{
		Image:    []*image.Paletted{full, patch},
		Delay:    []int{0, 0},
		Disposal: []byte{gif.DisposalNone, gif.DisposalNone},
		Config:   image.Config{Width: 4, Height: 4},
	})
	assert.True(t, src.IsMultiFrame())

	require.NoError(t, src.Seek(1))
	img, err := src.Frame()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Zero(t, r, "pixel outside the patch keeps frame 0")
	r, _, _, _ = img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r, "patch is drawn over frame 0")

	assert.ErrorIs(t, src.Seek(2), ErrEndOfFrames)
	assert.ErrorIs(t, src.Seek(5), ErrInvalidSeek)

	require.NoError(t, src.Seek(0))
	img, err = src.Frame()
	require.NoError(t, err)
	r, _, _, _ = img.At(2, 2).RGBA()
	assert.Zero(t, r, "rewinding repaints frame 0")
}
