package imageprocessing

import (
	"image"
	"image/draw"
	"image/gif"

	"github.com/pkg/errors"
)

// FrameSource is a decoded still image or animation with a sequential
// cursor. Seek must accept frame 0 and the frame directly after the
// current one; it returns ErrEndOfFrames past the last frame.
//
// A FrameSource is not safe for concurrent use.
type FrameSource interface {
	Seek(frame int) error
	Frame() (image.Image, error)
}

// MultiFrameSource is implemented by sources that know whether they hold
// more than one frame without probing.
type MultiFrameSource interface {
	FrameSource
	IsMultiFrame() bool
}

// frameSequence serves frames from an in-memory slice.
type frameSequence struct {
	frames []image.Image
	pos    int
}

// NewStillFrame wraps a single image.
func NewStillFrame(img image.Image) FrameSource {
	return &frameSequence{frames: []image.Image{img}}
}

// NewFrameSequence wraps already decoded frames in display order.
func NewFrameSequence(frames []image.Image) FrameSource {
	return &frameSequence{frames: frames}
}

func (s *frameSequence) Seek(frame int) error {
	if frame != 0 && frame != s.pos+1 {
		return errors.Wrapf(ErrInvalidSeek, "seek to %d from %d", frame, s.pos)
	}
	if frame >= len(s.frames) {
		return ErrEndOfFrames
	}
	s.pos = frame
	return nil
}

func (s *frameSequence) Frame() (image.Image, error) {
	if s.pos >= len(s.frames) {
		return nil, errors.Wrap(ErrInputContract, "no frame at cursor")
	}
	return s.frames[s.pos], nil
}

func (s *frameSequence) IsMultiFrame() bool {
	return len(s.frames) > 1
}

// GIFFrames renders the frames of an animated GIF. Frames in a GIF are
// often partial patches over the previous ones, so each one is
// composited onto a full canvas honouring the disposal method.
type GIFFrames struct {
	g      *gif.GIF
	canvas *image.RGBA
	prev   *image.RGBA
	pos    int
}

// NewGIFFrames returns a frame source positioned at frame 0.
func NewGIFFrames(g *gif.GIF) *GIFFrames {
	f := &GIFFrames{g: g}
	if len(g.Image) > 0 {
		f.reset()
	}
	return f
}

func (f *GIFFrames) bounds() image.Rectangle {
	if f.g.Config.Width > 0 && f.g.Config.Height > 0 {
		return image.Rect(0, 0, f.g.Config.Width, f.g.Config.Height)
	}
	return f.g.Image[0].Bounds()
}

func (f *GIFFrames) reset() {
	f.canvas = image.NewRGBA(f.bounds())
	f.prev = nil
	f.pos = 0
	f.paint(0)
}

func (f *GIFFrames) disposal(i int) byte {
	if i < len(f.g.Disposal) {
		return f.g.Disposal[i]
	}
	return gif.DisposalNone
}

func (f *GIFFrames) paint(i int) {
	if f.disposal(i) == gif.DisposalPrevious {
		f.prev = image.NewRGBA(f.canvas.Bounds())
		draw.Draw(f.prev, f.prev.Bounds(), f.canvas, f.canvas.Bounds().Min, draw.Src)
	}
	frame := f.g.Image[i]
	draw.Draw(f.canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
}

func (f *GIFFrames) dispose(i int) {
	switch f.disposal(i) {
	case gif.DisposalBackground:
		draw.Draw(f.canvas, f.g.Image[i].Bounds(), image.Transparent, image.Point{}, draw.Src)
	case gif.DisposalPrevious:
		if f.prev != nil {
			draw.Draw(f.canvas, f.canvas.Bounds(), f.prev, f.prev.Bounds().Min, draw.Src)
		}
	}
}

// Seek moves to frame 0 or to the next frame.
func (f *GIFFrames) Seek(frame int) error {
	if len(f.g.Image) == 0 {
		return errors.Wrap(ErrInputContract, "gif has no frames")
	}
	switch {
	case frame == 0:
		f.reset()
		return nil
	case frame != f.pos+1:
		return errors.Wrapf(ErrInvalidSeek, "seek to %d from %d", frame, f.pos)
	case frame >= len(f.g.Image):
		return ErrEndOfFrames
	}
	f.dispose(f.pos)
	f.pos = frame
	f.paint(frame)
	return nil
}

// Frame returns the composited canvas at the cursor. The returned image
// is reused by later seeks.
func (f *GIFFrames) Frame() (image.Image, error) {
	if f.canvas == nil {
		return nil, errors.Wrap(ErrInputContract, "gif has no frames")
	}
	return f.canvas, nil
}

// IsMultiFrame reports whether the GIF is animated.
func (f *GIFFrames) IsMultiFrame() bool {
	return len(f.g.Image) > 1
}

// isMultiFrame classifies src as still or animated and leaves its
// cursor on frame 0.
func isMultiFrame(src FrameSource) (bool, error) {
	var multi bool
	if mf, ok := src.(MultiFrameSource); ok {
		multi = mf.IsMultiFrame()
	} else {
		err := src.Seek(1)
		switch {
		case err == nil:
			multi = true
		case !errors.Is(err, ErrEndOfFrames):
			return false, errors.Wrap(ErrInputContract, err.Error())
		}
	}
	if err := src.Seek(0); err != nil {
		return false, errors.Wrapf(ErrInputContract, "cannot rewind to first frame: %v", err)
	}
	return multi, nil
}
