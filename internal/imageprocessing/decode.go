package imageprocessing

import (
	"bytes"
	"image"
	"image/gif"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	// extra decoders registered with the image package
	_ "github.com/spakin/netpbm"
	_ "golang.org/x/image/webp"
)

// DecodeFrames decodes r into a frame source. GIFs keep all their
// frames; every other registered format is decoded as a still, honouring
// the EXIF orientation. The returned string names the detected format.
func DecodeFrames(r io.Reader) (FrameSource, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read image data")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(ErrUnsupportedFormat, err.Error())
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to decode gif")
		}
		if len(g.Image) == 0 {
			return nil, "", errors.Wrap(ErrUnsupportedFormat, "gif without frames")
		}
		return NewGIFFrames(g), format, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to decode %s", format)
	}
	return NewStillFrame(img), format, nil
}

// FirstFrame returns frame 0 of src, used for thumbnails and dimensions.
func FirstFrame(src FrameSource) (image.Image, error) {
	if err := src.Seek(0); err != nil {
		return nil, errors.Wrap(ErrInputContract, err.Error())
	}
	return src.Frame()
}
