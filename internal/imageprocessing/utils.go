// Package imageprocessing computes perceptual fingerprints of still
// images and animations. Frames are reduced to luminance, resized to a
// standard width, trimmed, transformed with a 2-D DCT and the quantized
// low-frequency coefficients are digested into a fixed length hex string.
// Two inputs are duplicates iff their fingerprints are equal.
package imageprocessing

import (
	"bytes"
	"encoding/base64"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// SupportedImageFormats is a map of supported image file extensions
var SupportedImageFormats = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
	".pbm":  true,
	".pgm":  true,
	".ppm":  true,
	".pam":  true,
}

// IsImageFile checks if the file extension is a supported image format
func IsImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedImageFormats[ext]
}

// GenerateThumbnail creates a smaller version of the image
// and returns it as a base64-encoded JPEG
func GenerateThumbnail(img image.Image, size int) string {
	thumbnail := imaging.Resize(img, size, 0, imaging.Lanczos)

	var buf bytes.Buffer
	err := imaging.Encode(&buf, thumbnail, imaging.JPEG)
	if err != nil {
		return ""
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
