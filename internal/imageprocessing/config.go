package imageprocessing

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Error definitions
var (
	ErrInvalidConfig     = stderrors.New("invalid hasher configuration")
	ErrInputContract     = stderrors.New("frame source violates input contract")
	ErrEndOfFrames       = stderrors.New("end of frames")
	ErrInvalidSeek       = stderrors.New("frame source supports only sequential seeking")
	ErrUnsupportedFormat = stderrors.New("unsupported image format")
)

// Coefficient clamp range and the bias removed from luminance samples
// before the transform.
const (
	MinDCTCoeff = -1024
	MaxDCTCoeff = 1023
	lumaBias    = 128.0
)

// Config holds the tunable parameters of a Hasher.
type Config struct {
	StandardWidth   int   `json:"standard_width"`
	EdgeWidth       int   `json:"edge_width"`
	KeyFrames       []int `json:"key_frames"`
	DCTCoreWidth    int   `json:"dct_core_width"`
	DCTCoeffBuckets int   `json:"dct_coeff_buckets"`
	HeightBuckets   int   `json:"height_buckets"` // 0 keeps the raw resized height
}

// DefaultConfig returns the parameters used by the service when no
// profile is given.
func DefaultConfig() Config {
	return Config{
		StandardWidth:   128,
		EdgeWidth:       2,
		KeyFrames:       []int{0, 5, 10, 20, 40, 80},
		DCTCoreWidth:    4,
		DCTCoeffBuckets: 128,
		HeightBuckets:   32,
	}
}

// Validate checks every constraint of the configuration.
func (c Config) Validate() error {
	if c.StandardWidth <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "standard width must be positive, got %d", c.StandardWidth)
	}
	if c.EdgeWidth < 0 || c.EdgeWidth > c.StandardWidth/2 {
		return errors.Wrapf(ErrInvalidConfig, "edge width must be in [0, %d], got %d", c.StandardWidth/2, c.EdgeWidth)
	}
	if len(c.KeyFrames) == 0 {
		return errors.Wrap(ErrInvalidConfig, "key frame set is empty")
	}
	for i, k := range c.KeyFrames {
		if k < 0 {
			return errors.Wrapf(ErrInvalidConfig, "key frame %d is negative", k)
		}
		if i > 0 && k <= c.KeyFrames[i-1] {
			return errors.Wrapf(ErrInvalidConfig, "key frames must be strictly ascending, got %d after %d", k, c.KeyFrames[i-1])
		}
	}
	trimmed := c.StandardWidth - 2*c.EdgeWidth
	if c.DCTCoreWidth <= 0 || c.DCTCoreWidth > trimmed {
		return errors.Wrapf(ErrInvalidConfig, "dct core width must be in [1, %d], got %d", trimmed, c.DCTCoreWidth)
	}
	if c.DCTCoeffBuckets <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "dct coefficient buckets must be positive, got %d", c.DCTCoeffBuckets)
	}
	if c.HeightBuckets < 0 {
		return errors.Wrapf(ErrInvalidConfig, "height buckets must not be negative, got %d", c.HeightBuckets)
	}
	return nil
}

// Equal reports whether two configurations produce comparable fingerprints.
func (c Config) Equal(o Config) bool {
	if c.StandardWidth != o.StandardWidth || c.EdgeWidth != o.EdgeWidth ||
		c.DCTCoreWidth != o.DCTCoreWidth || c.DCTCoeffBuckets != o.DCTCoeffBuckets ||
		c.HeightBuckets != o.HeightBuckets || len(c.KeyFrames) != len(o.KeyFrames) {
		return false
	}
	for i := range c.KeyFrames {
		if c.KeyFrames[i] != o.KeyFrames[i] {
			return false
		}
	}
	return true
}

func (c Config) clone() Config {
	c.KeyFrames = append([]int(nil), c.KeyFrames...)
	return c
}
