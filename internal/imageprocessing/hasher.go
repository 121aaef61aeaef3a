package imageprocessing

import (
	"crypto/sha256"
	"encoding/hex"
	"image"

	"github.com/pkg/errors"
)

// Domain tags opening the token sequence of a fingerprint.
const (
	imageTag = "IMAGE"
	videoTag = "VIDEO"
)

// Kind tells still images and animations apart.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Fingerprint is the lowercase hex SHA-256 digest of a frame source's
// token sequence. Equal fingerprints mean duplicate inputs.
type Fingerprint string

// Equal reports whether two fingerprints identify duplicates.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f == o
}

func (f Fingerprint) String() string {
	return string(f)
}

// Hasher computes perceptual fingerprints. Its configuration and derived
// values are fixed at construction, so a Hasher is safe for concurrent
// use; frame sources are not.
type Hasher struct {
	cfg         Config
	coeffSplit  float64
	heightSplit float64
	fpRate      float64
	cols        *dctBasis
}

// NewHasher validates cfg and precomputes every derived value.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clone()
	h := &Hasher{
		cfg:        cfg,
		coeffSplit: float64(MaxDCTCoeff-MinDCTCoeff+1) / float64(cfg.DCTCoeffBuckets),
		fpRate:     1 / float64(cfg.DCTCoreWidth*cfg.DCTCoreWidth*cfg.DCTCoeffBuckets),
		cols:       newDCTBasis(cfg.StandardWidth-2*cfg.EdgeWidth, cfg.DCTCoreWidth),
	}
	if cfg.HeightBuckets > 0 {
		h.heightSplit = float64(cfg.StandardWidth) / float64(cfg.HeightBuckets)
	}
	return h, nil
}

func (h *Hasher) Config() Config { return h.cfg.clone() }
func (h *Hasher) StandardWidth() int { return h.cfg.StandardWidth }
func (h *Hasher) EdgeWidth() int { return h.cfg.EdgeWidth }
func (h *Hasher) KeyFrames() []int { return append([]int(nil), h.cfg.KeyFrames...) }
func (h *Hasher) DCTCoreWidth() int { return h.cfg.DCTCoreWidth }
func (h *Hasher) DCTCoeffBuckets() int { return h.cfg.DCTCoeffBuckets }
func (h *Hasher) DCTCoeffSplit() float64 { return h.coeffSplit }
func (h *Hasher) HeightBuckets() int { return h.cfg.HeightBuckets }

// HeightSplit is the bucket width applied to resized heights, or 0 when
// heights are not bucketed.
func (h *Hasher) HeightSplit() float64 { return h.heightSplit }

// LowerBoundFPRate is the collision probability of two unrelated inputs
// if coefficients were uniformly distributed. It describes the
// discriminating power of the configuration, nothing is enforced.
func (h *Hasher) LowerBoundFPRate() float64 { return h.fpRate }

// Fingerprint hashes a still image or the configured key frames of an
// animation. The source's cursor is left on frame 0.
func (h *Hasher) Fingerprint(src FrameSource) (Fingerprint, error) {
	fp, _, err := h.FingerprintKind(src)
	return fp, err
}

// FingerprintKind is Fingerprint that also reports how src was classified.
func (h *Hasher) FingerprintKind(src FrameSource) (Fingerprint, Kind, error) {
	multi, err := isMultiFrame(src)
	if err != nil {
		return "", "", err
	}
	var tokens []string
	kind := KindImage
	if multi {
		kind = KindVideo
		tokens, err = h.videoTokens(src)
	} else {
		tokens, err = h.imageTokens(src)
	}
	if err != nil {
		return "", "", err
	}
	return digest(tokens), kind, nil
}

// FingerprintImage hashes a single decoded image.
func (h *Hasher) FingerprintImage(img image.Image) (Fingerprint, error) {
	return h.Fingerprint(NewStillFrame(img))
}

// AreDuplicates reports whether a and b have equal fingerprints.
func (h *Hasher) AreDuplicates(a, b FrameSource) (bool, error) {
	fa, err := h.Fingerprint(a)
	if err != nil {
		return false, err
	}
	fb, err := h.Fingerprint(b)
	if err != nil {
		return false, err
	}
	return fa.Equal(fb), nil
}

func (h *Hasher) imageTokens(src FrameSource) ([]string, error) {
	f, err := h.currentFrame(src)
	if err != nil {
		return nil, err
	}
	coeffs, err := h.frameTokens(f)
	if err != nil {
		return nil, err
	}
	return append([]string{imageTag, h.heightToken(f.height)}, coeffs...), nil
}

// videoTokens walks frames 0, 1, 2, ... and the ascending key frames in
// lockstep, transforming every frame that is a key frame. It stops when
// either sequence runs out and rewinds src afterwards.
func (h *Hasher) videoTokens(src FrameSource) (tokens []string, err error) {
	defer func() {
		if serr := src.Seek(0); serr != nil && err == nil {
			err = errors.Wrapf(ErrInputContract, "cannot rewind to first frame: %v", serr)
		}
	}()

	keys := h.cfg.KeyFrames
	tokens = []string{videoTag}
	next := 0
	for frame := 0; next < len(keys); frame++ {
		if frame > 0 {
			if err := src.Seek(frame); err != nil {
				if errors.Is(err, ErrEndOfFrames) {
					break
				}
				return nil, errors.Wrap(ErrInputContract, err.Error())
			}
		}
		if frame != keys[next] {
			continue
		}
		next++

		f, err := h.currentFrame(src)
		if err != nil {
			return nil, err
		}
		coeffs, err := h.frameTokens(f)
		if err != nil {
			return nil, err
		}
		if len(tokens) == 1 {
			tokens = append(tokens, h.heightToken(f.height))
		}
		tokens = append(tokens, coeffs...)
	}
	return tokens, nil
}

func (h *Hasher) currentFrame(src FrameSource) (*lumaFrame, error) {
	img, err := src.Frame()
	if err != nil {
		return nil, errors.Wrap(ErrInputContract, err.Error())
	}
	return resizeFrame(img, h.cfg.StandardWidth)
}

// digest folds the tokens, in order, into a fresh SHA-256.
func digest(tokens []string) Fingerprint {
	sum := sha256.New()
	for _, t := range tokens {
		sum.Write([]byte(t))
	}
	return Fingerprint(hex.EncodeToString(sum.Sum(nil)))
}
