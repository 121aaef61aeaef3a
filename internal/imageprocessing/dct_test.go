package imageprocessing

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformLuma(width, height int, v float64) *lumaFrame {
	f := newLumaFrame(width, height)
	for i := range f.pix {
		f.pix[i] = v
	}
	return f
}

// naiveDCT computes the full orthonormal 2-D DCT-II straight from the
// definition.
func naiveDCT(f *lumaFrame) [][]float64 {
	w, h := f.width, f.height
	alpha := func(k, n int) float64 {
		if k == 0 {
			return math.Sqrt(1 / float64(n))
		}
		return math.Sqrt(2 / float64(n))
	}
	out := make([][]float64, h)
	for v := 0; v < h; v++ {
		out[v] = make([]float64, w)
		for u := 0; u < w; u++ {
			var sum float64
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					sum += (f.at(x, y) - lumaBias) *
						math.Cos(math.Pi*float64(2*x+1)*float64(u)/float64(2*w)) *
						math.Cos(math.Pi*float64(2*y+1)*float64(v)/float64(2*h))
				}
			}
			out[v][u] = alpha(u, w) * alpha(v, h) * sum
		}
	}
	return out
}

func TestDCTCoreMatchesDefinition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := newLumaFrame(10, 6)
	for i := range f.pix {
		f.pix[i] = float64(rng.Intn(256))
	}

	full := naiveDCT(f)
	core := dctCore(f, 0, newDCTBasis(10, 4), newDCTBasis(6, 4))
	for v := 0; v < 4; v++ {
		for u := 0; u < 4; u++ {
			assert.InDelta(t, full[v][u], core[v][u], 1e-9, "coefficient (%d,%d)", v, u)
		}
	}
}

func TestDCTCoreOfUniformFrame(t *testing.T) {
	f := uniformLuma(32, 32, 159.3125)
	core := dctCore(f, 0, newDCTBasis(32, 2), newDCTBasis(32, 2))

	assert.InDelta(t, 1002.0, core[0][0], 1e-9)
	assert.InDelta(t, 0.0, core[0][1], 1e-9)
	assert.InDelta(t, 0.0, core[1][0], 1e-9)
	assert.InDelta(t, 0.0, core[1][1], 1e-9)
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		coeff float64
		split float64
		want  int
	}{
		{1002, 8, 125},
		{0, 8, 0},
		{-1e-12, 8, 0},
		{1e-12, 8, 0},
		{-0.5, 8, -1},
		{7.99, 8, 0},
		{8, 8, 1},
		{-8, 8, -1},
		{-8.01, 8, -2},
		{1023, 8, 127},
		{5000, 8, 127},
		{math.Inf(1), 8, 127},
		{-1024, 8, -128},
		{-99999, 8, -128},
		{1023, 16, 63},
		{100, 2048, 0},
		{-100, 2048, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quantize(tt.coeff, tt.split), "quantize(%v, %v)", tt.coeff, tt.split)
	}
}

func TestCoeffToken(t *testing.T) {
	assert.Equal(t, "+0125", coeffToken(125))
	assert.Equal(t, "+0000", coeffToken(0))
	assert.Equal(t, "-0003", coeffToken(-3))
	assert.Equal(t, "-1024", coeffToken(-1024))
	assert.Equal(t, "+1023", coeffToken(1023))
}

func TestFrameTokensConcreteScenario(t *testing.T) {
	h, err := NewHasher(Config{
		StandardWidth:   32,
		EdgeWidth:       0,
		KeyFrames:       []int{0},
		DCTCoreWidth:    1,
		DCTCoeffBuckets: 256,
		HeightBuckets:   4,
	})
	require.NoError(t, err)
	require.Equal(t, 8.0, h.DCTCoeffSplit())
	require.Equal(t, 8.0, h.HeightSplit())

	f := uniformLuma(32, 32, 159.3125)
	coeffs, err := h.frameTokens(f)
	require.NoError(t, err)

	tokens := append([]string{imageTag, h.heightToken(f.height)}, coeffs...)
	assert.Equal(t, []string{"IMAGE", "4", "+0125"}, tokens)

	sum := sha256.Sum256([]byte("IMAGE4+0125"))
	assert.Equal(t, Fingerprint(hex.EncodeToString(sum[:])), digest(tokens))
}

func TestFrameTokensIgnoreEdges(t *testing.T) {
	h, err := NewHasher(Config{
		StandardWidth:   16,
		EdgeWidth:       3,
		KeyFrames:       []int{0},
		DCTCoreWidth:    3,
		DCTCoeffBuckets: 128,
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	a := newLumaFrame(16, 12)
	for i := range a.pix {
		a.pix[i] = float64(rng.Intn(256))
	}
	b := newLumaFrame(16, 12)
	copy(b.pix, a.pix)
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			if x < 3 || x >= 13 || y < 3 || y >= 9 {
				b.pix[y*16+x] = 255 - a.pix[y*16+x]
			}
		}
	}

	ta, err := h.frameTokens(a)
	require.NoError(t, err)
	tb, err := h.frameTokens(b)
	require.NoError(t, err)
	assert.Equal(t, ta, tb)
	assert.Len(t, ta, 9)
}

func TestFrameTokensIgnoreHighFrequencies(t *testing.T) {
	h, err := NewHasher(Config{
		StandardWidth:   24,
		EdgeWidth:       0,
		KeyFrames:       []int{0},
		DCTCoreWidth:    4,
		DCTCoeffBuckets: 64,
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	base := newLumaFrame(24, 24)
	for i := range base.pix {
		base.pix[i] = 64 + float64(rng.Intn(128))
	}

	// add a pure high frequency basis image, orthogonal to the core
	full := newDCTBasis(24, 24)
	noisy := newLumaFrame(24, 24)
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			noisy.pix[y*24+x] = base.at(x, y) + 300*full.basis[20][x]*full.basis[17][y]
		}
	}

	ta, err := h.frameTokens(base)
	require.NoError(t, err)
	tb, err := h.frameTokens(noisy)
	require.NoError(t, err)
	assert.Equal(t, ta, tb)
	assert.NotEqual(t, base.pix, noisy.pix)
}

func TestFrameTokensRejectsShortFrames(t *testing.T) {
	h, err := NewHasher(Config{
		StandardWidth:   32,
		EdgeWidth:       4,
		KeyFrames:       []int{0},
		DCTCoreWidth:    4,
		DCTCoeffBuckets: 64,
	})
	require.NoError(t, err)

	_, err = h.frameTokens(uniformLuma(32, 10, 10))
	assert.ErrorIs(t, err, ErrInputContract)

	_, err = h.frameTokens(uniformLuma(16, 32, 10))
	assert.ErrorIs(t, err, ErrInputContract)
}
