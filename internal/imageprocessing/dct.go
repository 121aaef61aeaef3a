package imageprocessing

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// coeffPrecision is the grid coefficients are snapped to before
// bucketing, so floating point noise around bucket edges (notably zero)
// cannot change a token.
const coeffPrecision = 1e6

// dctBasis holds the first k rows of the orthonormal DCT-II matrix for
// signals of length n: basis[k][i] = s(k) * cos(pi * (2i+1) * k / 2n).
type dctBasis struct {
	n     int
	basis [][]float64
}

func newDCTBasis(n, k int) *dctBasis {
	b := &dctBasis{n: n, basis: make([][]float64, k)}
	for u := 0; u < k; u++ {
		scale := math.Sqrt(2 / float64(n))
		if u == 0 {
			scale = math.Sqrt(1 / float64(n))
		}
		row := make([]float64, n)
		for i := 0; i < n; i++ {
			row[i] = scale * math.Cos(math.Pi*float64(2*i+1)*float64(u)/float64(2*n))
		}
		b.basis[u] = row
	}
	return b
}

// dctCore returns the top-left c×c block of the 2-D DCT-II of the region
// of f starting at (edge, edge) with the given width and height, after
// removing the luma bias. Rows of the result are vertical frequencies.
// Only the retained frequencies are computed; the separable transform
// makes this identical to transforming everything and cropping.
func dctCore(f *lumaFrame, edge int, cols, rows *dctBasis) [][]float64 {
	c := len(cols.basis)
	w, h := cols.n, rows.n

	// row pass: horizontal frequencies of every row
	horiz := make([][]float64, h)
	for y := 0; y < h; y++ {
		out := make([]float64, c)
		for u := 0; u < c; u++ {
			var sum float64
			basis := cols.basis[u]
			for x := 0; x < w; x++ {
				sum += (f.at(x+edge, y+edge) - lumaBias) * basis[x]
			}
			out[u] = sum
		}
		horiz[y] = out
	}

	// column pass over the retained horizontal frequencies
	core := make([][]float64, c)
	for v := 0; v < c; v++ {
		out := make([]float64, c)
		basis := rows.basis[v]
		for u := 0; u < c; u++ {
			var sum float64
			for y := 0; y < h; y++ {
				sum += horiz[y][u] * basis[y]
			}
			out[u] = sum
		}
		core[v] = out
	}
	return core
}

// quantize clamps a coefficient to the supported range and maps it to
// its bucket index.
func quantize(coeff, split float64) int {
	coeff = math.Round(coeff*coeffPrecision) / coeffPrecision
	if coeff < MinDCTCoeff {
		coeff = MinDCTCoeff
	}
	if coeff > MaxDCTCoeff {
		coeff = MaxDCTCoeff
	}
	return int(math.Floor(coeff / split))
}

// coeffToken renders a bucket with an explicit sign and fixed width, so
// concatenated tokens have unambiguous boundaries.
func coeffToken(bucket int) string {
	return fmt.Sprintf("%+05d", bucket)
}

// frameTokens runs the frame transform on a resized frame and returns
// the quantized coefficient tokens in row-major order.
func (h *Hasher) frameTokens(f *lumaFrame) ([]string, error) {
	e, c := h.cfg.EdgeWidth, h.cfg.DCTCoreWidth
	tw, th := f.width-2*e, f.height-2*e
	if tw != h.cols.n {
		return nil, errors.Wrapf(ErrInputContract, "frame width %d does not match standard width %d", f.width, h.cfg.StandardWidth)
	}
	if th < c {
		return nil, errors.Wrapf(ErrInputContract, "trimmed height %d is smaller than dct core width %d", th, c)
	}

	core := dctCore(f, e, h.cols, newDCTBasis(th, c))
	tokens := make([]string, 0, c*c)
	for v := 0; v < c; v++ {
		for u := 0; u < c; u++ {
			tokens = append(tokens, coeffToken(quantize(core[v][u], h.coeffSplit)))
		}
	}
	return tokens, nil
}

// heightToken renders the resized height, bucketed when enabled.
func (h *Hasher) heightToken(height int) string {
	if h.cfg.HeightBuckets == 0 {
		return fmt.Sprintf("%d", height)
	}
	return fmt.Sprintf("%d", int(math.Floor(float64(height)/h.heightSplit)))
}
