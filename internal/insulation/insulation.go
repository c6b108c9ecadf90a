// Package insulation computes the Crane-style insulation profile of a
// contact map and locates TAD boundaries as prominent local minima of
// the normalized profile.
package insulation

import (
	"math"

	"github.com/strandline/hicqc/internal/contact"
)

// Default analysis parameters.
const (
	DefaultWindowSize = 10
	DefaultProminence = 0.1
)

// Boundary is a detected TAD boundary: a position in the matrix's
// overview coordinate space and its prominence in the normalized
// profile. Strength is always positive.
type Boundary struct {
	Position int
	Strength float64
}

// Result holds the insulation profile at every matrix position. Raw and
// Normalized are parallel to the matrix axis; Boundaries are a strictly
// increasing subset of positions.
type Result struct {
	Raw        []float64
	Normalized []float64
	Boundaries []Boundary
	WindowSize int
}

// Scores computes the raw insulation score for each position p: the mean
// intensity of the window crossing p, i over [p-w, p) and j over
// [p, p+w), both clamped to the matrix. An empty window (p=0, or a
// zero-size matrix) scores 0.
func Scores(m contact.Matrix, windowSize int) []float64 {
	size := m.Size
	if size <= 0 {
		return nil
	}

	w := windowSize
	if w < 1 {
		w = 1
	}
	if half := size / 2; w > half && half >= 1 {
		w = half
	}

	scores := make([]float64, size)
	for p := 0; p < size; p++ {
		lo := p - w
		if lo < 0 {
			lo = 0
		}
		hi := p + w
		if hi > size {
			hi = size
		}

		sum := 0.0
		count := 0
		for i := lo; i < p; i++ {
			for j := p; j < hi; j++ {
				if i == j {
					continue
				}
				sum += m.At(i, j)
				count++
			}
		}
		if count > 0 {
			scores[p] = sum / float64(count)
		}
	}
	return scores
}

// Normalize maps raw scores through log2(x+1e-10) and min-max scales the
// result to [0,1]. A flat profile normalizes to all zeros rather than
// NaN.
func Normalize(raw []float64) []float64 {
	norm := make([]float64, len(raw))
	if len(raw) == 0 {
		return norm
	}

	logs := make([]float64, len(raw))
	minV := math.Inf(1)
	maxV := math.Inf(-1)
	for i, x := range raw {
		v := math.Log2(x + 1e-10)
		logs[i] = v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	span := maxV - minV
	if span == 0 {
		return norm
	}
	for i, v := range logs {
		norm[i] = (v - minV) / span
	}
	return norm
}

// DetectBoundaries finds strict local minima of the normalized profile
// whose prominence meets the threshold. Prominence is the smaller of the
// climbs from the valley to the highest value within windowSize
// positions on each side. Fewer than three positions yields no
// boundaries. Output preserves scan order, so positions are strictly
// increasing.
func DetectBoundaries(normalized []float64, prominence float64, windowSize int) []Boundary {
	n := len(normalized)
	if n < 3 {
		return nil
	}

	var boundaries []Boundary
	for p := 1; p <= n-2; p++ {
		v := normalized[p]
		if v >= normalized[p-1] || v >= normalized[p+1] {
			continue
		}

		leftPeak := peak(normalized, p-windowSize, p)
		rightPeak := peak(normalized, p+1, p+1+windowSize)

		strength := math.Min(leftPeak-v, rightPeak-v)
		if strength >= prominence {
			boundaries = append(boundaries, Boundary{Position: p, Strength: strength})
		}
	}
	return boundaries
}

// peak returns the maximum of xs over [lo, hi) clamped to the slice.
func peak(xs []float64, lo, hi int) float64 {
	if lo < 0 {
		lo = 0
	}
	if hi > len(xs) {
		hi = len(xs)
	}
	max := math.Inf(-1)
	for i := lo; i < hi; i++ {
		if xs[i] > max {
			max = xs[i]
		}
	}
	return max
}

// Compute runs the full insulation analysis: raw scores, normalization,
// and boundary detection.
func Compute(m contact.Matrix, windowSize int, prominence float64) Result {
	raw := Scores(m, windowSize)
	norm := Normalize(raw)
	return Result{
		Raw:        raw,
		Normalized: norm,
		Boundaries: DetectBoundaries(norm, prominence, windowSize),
		WindowSize: windowSize,
	}
}
