// Package numeric holds the small math kernels shared by the analyzers:
// clamping, means, ordinary least squares, and Pearson correlation.
// Every function is total: degenerate input produces a zero result,
// never NaN and never an error.
package numeric

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Regression holds an ordinary least squares fit of y against x.
type Regression struct {
	Slope     float64
	Intercept float64
	R2        float64
}

// FitLine computes the least squares line through (x[i], y[i]).
// Fewer than two points, mismatched lengths, or zero x-variance all
// yield the zero fit.
func FitLine(x, y []float64) Regression {
	n := len(x)
	if n < 2 || len(y) != n {
		return Regression{}
	}

	meanX := Mean(x)
	meanY := Mean(y)

	var sxx, sxy, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return Regression{}
	}

	slope := sxy / sxx
	r2 := 0.0
	if syy > 0 {
		r2 = (sxy * sxy) / (sxx * syy)
	}

	return Regression{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		R2:        r2,
	}
}

// Pearson returns the correlation coefficient of two equal-length
// vectors, or 0 when lengths differ, fewer than two points exist, or
// either vector has zero variance.
func Pearson(a, b []float64) float64 {
	n := len(a)
	if n < 2 || len(b) != n {
		return 0
	}

	meanA := Mean(a)
	meanB := Mean(b)

	var saa, sbb, sab float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		saa += da * da
		sbb += db * db
		sab += da * db
	}
	if saa == 0 || sbb == 0 {
		return 0
	}

	return sab / math.Sqrt(saa*sbb)
}
