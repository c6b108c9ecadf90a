// Package compartment recovers the A/B compartment signal of a contact
// map: the dominant eigenvector of the Pearson correlation matrix of
// observed/expected contacts, estimated by deterministic power
// iteration.
package compartment

import (
	"math"

	"github.com/strandline/hicqc/internal/contact"
	"github.com/strandline/hicqc/internal/numeric"
)

// Default analysis parameters.
const (
	DefaultBinSize   = 10
	DefaultMaxIter   = 100
	DefaultTolerance = 1e-6

	// minBins is the fewest bins that still give a stable correlation
	// matrix; below this the bin size collapses to 1.
	minBins = 16
)

// Result holds the compartment signal at native matrix resolution.
// Eigenvector carries the signed per-position values; Normalized maps
// them to [0,1] (uniform 0.5 when the eigenvector is degenerate).
type Result struct {
	Eigenvector []float64
	Normalized  []float64
	Eigenvalue  float64
	Iterations  int
	BinSize     int
}

// Bin block-averages m into ceil(size/binSize) bins per axis. A binSize
// that would leave fewer than 16 bins auto-reduces to 1. Returns the
// binned matrix, its size, and the bin size actually used.
func Bin(m contact.Matrix, binSize int) ([]float64, int, int) {
	size := m.Size
	if size <= 0 {
		return nil, 0, 1
	}
	if binSize < 1 {
		binSize = 1
	}
	if size/binSize < minBins {
		binSize = 1
	}

	binned := (size + binSize - 1) / binSize
	out := make([]float64, binned*binned)
	for bi := 0; bi < binned; bi++ {
		for bj := 0; bj < binned; bj++ {
			sum := 0.0
			count := 0
			for i := bi * binSize; i < (bi+1)*binSize && i < size; i++ {
				for j := bj * binSize; j < (bj+1)*binSize && j < size; j++ {
					sum += m.At(i, j)
					count++
				}
			}
			if count > 0 {
				out[bi*binned+bj] = sum / float64(count)
			}
		}
	}
	return out, binned, binSize
}

// Expected returns the mean contact at each diagonal distance d in
// [0, size): the genome-wide distance-decay trend.
func Expected(matrix []float64, size int) []float64 {
	expected := make([]float64, size)
	for d := 0; d < size; d++ {
		sum := 0.0
		for i := 0; i+d < size; i++ {
			sum += matrix[i*size+i+d]
		}
		expected[d] = sum / float64(size-d)
	}
	return expected
}

// ObservedOverExpected divides each entry by the expected contact at its
// diagonal distance, flattening the decay trend. Entries with zero
// expectation become 0.
func ObservedOverExpected(matrix []float64, size int, expected []float64) []float64 {
	oe := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			if expected[d] > 0 {
				oe[i*size+j] = matrix[i*size+j] / expected[d]
			}
		}
	}
	return oe
}

// Correlation builds the Pearson correlation matrix between every pair
// of O/E rows. The diagonal is fixed at 1; rows with zero variance
// correlate at 0.
func Correlation(oe []float64, size int) []float64 {
	corr := make([]float64, size*size)
	for i := 0; i < size; i++ {
		corr[i*size+i] = 1
		rowI := oe[i*size : (i+1)*size]
		for j := i + 1; j < size; j++ {
			c := numeric.Pearson(rowI, oe[j*size:(j+1)*size])
			corr[i*size+j] = c
			corr[j*size+i] = c
		}
	}
	return corr
}

// PowerIteration estimates the dominant eigenvector and eigenvalue of a
// symmetric matrix. The seed vector alternates +1/-1 (L2-normalized) so
// repeated runs are bit-identical; there is no randomness anywhere.
// Returns the eigenvector, the Rayleigh-quotient eigenvalue, and the
// number of iterations performed.
func PowerIteration(matrix []float64, size, maxIter int, tol float64) ([]float64, float64, int) {
	if size <= 0 {
		return nil, 0, 0
	}

	v := make([]float64, size)
	norm := 1 / math.Sqrt(float64(size))
	for i := range v {
		if i%2 == 0 {
			v[i] = norm
		} else {
			v[i] = -norm
		}
	}

	w := make([]float64, size)
	eigenvalue := 0.0
	iter := 0
	for ; iter < maxIter; iter++ {
		for i := 0; i < size; i++ {
			sum := 0.0
			row := matrix[i*size : (i+1)*size]
			for j, vj := range v {
				sum += row[j] * vj
			}
			w[i] = sum
		}

		// Rayleigh quotient with the pre-normalization product.
		eigenvalue = 0
		for i := range v {
			eigenvalue += v[i] * w[i]
		}

		wNorm := 0.0
		for _, x := range w {
			wNorm += x * x
		}
		wNorm = math.Sqrt(wNorm)
		if wNorm == 0 {
			break
		}
		for i := range w {
			w[i] /= wNorm
		}

		diff := 0.0
		for i := range v {
			d := w[i] - v[i]
			diff += d * d
		}
		copy(v, w)
		if math.Sqrt(diff) < tol {
			iter++
			break
		}
	}
	return v, eigenvalue, iter
}

// Analyze runs the full compartment chain: bin, expected, O/E,
// correlation, power iteration, then expansion of the binned
// eigenvector back to native resolution.
func Analyze(m contact.Matrix, binSize, maxIter int, tol float64) Result {
	size := m.Size
	if size <= 0 {
		return Result{BinSize: 1}
	}

	binned, binnedSize, usedBin := Bin(m, binSize)
	expected := Expected(binned, binnedSize)
	oe := ObservedOverExpected(binned, binnedSize, expected)
	corr := Correlation(oe, binnedSize)
	eig, eigenvalue, iters := PowerIteration(corr, binnedSize, maxIter, tol)

	native := make([]float64, size)
	for i := 0; i < size; i++ {
		b := i / usedBin
		if b >= binnedSize {
			b = binnedSize - 1
		}
		native[i] = eig[b]
	}

	return Result{
		Eigenvector: native,
		Normalized:  NormalizeSigned(native),
		Eigenvalue:  eigenvalue,
		Iterations:  iters,
		BinSize:     usedBin,
	}
}

// NormalizeSigned maps signed eigenvector values into [0,1] via
// (v/maxAbs+1)/2. An all-zero vector fills with the neutral 0.5.
func NormalizeSigned(eig []float64) []float64 {
	norm := make([]float64, len(eig))
	maxAbs := 0.0
	for _, v := range eig {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		for i := range norm {
			norm[i] = 0.5
		}
		return norm
	}
	for i, v := range eig {
		norm[i] = (v/maxAbs + 1) / 2
	}
	return norm
}
