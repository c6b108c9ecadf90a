// Package contact defines the contact-map data model shared by all
// analyzers: a dense symmetric intensity matrix and the contig ranges
// that partition its coordinate space.
package contact

// Matrix is a square Hi-C contact map in row-major order. The buffer is
// owned by the caller; no analyzer mutates it, and no result retains a
// reference to it. Entries are non-negative normalized intensities, and
// the matrix is conceptually symmetric (most algorithms consult only the
// upper triangle).
type Matrix struct {
	Data []float64
	Size int
}

// NewMatrix wraps a row-major buffer of size*size values.
// A short buffer yields a zero-size matrix rather than a panic later.
func NewMatrix(data []float64, size int) Matrix {
	if size < 0 || len(data) < size*size {
		return Matrix{}
	}
	return Matrix{Data: data, Size: size}
}

// At returns the intensity at (row, col), or 0 out of bounds.
func (m Matrix) At(row, col int) float64 {
	if row < 0 || col < 0 || row >= m.Size || col >= m.Size {
		return 0
	}
	return m.Data[row*m.Size+col]
}

// ContigRange is a half-open pixel interval [Start, End) in the overview
// coordinate space of the matrix, plus the contig's position in display
// order. Ranges passed to any one call are non-overlapping and valid
// (End > Start >= 0); a full partition of [0, Size) is not required.
type ContigRange struct {
	Start      int
	End        int
	OrderIndex int
}

// Span returns the pixel length of the range.
func (r ContigRange) Span() int {
	return r.End - r.Start
}

// Contains reports whether overview pixel p falls inside the range.
func (r ContigRange) Contains(p int) bool {
	return p >= r.Start && p < r.End
}

// ProfileFunc reports mean contact intensity at a given diagonal
// distance. Distance 0 is the main diagonal. Implementations return 0
// for distances with no observations.
type ProfileFunc func(distance int) float64

// DiagonalProfile builds a ProfileFunc over m restricted to pairs that
// fall inside a single contig range, so that contig joins do not bleed
// into the distance-decay signal. With no ranges the whole matrix is one
// contig.
func DiagonalProfile(m Matrix, ranges []ContigRange) ProfileFunc {
	if len(ranges) == 0 && m.Size > 0 {
		ranges = []ContigRange{{Start: 0, End: m.Size}}
	}
	return func(distance int) float64 {
		if distance < 0 || distance >= m.Size {
			return 0
		}
		sum := 0.0
		count := 0
		for _, r := range ranges {
			for i := r.Start; i+distance < r.End; i++ {
				sum += m.At(i, i+distance)
				count++
			}
		}
		if count == 0 {
			return 0
		}
		return sum / float64(count)
	}
}
