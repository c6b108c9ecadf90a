// Package decay fits the contact distance-decay law P(s): the power-law
// slope of mean contact frequency against genomic distance in log-log
// space. Well-assembled Hi-C typically sits between -0.8 and -1.5.
package decay

import (
	"math"

	"github.com/strandline/hicqc/internal/contact"
	"github.com/strandline/hicqc/internal/numeric"
)

// DefaultMaxDistance caps the profile when the caller passes none.
const DefaultMaxDistance = 500

// Result holds the distance-decay curve and its log-log fit. The four
// slices are parallel; distances start at 1 and keep only points with a
// strictly positive mean contact.
type Result struct {
	Distances   []float64
	MeanContact []float64
	LogDist     []float64
	LogContact  []float64
	Exponent    float64
	R2          float64
}

// Analyze builds the per-distance mean-contact profile over
// [1, maxDistance] from the supplied profile function and fits a line
// through the log10-transformed points. maxDistance <= 0 defaults to
// min(size/2, 500). Fewer than two usable points yields the zero fit,
// not an error.
func Analyze(profile contact.ProfileFunc, size, maxDistance int) Result {
	if maxDistance <= 0 {
		maxDistance = size / 2
		if maxDistance > DefaultMaxDistance {
			maxDistance = DefaultMaxDistance
		}
	}

	var res Result
	for d := 1; d <= maxDistance; d++ {
		mean := profile(d)
		if mean <= 0 {
			continue
		}
		res.Distances = append(res.Distances, float64(d))
		res.MeanContact = append(res.MeanContact, mean)
		res.LogDist = append(res.LogDist, math.Log10(float64(d)))
		res.LogContact = append(res.LogContact, math.Log10(mean))
	}

	fit := numeric.FitLine(res.LogDist, res.LogContact)
	res.Exponent = fit.Slope
	res.R2 = fit.R2
	return res
}
