// Package health folds assembly metrics and analysis signals into a
// single 0-100 assembly health score with four named sub-scores.
package health

import (
	"math"

	"github.com/strandline/hicqc/internal/numeric"
)

// Scoring constants. idealExponent is the center of the healthy Hi-C
// distance-decay band; exponentHalfWidth is the deviation that zeroes
// the decay sub-score.
const (
	idealExponent       = -1.15
	exponentHalfWidth   = 0.85
	misassemblyPenalty  = 10.0
	eigenvalueFullScale = 200.0
	neutralScore        = 50.0
)

// Metrics are the externally supplied assembly summary plus the
// analysis signals this package folds in. Exponent and Eigenvalue are
// optional: leave the Known flags false when the corresponding analysis
// has not run, and the sub-score stays at the 50-point neutral (not yet
// computed is not the same as bad).
type Metrics struct {
	N50           int64
	TotalLength   int64
	ContigCount   int
	Misassemblies int

	Exponent      float64
	ExponentKnown bool

	Eigenvalue      float64
	EigenvalueKnown bool
}

// Result is the composite score and its four sub-scores, each
// independently clamped to [0,100].
type Result struct {
	Overall      int
	Contiguity   float64
	DecayQuality float64
	Integrity    float64
	Compartments float64
}

// Score computes the composite health score. Degenerate metrics
// (non-positive totals) zero the contiguity sub-score rather than
// erroring.
func Score(m Metrics) Result {
	var r Result

	if m.TotalLength > 0 && m.ContigCount > 0 {
		frac := float64(m.N50) / float64(m.TotalLength)
		r.Contiguity = numeric.Clamp(frac*float64(m.ContigCount)*100, 0, 100)
	}

	r.DecayQuality = neutralScore
	if m.ExponentKnown {
		dev := math.Abs(m.Exponent-idealExponent) / exponentHalfWidth
		r.DecayQuality = numeric.Clamp(100-dev*100, 0, 100)
	}

	r.Integrity = numeric.Clamp(100-misassemblyPenalty*float64(m.Misassemblies), 0, 100)

	r.Compartments = neutralScore
	if m.EigenvalueKnown {
		r.Compartments = numeric.Clamp(m.Eigenvalue*eigenvalueFullScale, 0, 100)
	}

	mean := (r.Contiguity + r.DecayQuality + r.Integrity + r.Compartments) / 4
	r.Overall = int(numeric.Clamp(math.Round(mean), 0, 100))
	return r
}
