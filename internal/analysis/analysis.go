// Package analysis orchestrates the full QC pipeline over one contact
// map. A Session is an explicit, caller-owned value holding the latest
// results; there is no package-level cache, so concurrent sessions on
// different matrices never interact.
package analysis

import (
	"sync"

	"github.com/strandline/hicqc/internal/compartment"
	"github.com/strandline/hicqc/internal/contact"
	"github.com/strandline/hicqc/internal/decay"
	"github.com/strandline/hicqc/internal/fusion"
	"github.com/strandline/hicqc/internal/health"
	"github.com/strandline/hicqc/internal/insulation"
	"github.com/strandline/hicqc/internal/pattern"
)

// Options tunes every analyzer in one place.
type Options struct {
	InsulationWindow   int
	BoundaryProminence float64

	CompartmentBinSize int
	MaxIterations      int
	Tolerance          float64

	MaxDecayDistance int
	PatternThreshold float64

	Fusion fusion.Params
}

// DefaultOptions returns the standard analyzer settings.
func DefaultOptions() Options {
	return Options{
		InsulationWindow:   insulation.DefaultWindowSize,
		BoundaryProminence: insulation.DefaultProminence,
		CompartmentBinSize: compartment.DefaultBinSize,
		MaxIterations:      compartment.DefaultMaxIter,
		Tolerance:          compartment.DefaultTolerance,
		MaxDecayDistance:   0, // min(size/2, 500)
		PatternThreshold:   pattern.DefaultThreshold,
		Fusion:             fusion.DefaultParams(),
	}
}

// Session holds the results of one analysis pass. All fields are
// invalidated by any change to the contig order; recompute rather than
// patch.
type Session struct {
	Options Options

	Insulation  insulation.Result
	Compartment compartment.Result
	Decay       decay.Result
	Patterns    []pattern.Detected
	Fusion      fusion.Result
}

// NewSession returns a session with the given options.
func NewSession(opts Options) *Session {
	return &Session{Options: opts}
}

// Run executes the pipeline: the four independent analyzers fan out on
// goroutines (each writes only its own result field), then fusion runs
// over the completed insulation and compartment results. lengths maps
// order index to contig-native pixel length for cut suggestions; nil
// falls back to overview spans.
func (s *Session) Run(m contact.Matrix, ranges []contact.ContigRange, lengths map[int]int) {
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		s.Insulation = insulation.Compute(m, s.Options.InsulationWindow, s.Options.BoundaryProminence)
	}()
	go func() {
		defer wg.Done()
		s.Compartment = compartment.Analyze(m, s.Options.CompartmentBinSize, s.Options.MaxIterations, s.Options.Tolerance)
	}()
	go func() {
		defer wg.Done()
		profile := contact.DiagonalProfile(m, ranges)
		s.Decay = decay.Analyze(profile, m.Size, s.Options.MaxDecayDistance)
	}()
	go func() {
		defer wg.Done()
		s.Patterns = pattern.Detect(m, ranges, s.Options.PatternThreshold)
	}()

	wg.Wait()

	s.Fusion = fusion.Analyze(s.Insulation, s.Compartment, ranges, lengths, s.Options.Fusion)
}

// Assembly is the externally tracked assembly summary consumed by the
// health score.
type Assembly struct {
	N50         int64
	TotalLength int64
	ContigCount int
}

// Health folds the session's signals and the assembly summary into the
// composite score. Valid before Run only in the sense that sub-scores
// for absent signals stay neutral.
func (s *Session) Health(a Assembly) health.Result {
	m := health.Metrics{
		N50:           a.N50,
		TotalLength:   a.TotalLength,
		ContigCount:   a.ContigCount,
		Misassemblies: s.Fusion.Summary.Total,
	}
	if len(s.Decay.Distances) > 0 {
		m.Exponent = s.Decay.Exponent
		m.ExponentKnown = true
	}
	if len(s.Compartment.Eigenvector) > 0 {
		m.Eigenvalue = s.Compartment.Eigenvalue
		m.EigenvalueKnown = true
	}
	return health.Score(m)
}
