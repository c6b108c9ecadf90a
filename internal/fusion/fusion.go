// Package fusion merges the insulation and compartment signals into
// misassembly flags, converts flags into pixel-accurate cut suggestions
// in contig-native coordinates, and scores each suggestion's confidence.
//
// Flags and suggestions are keyed to the contig display order they were
// computed against; they are stale the moment that order changes
// (cutting replaces one order index with two) and must be recomputed,
// never patched.
package fusion

import (
	"math"
	"sort"

	"github.com/strandline/hicqc/internal/compartment"
	"github.com/strandline/hicqc/internal/contact"
	"github.com/strandline/hicqc/internal/insulation"
	"github.com/strandline/hicqc/internal/numeric"
)

// Flag reasons.
const (
	ReasonTADBoundary       = "tad_boundary"
	ReasonCompartmentSwitch = "compartment_switch"
	ReasonBoth              = "both"
)

// Confidence levels.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// Confidence component weights.
const (
	weightTAD         = 0.5
	weightCompartment = 0.3
	weightDecay       = 0.2
)

// Params tunes signal filtering and merging.
type Params struct {
	// EdgeMargin excludes signals closer than this to either contig
	// end; boundary artifacts cluster at contig joins.
	EdgeMargin int
	// MergeRadius is the pixel distance within which a TAD boundary
	// and a compartment switch in the same contig collapse into one
	// "both" flag.
	MergeRadius int
}

// DefaultParams returns the standard filter/merge settings.
func DefaultParams() Params {
	return Params{EdgeMargin: 2, MergeRadius: 3}
}

// Flag marks a position inside a contig where structural signals
// suggest a chimeric join.
type Flag struct {
	OrderIndex    int
	OverviewPixel int
	Reason        string
	Strength      float64
}

// Summary counts flags by reason.
type Summary struct {
	TADOnly         int
	CompartmentOnly int
	Both            int
	Total           int
}

// Components breaks a confidence score into its weighted inputs.
type Components struct {
	TAD         float64
	Compartment float64
	Decay       float64
}

// Confidence scores one suggestion in [0,1] with a coarse level band.
type Confidence struct {
	Score      float64
	Level      string
	Components Components
}

// Suggestion is a proposed cut: a pixel offset inside the owning
// contig's native coordinate space, valid to pass verbatim to an
// external cut operation. Suggestions sort by descending OrderIndex so
// cuts apply right to left without invalidating earlier indices.
type Suggestion struct {
	OrderIndex    int
	PixelOffset   int
	OverviewPixel int
	Reason        string
	Strength      float64
	Confidence    Confidence
}

// signal is one raw observation before merging.
type signal struct {
	orderIndex int
	pixel      int
	reason     string
	strength   float64
	merged     bool
}

// CollectFlags filters both signal streams to contig-internal positions
// and greedily merges nearby opposite-type signals in the same contig.
// A TAD boundary and a compartment switch within MergeRadius pixels
// become a single "both" flag at the rounded midpoint with summed
// strength. The greedy nearest-match scan is a deliberate design
// choice; it is not globally optimal.
func CollectFlags(ins insulation.Result, comp compartment.Result, ranges []contact.ContigRange, p Params) []Flag {
	minSpan := 2*p.EdgeMargin + 1
	var usable []contact.ContigRange
	for _, r := range ranges {
		if r.Span() >= minSpan {
			usable = append(usable, r)
		}
	}

	var signals []signal

	for _, b := range ins.Boundaries {
		if r, ok := owningRange(usable, b.Position, p.EdgeMargin); ok {
			signals = append(signals, signal{
				orderIndex: r.OrderIndex,
				pixel:      b.Position,
				reason:     ReasonTADBoundary,
				strength:   b.Strength,
			})
		}
	}

	eig := comp.Eigenvector
	for i := 1; i < len(eig); i++ {
		if eig[i]*eig[i-1] >= 0 {
			continue
		}
		if r, ok := owningRange(usable, i, p.EdgeMargin); ok {
			signals = append(signals, signal{
				orderIndex: r.OrderIndex,
				pixel:      i,
				reason:     ReasonCompartmentSwitch,
				strength:   math.Abs(eig[i] - eig[i-1]),
			})
		}
	}

	var flags []Flag
	for i := range signals {
		if signals[i].merged {
			continue
		}

		partner := -1
		bestDist := p.MergeRadius + 1
		for j := range signals {
			if j == i || signals[j].merged {
				continue
			}
			if signals[j].reason == signals[i].reason {
				continue
			}
			if signals[j].orderIndex != signals[i].orderIndex {
				continue
			}
			dist := signals[j].pixel - signals[i].pixel
			if dist < 0 {
				dist = -dist
			}
			if dist <= p.MergeRadius && dist < bestDist {
				bestDist = dist
				partner = j
			}
		}

		if partner >= 0 {
			signals[i].merged = true
			signals[partner].merged = true
			mid := int(math.Round(float64(signals[i].pixel+signals[partner].pixel) / 2))
			flags = append(flags, Flag{
				OrderIndex:    signals[i].orderIndex,
				OverviewPixel: mid,
				Reason:        ReasonBoth,
				Strength:      signals[i].strength + signals[partner].strength,
			})
			continue
		}

		signals[i].merged = true
		flags = append(flags, Flag{
			OrderIndex:    signals[i].orderIndex,
			OverviewPixel: signals[i].pixel,
			Reason:        signals[i].reason,
			Strength:      signals[i].strength,
		})
	}
	return flags
}

// owningRange finds the usable range containing pixel p at least margin
// pixels from both ends.
func owningRange(ranges []contact.ContigRange, p, margin int) (contact.ContigRange, bool) {
	for _, r := range ranges {
		if p >= r.Start+margin && p <= r.End-1-margin {
			return r, true
		}
	}
	return contact.ContigRange{}, false
}

// Summarize counts flags by reason.
func Summarize(flags []Flag) Summary {
	var s Summary
	for _, f := range flags {
		switch f.Reason {
		case ReasonTADBoundary:
			s.TADOnly++
		case ReasonCompartmentSwitch:
			s.CompartmentOnly++
		case ReasonBoth:
			s.Both++
		}
	}
	s.Total = len(flags)
	return s
}

// BuildCutSuggestions maps each flag's overview pixel to a fractional
// position inside its owning range, scales it to the contig's native
// pixel length, and clamps away the exact edges (an edge cut is
// invalid). Native lengths come from lengths keyed by order index; a
// missing entry falls back to the overview span. Output is sorted by
// OrderIndex descending: applying cuts right to left means a cut, which
// replaces one order index with two, never shifts an index that still
// has a pending suggestion.
func BuildCutSuggestions(flags []Flag, ranges []contact.ContigRange, lengths map[int]int) []Suggestion {
	byOrder := make(map[int]contact.ContigRange, len(ranges))
	for _, r := range ranges {
		byOrder[r.OrderIndex] = r
	}

	var suggestions []Suggestion
	for _, f := range flags {
		r, ok := byOrder[f.OrderIndex]
		if !ok || r.Span() <= 0 {
			continue
		}

		length := lengths[f.OrderIndex]
		if length <= 0 {
			length = r.Span()
		}
		if length < 2 {
			continue // no interior pixel to cut at
		}

		frac := float64(f.OverviewPixel-r.Start) / float64(r.Span())
		offset := int(math.Round(frac * float64(length)))
		if offset < 1 {
			offset = 1
		}
		if offset > length-1 {
			offset = length - 1
		}

		suggestions = append(suggestions, Suggestion{
			OrderIndex:    f.OrderIndex,
			PixelOffset:   offset,
			OverviewPixel: f.OverviewPixel,
			Reason:        f.Reason,
			Strength:      f.Strength,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].OrderIndex > suggestions[j].OrderIndex
	})
	return suggestions
}

// ScoreConfidence fills in each suggestion's confidence from the three
// component signals. The decay component is fed the normalized
// insulation profile as a stand-in for a true decay-anomaly signal;
// this placeholder is inherited behavior, kept on purpose until a real
// local-decay signal exists. No suggestion is ever dropped: one whose
// signals cannot be resolved scores 0 at the low band.
func ScoreConfidence(suggestions []Suggestion, flags []Flag, comp compartment.Result, decayProxy []float64) []Suggestion {
	maxStrength := 0.0
	for _, f := range flags {
		if f.Strength > maxStrength {
			maxStrength = f.Strength
		}
	}

	meanDelta := meanAbsDelta(decayProxy)

	scored := make([]Suggestion, len(suggestions))
	for i, s := range suggestions {
		var c Components

		if maxStrength > 0 {
			c.TAD = s.Strength / maxStrength
		}

		p := s.OverviewPixel
		if p >= 1 && p < len(comp.Eigenvector) {
			c.Compartment = math.Tanh(2 * math.Abs(comp.Eigenvector[p]-comp.Eigenvector[p-1]))
		}

		if meanDelta > 0 && p >= 1 && p < len(decayProxy) {
			anomaly := math.Abs(decayProxy[p]-decayProxy[p-1]) / meanDelta
			c.Decay = numeric.Clamp01((anomaly - 0.5) / 2)
		}

		score := numeric.Clamp01(weightTAD*c.TAD + weightCompartment*c.Compartment + weightDecay*c.Decay)
		s.Confidence = Confidence{Score: score, Level: level(score), Components: c}
		scored[i] = s
	}
	return scored
}

func level(score float64) string {
	switch {
	case score >= 0.7:
		return LevelHigh
	case score >= 0.4:
		return LevelMedium
	default:
		return LevelLow
	}
}

// meanAbsDelta is the mean absolute step between adjacent profile
// values, or 0 for profiles shorter than two.
func meanAbsDelta(profile []float64) float64 {
	if len(profile) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(profile); i++ {
		sum += math.Abs(profile[i] - profile[i-1])
	}
	return sum / float64(len(profile)-1)
}

// Result bundles the full fusion output.
type Result struct {
	Flags       []Flag
	Summary     Summary
	Suggestions []Suggestion
}

// Analyze runs collection, summarization, suggestion building, and
// confidence scoring in one pass.
func Analyze(ins insulation.Result, comp compartment.Result, ranges []contact.ContigRange, lengths map[int]int, p Params) Result {
	flags := CollectFlags(ins, comp, ranges, p)
	suggestions := BuildCutSuggestions(flags, ranges, lengths)
	suggestions = ScoreConfidence(suggestions, flags, comp, ins.Normalized)
	return Result{
		Flags:       flags,
		Summary:     Summarize(flags),
		Suggestions: suggestions,
	}
}
