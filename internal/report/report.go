// Package report renders the full analysis of one contact map as
// aligned terminal output.
package report

import (
	"fmt"
	"strings"

	"github.com/strandline/hicqc/internal/analysis"
	"github.com/strandline/hicqc/internal/fusion"
	"github.com/strandline/hicqc/internal/health"
)

// maxSuggestionsShown caps the cut-suggestion table; the JSON output
// carries the full list.
const maxSuggestionsShown = 10

// Format renders the session results and health score.
func Format(matrixPath string, size int, s *analysis.Session, h health.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "hicqc analyze — %s (%dx%d)\n", matrixPath, size, size)

	b.WriteString("\nHealth\n")
	fmt.Fprintf(&b, "  %-16s %3d/100  %s\n", "overall", h.Overall, bar(float64(h.Overall)))
	fmt.Fprintf(&b, "  %-16s %6.1f\n", "contiguity", h.Contiguity)
	fmt.Fprintf(&b, "  %-16s %6.1f\n", "decay quality", h.DecayQuality)
	fmt.Fprintf(&b, "  %-16s %6.1f\n", "integrity", h.Integrity)
	fmt.Fprintf(&b, "  %-16s %6.1f\n", "compartments", h.Compartments)

	b.WriteString("\nSignals\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "TAD boundaries", len(s.Insulation.Boundaries))
	fmt.Fprintf(&b, "  %-20s %.4f (%d iterations)\n", "dominant eigenvalue", s.Compartment.Eigenvalue, s.Compartment.Iterations)
	fmt.Fprintf(&b, "  %-20s %.3f (R² %.3f over %d distances)\n", "decay exponent", s.Decay.Exponent, s.Decay.R2, len(s.Decay.Distances))

	sum := s.Fusion.Summary
	b.WriteString("\nMisassembly flags\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "tad boundary only", sum.TADOnly)
	fmt.Fprintf(&b, "  %-20s %d\n", "compartment only", sum.CompartmentOnly)
	fmt.Fprintf(&b, "  %-20s %d\n", "both", sum.Both)
	fmt.Fprintf(&b, "  %-20s %d\n", "total", sum.Total)

	if n := len(s.Fusion.Suggestions); n > 0 {
		fmt.Fprintf(&b, "\nCut suggestions (%d, apply in listed order)\n", n)
		fmt.Fprintf(&b, "  %-8s %-8s %-20s %-6s %s\n", "Contig", "Pixel", "Reason", "Conf", "Level")
		shown := s.Fusion.Suggestions
		if len(shown) > maxSuggestionsShown {
			shown = shown[:maxSuggestionsShown]
		}
		for _, sg := range shown {
			fmt.Fprintf(&b, "  %-8d %-8d %-20s %.2f   %s\n",
				sg.OrderIndex, sg.PixelOffset, sg.Reason, sg.Confidence.Score, sg.Confidence.Level)
		}
		if n > maxSuggestionsShown {
			fmt.Fprintf(&b, "  ... and %d more\n", n-maxSuggestionsShown)
		}
	}

	if len(s.Patterns) > 0 {
		b.WriteString("\nStructural patterns\n")
		for _, p := range s.Patterns {
			fmt.Fprintf(&b, "  %-14s %.2f  %s\n", p.Type, p.Strength, p.Description)
		}
	}

	return b.String()
}

// FormatFlags renders the flag list alone, for --flags output.
func FormatFlags(flags []fusion.Flag) string {
	if len(flags) == 0 {
		return "  no misassembly flags\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %-8s %-8s %-20s %s\n", "Contig", "Pixel", "Reason", "Strength")
	for _, f := range flags {
		fmt.Fprintf(&b, "  %-8d %-8d %-20s %.3f\n", f.OrderIndex, f.OverviewPixel, f.Reason, f.Strength)
	}
	return b.String()
}

// bar renders a 20-cell score bar for a 0-100 value.
func bar(score float64) string {
	cells := int(score / 5)
	if cells < 0 {
		cells = 0
	}
	if cells > 20 {
		cells = 20
	}
	return "[" + strings.Repeat("#", cells) + strings.Repeat("-", 20-cells) + "]"
}
