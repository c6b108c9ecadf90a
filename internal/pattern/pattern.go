// Package pattern flags inversion and translocation artifacts directly
// from contact-map geometry: inversions leave an anti-diagonal
// "butterfly" excess inside a contig, translocations an enriched
// off-diagonal block between distant contigs.
package pattern

import (
	"fmt"
	"sort"

	"github.com/strandline/hicqc/internal/contact"
	"github.com/strandline/hicqc/internal/numeric"
)

// Pattern kinds.
const (
	TypeInversion     = "inversion"
	TypeTranslocation = "translocation"
)

// DefaultThreshold is the enrichment ratio at which a pattern is
// flagged.
const DefaultThreshold = 2.0

// Detected is one flagged artifact. Region2 is set only for
// translocations (the partner contig). Strength is in [0,1].
type Detected struct {
	Type        string
	Region      contact.ContigRange
	Region2     *contact.ContigRange
	Strength    float64
	Description string
}

// minSpanForInversion is the shortest contig with enough off-diagonal
// area to test.
const minSpanForInversion = 4

// DetectInversions tests each contig range for anti-diagonal enrichment
// relative to its own large-distance diagonal background. Ranges with a
// zero background are skipped rather than flagged.
func DetectInversions(m contact.Matrix, ranges []contact.ContigRange, threshold float64) []Detected {
	var found []Detected
	for _, r := range ranges {
		span := r.Span()
		if span < minSpanForInversion {
			continue
		}

		minDist := (span + 2) / 3
		if minDist < 2 {
			minDist = 2
		}

		// Large-distance diagonal background inside the contig.
		diagSum := 0.0
		diagCount := 0
		for d := minDist; d < span; d++ {
			for i := r.Start; i+d < r.End; i++ {
				diagSum += m.At(i, i+d)
				diagCount++
			}
		}
		if diagCount == 0 || diagSum <= 0 {
			continue
		}
		diagMean := diagSum / float64(diagCount)

		// Anti-diagonal of the contig's own square, same distance cut.
		antiSum := 0.0
		antiCount := 0
		for i := r.Start; i < r.End; i++ {
			j := r.Start + r.End - 1 - i
			dist := j - i
			if dist < 0 {
				dist = -dist
			}
			if dist < minDist {
				continue
			}
			antiSum += m.At(i, j)
			antiCount++
		}
		if antiCount == 0 {
			continue
		}
		antiMean := antiSum / float64(antiCount)

		ratio := antiMean / diagMean
		if ratio < threshold {
			continue
		}
		found = append(found, Detected{
			Type:     TypeInversion,
			Region:   r,
			Strength: numeric.Clamp01((ratio - threshold) / (2 * threshold)),
			Description: fmt.Sprintf("anti-diagonal enrichment %.2fx in contig %d [%d,%d)",
				ratio, r.OrderIndex, r.Start, r.End),
		})
	}
	return found
}

// DetectTranslocations tests every pair of contigs at least two order
// positions apart for cross-block enrichment over the global positive
// background. Immediate neighbors are skipped because adjacency alone
// co-locates them. Results are sorted by strength, strongest first.
func DetectTranslocations(m contact.Matrix, ranges []contact.ContigRange, threshold float64) []Detected {
	if len(ranges) < 3 {
		return nil
	}

	background := positiveUpperMean(m)
	if background <= 0 {
		return nil
	}

	var found []Detected
	for a := 0; a < len(ranges); a++ {
		for b := a + 1; b < len(ranges); b++ {
			ra, rb := ranges[a], ranges[b]
			sep := rb.OrderIndex - ra.OrderIndex
			if sep < 0 {
				sep = -sep
			}
			if sep < 2 {
				continue
			}

			sum := 0.0
			count := 0
			for i := ra.Start; i < ra.End; i++ {
				for j := rb.Start; j < rb.End; j++ {
					if v := m.At(i, j); v > 0 {
						sum += v
						count++
					}
				}
			}
			if count == 0 {
				continue
			}

			oeRatio := (sum / float64(count)) / background
			if oeRatio < threshold {
				continue
			}
			partner := rb
			found = append(found, Detected{
				Type:     TypeTranslocation,
				Region:   ra,
				Region2:  &partner,
				Strength: numeric.Clamp01((oeRatio - threshold) / (2 * threshold)),
				Description: fmt.Sprintf("cross-block enrichment %.2fx between contigs %d and %d",
					oeRatio, ra.OrderIndex, rb.OrderIndex),
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Strength > found[j].Strength
	})
	return found
}

// Detect runs both detectors with one threshold and returns inversions
// followed by translocations.
func Detect(m contact.Matrix, ranges []contact.ContigRange, threshold float64) []Detected {
	out := DetectInversions(m, ranges, threshold)
	return append(out, DetectTranslocations(m, ranges, threshold)...)
}

// positiveUpperMean is the mean of the strictly positive entries of the
// upper triangle, the global contact background rate.
func positiveUpperMean(m contact.Matrix) float64 {
	sum := 0.0
	count := 0
	for i := 0; i < m.Size; i++ {
		for j := i + 1; j < m.Size; j++ {
			if v := m.At(i, j); v > 0 {
				sum += v
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
