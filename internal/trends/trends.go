// Package trends tracks how an assembly's QC metrics move across
// recorded analysis runs: is curation making the map healthier or not.
package trends

import (
	"math"

	"github.com/strandline/hicqc/internal/store"
)

// Direction labels.
const (
	DirImproving = "improving"
	DirWorsening = "worsening"
	DirStable    = "stable"
)

// stableBand is the relative change below which a metric counts as
// stable.
const stableBand = 0.05

// Point is one run's value for a metric, with a rolling average once
// enough history exists.
type Point struct {
	RunID      int64
	Value      float64
	RollingAvg float64 // 4-run rolling average, 0 before 4 runs
}

// MetricTrend is the series and direction for one metric.
type MetricTrend struct {
	Name       string
	Points     []Point // oldest first
	Latest     float64
	OverallAvg float64
	Direction  string
	DeltaPct   float64
}

// Result holds trend series for every tracked metric of one matrix.
type Result struct {
	MatrixPath string
	Runs       int
	Metrics    []MetricTrend
}

// Compute builds trends from the stored run history, oldest first.
func Compute(matrixPath string, runs []store.Run) Result {
	r := Result{MatrixPath: matrixPath, Runs: len(runs)}
	if len(runs) == 0 {
		return r
	}

	r.Metrics = []MetricTrend{
		build("health", runs, func(x store.Run) float64 { return float64(x.Health) }, true),
		build("misassemblies", runs, func(x store.Run) float64 { return float64(x.Misassemblies) }, false),
		build("decay exponent", runs, func(x store.Run) float64 { return x.Exponent }, true),
		build("eigenvalue", runs, func(x store.Run) float64 { return x.Eigenvalue }, true),
	}
	return r
}

func build(name string, runs []store.Run, extract func(store.Run) float64, higherIsBetter bool) MetricTrend {
	m := MetricTrend{Name: name, Direction: DirStable}

	values := make([]float64, len(runs))
	for i, run := range runs {
		values[i] = extract(run)
		p := Point{RunID: run.ID, Value: values[i]}
		if i >= 3 {
			p.RollingAvg = rollingAvg(values, i, 4)
		}
		m.Points = append(m.Points, p)
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m.OverallAvg = sum / float64(len(values))
	m.Latest = values[len(values)-1]

	m.Direction, m.DeltaPct = direction(values, higherIsBetter)
	return m
}

// direction compares the most recent half of the series against the
// earlier half. Fewer than two points, or a flat baseline, is stable.
func direction(values []float64, higherIsBetter bool) (string, float64) {
	if len(values) < 2 {
		return DirStable, 0
	}

	mid := len(values) / 2
	early := mean(values[:mid])
	late := mean(values[mid:])

	if early == 0 {
		return DirStable, 0
	}
	delta := (late - early) / math.Abs(early)
	if math.Abs(delta) < stableBand {
		return DirStable, delta * 100
	}

	improving := delta > 0
	if !higherIsBetter {
		improving = !improving
	}
	if improving {
		return DirImproving, delta * 100
	}
	return DirWorsening, delta * 100
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// rollingAvg averages the window values ending at index i.
func rollingAvg(values []float64, i, window int) float64 {
	lo := i - window + 1
	if lo < 0 {
		lo = 0
	}
	return mean(values[lo : i+1])
}
