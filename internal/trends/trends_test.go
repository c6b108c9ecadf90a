package trends

import (
	"strings"
	"testing"

	"github.com/strandline/hicqc/internal/store"
)

func runsWithHealth(scores ...int) []store.Run {
	runs := make([]store.Run, len(scores))
	for i, s := range scores {
		runs[i] = store.Run{ID: int64(i + 1), Health: s, Misassemblies: 5}
	}
	return runs
}

func metric(r Result, name string) MetricTrend {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m
		}
	}
	return MetricTrend{}
}

func TestCompute_Empty(t *testing.T) {
	r := Compute("map.tsv", nil)
	if r.Runs != 0 || len(r.Metrics) != 0 {
		t.Errorf("expected empty result, got %+v", r)
	}
}

func TestCompute_HealthImproving(t *testing.T) {
	r := Compute("map.tsv", runsWithHealth(40, 45, 60, 70))
	m := metric(r, "health")
	if m.Direction != DirImproving {
		t.Errorf("expected improving, got %s (%.1f%%)", m.Direction, m.DeltaPct)
	}
	if m.Latest != 70 {
		t.Errorf("expected latest 70, got %g", m.Latest)
	}
}

func TestCompute_HealthWorsening(t *testing.T) {
	r := Compute("map.tsv", runsWithHealth(80, 75, 50, 40))
	if m := metric(r, "health"); m.Direction != DirWorsening {
		t.Errorf("expected worsening, got %s", m.Direction)
	}
}

func TestCompute_Stable(t *testing.T) {
	r := Compute("map.tsv", runsWithHealth(60, 61, 60, 61))
	if m := metric(r, "health"); m.Direction != DirStable {
		t.Errorf("expected stable, got %s (%.1f%%)", m.Direction, m.DeltaPct)
	}
}

func TestCompute_LowerIsBetterForMisassemblies(t *testing.T) {
	runs := []store.Run{
		{ID: 1, Misassemblies: 10},
		{ID: 2, Misassemblies: 8},
		{ID: 3, Misassemblies: 3},
		{ID: 4, Misassemblies: 2},
	}
	r := Compute("map.tsv", runs)
	if m := metric(r, "misassemblies"); m.Direction != DirImproving {
		t.Errorf("falling misassembly count must be improving, got %s", m.Direction)
	}
}

func TestCompute_SingleRunIsStable(t *testing.T) {
	r := Compute("map.tsv", runsWithHealth(50))
	if m := metric(r, "health"); m.Direction != DirStable {
		t.Errorf("one run has no trend, got %s", m.Direction)
	}
}

func TestCompute_RollingAverageStartsAtFourth(t *testing.T) {
	r := Compute("map.tsv", runsWithHealth(40, 50, 60, 70, 80))
	m := metric(r, "health")
	for i := 0; i < 3; i++ {
		if m.Points[i].RollingAvg != 0 {
			t.Errorf("point %d should have no rolling average yet, got %g", i, m.Points[i].RollingAvg)
		}
	}
	if m.Points[3].RollingAvg != 55 {
		t.Errorf("expected rolling average 55 at fourth run, got %g", m.Points[3].RollingAvg)
	}
	if m.Points[4].RollingAvg != 65 {
		t.Errorf("expected rolling average 65 at fifth run, got %g", m.Points[4].RollingAvg)
	}
}

func TestFormat_Empty(t *testing.T) {
	out := Format(Compute("map.tsv", nil))
	if !strings.Contains(out, "No recorded runs") {
		t.Errorf("expected empty-history message, got %q", out)
	}
}

func TestFormat_ShowsMetrics(t *testing.T) {
	out := Format(Compute("map.tsv", runsWithHealth(40, 70)))
	for _, want := range []string{"health", "misassemblies", "decay exponent", "eigenvalue"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing metric %q:\n%s", want, out)
		}
	}
}
