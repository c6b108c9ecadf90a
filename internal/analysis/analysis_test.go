package analysis

import (
	"testing"

	"github.com/strandline/hicqc/internal/contact"
)

// blockMatrix builds a 64x64 map with two dense blocks and weak
// cross-block contact.
func blockMatrix() contact.Matrix {
	size := 64
	data := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if (i < 32) == (j < 32) {
				data[i*size+j] = 0.8
			} else {
				data[i*size+j] = 0.05
			}
		}
	}
	return contact.NewMatrix(data, size)
}

func TestSession_RunPopulatesAllResults(t *testing.T) {
	m := blockMatrix()
	ranges := []contact.ContigRange{{Start: 0, End: 64, OrderIndex: 0}}

	sess := NewSession(DefaultOptions())
	sess.Run(m, ranges, nil)

	if len(sess.Insulation.Raw) != 64 || len(sess.Insulation.Normalized) != 64 {
		t.Errorf("insulation profile incomplete: %d raw, %d normalized",
			len(sess.Insulation.Raw), len(sess.Insulation.Normalized))
	}
	if len(sess.Compartment.Eigenvector) != 64 {
		t.Errorf("expected native-resolution eigenvector, got %d", len(sess.Compartment.Eigenvector))
	}
	if len(sess.Decay.Distances) == 0 {
		t.Error("expected a usable decay profile")
	}
	if sess.Fusion.Summary.Total != len(sess.Fusion.Flags) {
		t.Errorf("summary total %d does not match %d flags",
			sess.Fusion.Summary.Total, len(sess.Fusion.Flags))
	}
}

func TestSession_RunIsDeterministic(t *testing.T) {
	m := blockMatrix()
	ranges := []contact.ContigRange{{Start: 0, End: 64, OrderIndex: 0}}

	a := NewSession(DefaultOptions())
	a.Run(m, ranges, nil)
	b := NewSession(DefaultOptions())
	b.Run(m, ranges, nil)

	if a.Compartment.Eigenvalue != b.Compartment.Eigenvalue {
		t.Errorf("eigenvalue differs across runs: %g vs %g",
			a.Compartment.Eigenvalue, b.Compartment.Eigenvalue)
	}
	if a.Decay.Exponent != b.Decay.Exponent {
		t.Errorf("exponent differs across runs: %g vs %g", a.Decay.Exponent, b.Decay.Exponent)
	}
	for i := range a.Compartment.Eigenvector {
		if a.Compartment.Eigenvector[i] != b.Compartment.Eigenvector[i] {
			t.Fatalf("eigenvector differs at %d", i)
		}
	}
}

func TestSession_AllZeroMatrixIsNeutral(t *testing.T) {
	size := 32
	m := contact.NewMatrix(make([]float64, size*size), size)
	ranges := []contact.ContigRange{{Start: 0, End: size, OrderIndex: 0}}

	sess := NewSession(DefaultOptions())
	sess.Run(m, ranges, nil)

	for i, s := range sess.Insulation.Raw {
		if s != 0 {
			t.Fatalf("insulation score at %d should be 0, got %g", i, s)
		}
	}
	if len(sess.Insulation.Boundaries) != 0 {
		t.Errorf("expected no boundaries, got %v", sess.Insulation.Boundaries)
	}
	if sess.Decay.Exponent != 0 || sess.Decay.R2 != 0 {
		t.Errorf("expected zero decay fit, got %g / %g", sess.Decay.Exponent, sess.Decay.R2)
	}
	if len(sess.Patterns) != 0 {
		t.Errorf("expected no patterns, got %v", sess.Patterns)
	}
}

func TestSession_HealthRange(t *testing.T) {
	m := blockMatrix()
	ranges := []contact.ContigRange{{Start: 0, End: 64, OrderIndex: 0}}

	sess := NewSession(DefaultOptions())
	sess.Run(m, ranges, nil)

	h := sess.Health(Assembly{N50: 64, TotalLength: 64, ContigCount: 1})
	if h.Overall < 0 || h.Overall > 100 {
		t.Errorf("overall score %d outside [0,100]", h.Overall)
	}
}

func TestSession_HealthBeforeRunIsNeutral(t *testing.T) {
	sess := NewSession(DefaultOptions())
	h := sess.Health(Assembly{})
	if h.DecayQuality != 50 || h.Compartments != 50 {
		t.Errorf("absent signals must stay neutral, got %g / %g", h.DecayQuality, h.Compartments)
	}
}
