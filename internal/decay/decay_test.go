package decay

import (
	"math"
	"testing"

	"github.com/strandline/hicqc/internal/contact"
)

// powerLawMatrix builds value(i,j) = (1+|i-j|)^a.
func powerLawMatrix(size int, a float64) contact.Matrix {
	data := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			data[i*size+j] = math.Pow(float64(1+d), a)
		}
	}
	return contact.NewMatrix(data, size)
}

func TestAnalyze_RecoversExponent(t *testing.T) {
	for _, a := range []float64{-1.0, -1.5} {
		size := 400
		m := powerLawMatrix(size, a)
		res := Analyze(contact.DiagonalProfile(m, nil), size, 0)

		if math.Abs(res.Exponent-a) > 0.1 {
			t.Errorf("a=%g: recovered exponent %g, want within 0.1", a, res.Exponent)
		}
		if res.R2 <= 0.9 {
			t.Errorf("a=%g: R2 %g, want > 0.9", a, res.R2)
		}
	}
}

func TestAnalyze_UniformMatrix(t *testing.T) {
	size := 64
	data := make([]float64, size*size)
	for i := range data {
		data[i] = 0.7
	}
	m := contact.NewMatrix(data, size)

	res := Analyze(contact.DiagonalProfile(m, nil), size, 0)
	if math.Abs(res.Exponent) >= 0.1 {
		t.Errorf("uniform matrix: expected |exponent| < 0.1, got %g", res.Exponent)
	}
}

func TestAnalyze_AllZeroMatrix(t *testing.T) {
	size := 32
	m := contact.NewMatrix(make([]float64, size*size), size)

	res := Analyze(contact.DiagonalProfile(m, nil), size, 0)
	if res.Exponent != 0 || res.R2 != 0 {
		t.Errorf("expected zero fit, got exponent %g R2 %g", res.Exponent, res.R2)
	}
	if len(res.Distances) != 0 {
		t.Errorf("expected no usable distances, got %d", len(res.Distances))
	}
}

func TestAnalyze_DistancesStartAtOne(t *testing.T) {
	size := 64
	m := powerLawMatrix(size, -1.0)
	res := Analyze(contact.DiagonalProfile(m, nil), size, 0)

	if len(res.Distances) == 0 {
		t.Fatal("expected usable distances")
	}
	if res.Distances[0] != 1 {
		t.Errorf("first distance must be 1, got %g", res.Distances[0])
	}
	if len(res.LogDist) != len(res.Distances) || len(res.LogContact) != len(res.MeanContact) {
		t.Error("result slices must be parallel")
	}
}

func TestAnalyze_DefaultMaxDistance(t *testing.T) {
	size := 64
	m := powerLawMatrix(size, -1.0)
	res := Analyze(contact.DiagonalProfile(m, nil), size, 0)

	// min(size/2, 500) = 32
	if n := len(res.Distances); n != 32 {
		t.Errorf("expected 32 distances, got %d", n)
	}
}

func TestAnalyze_SinglePoint(t *testing.T) {
	profile := func(d int) float64 {
		if d == 1 {
			return 0.5
		}
		return 0
	}
	res := Analyze(profile, 64, 0)
	if res.Exponent != 0 || res.R2 != 0 {
		t.Errorf("one point cannot fit a line, got exponent %g R2 %g", res.Exponent, res.R2)
	}
}
