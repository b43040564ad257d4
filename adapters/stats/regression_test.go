package stats

import (
	"math"
	"math/rand"
	"testing"
)

// TestFitOLSRecoversCoefficients tests a known linear model
func TestFitOLSRecoversCoefficients(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 500
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = rng.NormFloat64()
		x2[i] = rng.NormFloat64()
		y[i] = 2.0 + 1.5*x1[i] - 0.8*x2[i] + 0.1*rng.NormFloat64()
	}

	fit, err := FitOLS(y, [][]float64{x1, x2}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(fit.Coefficients) != 3 {
		t.Fatalf("Expected 3 coefficients, got %d", len(fit.Coefficients))
	}
	for i, want := range []float64{2.0, 1.5, -0.8} {
		if math.Abs(fit.Coefficients[i]-want) > 0.05 {
			t.Errorf("Coefficient %d: expected %v, got %v", i, want, fit.Coefficients[i])
		}
	}
	if fit.PValues[1] > 0.001 {
		t.Errorf("Strong regressor should be significant, got p=%v", fit.PValues[1])
	}
}

// TestConfidenceIntervalOrdering tests lower <= upper and coverage of the
// point estimate
func TestConfidenceIntervalOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	n := 200
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = rng.NormFloat64()
		y[i] = 0.5*x[i] + rng.NormFloat64()
	}

	fit, err := FitOLS(y, [][]float64{x}, true)
	if err != nil {
		t.Fatal(err)
	}
	for i := range fit.Coefficients {
		lower, upper := fit.ConfidenceInterval(i, 0.95)
		if lower > upper {
			t.Errorf("Coefficient %d: lower %v > upper %v", i, lower, upper)
		}
		if fit.Coefficients[i] < lower || fit.Coefficients[i] > upper {
			t.Errorf("Coefficient %d: point estimate outside its own interval", i)
		}
	}
}

// TestFitOLSInsufficientData tests the degrees-of-freedom guard
func TestFitOLSInsufficientData(t *testing.T) {
	if _, err := FitOLS([]float64{1, 2}, [][]float64{{1, 2}, {3, 4}}, true); err == nil {
		t.Error("Expected error with fewer observations than parameters")
	}
	if _, err := FitOLS(nil, nil, true); err == nil {
		t.Error("Expected error for empty response")
	}
}

// TestResidualVariance tests the score helper against a near-perfect fit
func TestResidualVariance(t *testing.T) {
	n := 100
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = 3*x[i] + 1
	}
	v, err := ResidualVariance(y, [][]float64{x})
	if err != nil {
		t.Fatal(err)
	}
	if v > 1e-9 {
		t.Errorf("Perfect linear fit should leave no residual variance, got %v", v)
	}
}
