package stats

import (
	"fmt"
	"math"

	"gocausal/domain/core"
	"gocausal/domain/dataset"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// FisherZ is a (conditional) independence test for roughly Gaussian data:
// the partial correlation of x and y given the conditioning set is
// z-transformed and compared against a standard normal null.
type FisherZ struct{}

// NewFisherZ creates the test.
func NewFisherZ() *FisherZ {
	return &FisherZ{}
}

// Name returns the test identifier.
func (t *FisherZ) Name() string {
	return "fisher_z"
}

// Test returns the p-value of the null "x independent of y given
// conditioning". Small p-values reject independence.
func (t *FisherZ) Test(ds *dataset.Dataset, x, y string, conditioning []string) (float64, error) {
	cols := make([][]float64, 0, len(conditioning)+2)
	for _, name := range append([]string{x, y}, conditioning...) {
		col, err := ds.Column(name)
		if err != nil {
			return 0, err
		}
		cols = append(cols, col)
	}
	n := ds.Rows()
	k := len(conditioning)
	if n-k-3 <= 0 {
		return 0, fmt.Errorf("%w: %d rows with %d conditioning variables", core.ErrInsufficientData, n, k)
	}

	r, err := partialCorrelation(cols)
	if err != nil {
		return 0, err
	}
	return FisherZPValue(r, n, k), nil
}

// FisherZPValue converts a (partial) correlation on n samples with k
// conditioning variables into a two-sided p-value.
func FisherZPValue(r float64, n, k int) float64 {
	// Clamp away from +-1 so the transform stays finite.
	r = math.Max(-0.999999, math.Min(0.999999, r))
	z := 0.5 * math.Log((1+r)/(1-r))
	statistic := math.Sqrt(float64(n-k-3)) * math.Abs(z)
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * (1 - normal.CDF(statistic))
	return math.Max(0, math.Min(1, p))
}

// partialCorrelation computes the correlation of cols[0] and cols[1] given
// cols[2:] by inverting the correlation matrix. With no conditioning
// columns this reduces to the plain Pearson correlation.
func partialCorrelation(cols [][]float64) (float64, error) {
	if len(cols) == 2 {
		return stat.Correlation(cols[0], cols[1], nil), nil
	}

	p := len(cols)
	corr := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		corr.SetSym(i, i, 1)
		for j := i + 1; j < p; j++ {
			corr.SetSym(i, j, stat.Correlation(cols[i], cols[j], nil))
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(corr); err != nil {
		// Singular correlation matrix, e.g. perfectly collinear
		// conditioning variables.
		return 0, fmt.Errorf("correlation matrix is singular: %w", err)
	}
	denom := math.Sqrt(inv.At(0, 0) * inv.At(1, 1))
	if denom == 0 || math.IsNaN(denom) {
		return 0, nil
	}
	return -inv.At(0, 1) / denom, nil
}
