package stats

import (
	"fmt"
	"math"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OLSResult holds a fitted least-squares regression. Coefficient order
// matches the regressor order passed to FitOLS, with the intercept first
// when one was requested.
type OLSResult struct {
	Coefficients []float64
	StdErrors    []float64
	TStats       []float64
	PValues      []float64
	Residuals    []float64
	Sigma2       float64
	DF           int
	Intercept    bool
}

// ConfidenceInterval returns the two-sided interval for coefficient i at
// the given confidence level (e.g. 0.95). Lower is always <= upper.
func (r *OLSResult) ConfidenceInterval(i int, level float64) (float64, float64) {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(r.DF)}
	q := t.Quantile(0.5 + level/2)
	margin := q * r.StdErrors[i]
	return r.Coefficients[i] - margin, r.Coefficients[i] + margin
}

// FitOLS fits y on the given regressor columns by ordinary least squares.
// Standard errors, t statistics and p-values come from the classical
// homoskedastic covariance (X'X)^-1 sigma^2.
func FitOLS(y []float64, regressors [][]float64, intercept bool) (*OLSResult, error) {
	n := len(y)
	if n == 0 {
		return nil, core.ErrEmptyDataset
	}
	p := len(regressors)
	if intercept {
		p++
	}
	if n <= p {
		return nil, fmt.Errorf("%w: %d observations for %d parameters", core.ErrInsufficientData, n, p)
	}

	X := mat.NewDense(n, p, nil)
	col := 0
	if intercept {
		for i := 0; i < n; i++ {
			X.Set(i, 0, 1)
		}
		col = 1
	}
	for _, reg := range regressors {
		if len(reg) != n {
			return nil, fmt.Errorf("regressor has %d rows, expected %d", len(reg), n)
		}
		for i, v := range reg {
			X.Set(i, col, v)
		}
		col++
	}
	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(X)
	beta := mat.NewVecDense(p, nil)
	if err := qr.SolveVecTo(beta, false, yVec); err != nil {
		return nil, fmt.Errorf("least squares solve failed: %w", err)
	}

	// Residuals and error variance.
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(X, beta)
	residuals := make([]float64, n)
	rss := 0.0
	for i := 0; i < n; i++ {
		residuals[i] = y[i] - fitted.AtVec(i)
		rss += residuals[i] * residuals[i]
	}
	df := n - p
	sigma2 := rss / float64(df)

	// Coefficient covariance (X'X)^-1 sigma^2.
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("design matrix is rank deficient: %w", err)
	}

	coeffs := make([]float64, p)
	stderrs := make([]float64, p)
	tstats := make([]float64, p)
	pvalues := make([]float64, p)
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	for i := 0; i < p; i++ {
		coeffs[i] = beta.AtVec(i)
		stderrs[i] = math.Sqrt(inv.At(i, i) * sigma2)
		if stderrs[i] > 0 {
			tstats[i] = coeffs[i] / stderrs[i]
			pvalues[i] = 2 * (1 - tdist.CDF(math.Abs(tstats[i])))
		} else {
			pvalues[i] = 1
		}
	}

	return &OLSResult{
		Coefficients: coeffs,
		StdErrors:    stderrs,
		TStats:       tstats,
		PValues:      pvalues,
		Residuals:    residuals,
		Sigma2:       sigma2,
		DF:           df,
		Intercept:    intercept,
	}, nil
}

// ResidualVariance returns the variance of y after regressing out the
// given columns. Used by the BIC score in score-based discovery.
func ResidualVariance(y []float64, regressors [][]float64) (float64, error) {
	if len(regressors) == 0 {
		mean := 0.0
		for _, v := range y {
			mean += v
		}
		mean /= float64(len(y))
		ss := 0.0
		for _, v := range y {
			ss += (v - mean) * (v - mean)
		}
		return ss / float64(len(y)), nil
	}
	fit, err := FitOLS(y, regressors, true)
	if err != nil {
		return 0, err
	}
	ss := 0.0
	for _, r := range fit.Residuals {
		ss += r * r
	}
	return ss / float64(len(y)), nil
}
