package discovery

import (
	"math"

	"gocausal/adapters/stats"
	"gocausal/domain/causal"
	"gocausal/domain/graph"

	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"
)

// ICALiNGAM recovers a causal order under the linear non-Gaussian model:
// the most exogenous variable is selected repeatedly using the pairwise
// likelihood-ratio measure of Hyvarinen and Smith, its influence is
// regressed out of the remaining variables, and the resulting total order
// is pruned back to a DAG with coefficient t-tests.
type ICALiNGAM struct {
	PruneAlpha float64 // significance level for keeping an edge
}

// NewICALiNGAM creates a LiNGAM backend with the default pruning level.
func NewICALiNGAM() *ICALiNGAM {
	return &ICALiNGAM{PruneAlpha: 0.05}
}

// Name returns the algorithm identifier.
func (l *ICALiNGAM) Name() causal.DiscoveryAlgorithm {
	return causal.AlgorithmICALiNGAM
}

// Discover estimates the causal order and prunes it into a DAG.
func (l *ICALiNGAM) Discover(data *mat.Dense, labels []string) (*graph.CausalGraph, error) {
	ds, err := datasetFromMatrix(data, labels)
	if err != nil {
		return nil, err
	}

	// Working copies: each selection step replaces the remaining columns
	// with their residuals after regressing out the chosen root.
	working := make(map[string][]float64, len(labels))
	original := make(map[string][]float64, len(labels))
	for _, name := range labels {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		working[name] = col
		original[name] = append([]float64(nil), col...)
	}

	remaining := append([]string(nil), labels...)
	order := make([]string, 0, len(labels))
	for len(remaining) > 1 {
		root := mostExogenous(remaining, working)
		order = append(order, root)

		next := make([]string, 0, len(remaining)-1)
		for _, name := range remaining {
			if name == root {
				continue
			}
			working[name] = residualOn(working[name], working[root])
			next = append(next, name)
		}
		remaining = next
	}
	order = append(order, remaining[0])

	// Prune the full lower-triangular structure: regress each variable on
	// all its predecessors in the order and keep significant coefficients.
	dag := graph.New(labels)
	for i := 1; i < len(order); i++ {
		predecessors := order[:i]
		regressors := make([][]float64, len(predecessors))
		for j, p := range predecessors {
			regressors[j] = original[p]
		}
		fit, err := stats.FitOLS(original[order[i]], regressors, true)
		if err != nil {
			return nil, err
		}
		for j, p := range predecessors {
			// Coefficient 0 is the intercept.
			if fit.PValues[j+1] < l.PruneAlpha {
				if err := dag.AddEdge(p, order[i]); err != nil {
					return nil, err
				}
			}
		}
	}
	return dag, nil
}

// mostExogenous picks the variable minimizing the summed evidence that any
// other remaining variable causes it.
func mostExogenous(remaining []string, columns map[string][]float64) string {
	best := remaining[0]
	bestScore := math.Inf(1)
	for _, candidate := range remaining {
		score := 0.0
		for _, other := range remaining {
			if other == candidate {
				continue
			}
			r := pairwiseLR(columns[candidate], columns[other])
			// Only evidence against candidate -> other counts.
			score += math.Pow(math.Min(0, r), 2)
		}
		if score < bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}

// pairwiseLR is the Hyvarinen-Smith likelihood ratio for x -> y versus
// y -> x on standardized data. Positive values favor x -> y.
func pairwiseLR(x, y []float64) float64 {
	xs := standardize(x)
	ys := standardize(y)
	rho := gstat.Correlation(xs, ys, nil)

	n := float64(len(xs))
	var xty, txy float64
	for i := range xs {
		xty += xs[i] * math.Tanh(ys[i])
		txy += math.Tanh(xs[i]) * ys[i]
	}
	return rho * (xty - txy) / n
}

func standardize(v []float64) []float64 {
	mean, std := gstat.MeanStdDev(v, nil)
	if std == 0 {
		std = 1
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - mean) / std
	}
	return out
}

// residualOn returns y minus its least-squares projection on x.
func residualOn(y, x []float64) []float64 {
	varX := gstat.Variance(x, nil)
	if varX == 0 {
		return append([]float64(nil), y...)
	}
	cov := gstat.Covariance(x, y, nil)
	b := cov / varX
	meanX := gstat.Mean(x, nil)
	meanY := gstat.Mean(y, nil)
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] - meanY - b*(x[i]-meanX)
	}
	return out
}
