package ports

import (
	"gocausal/domain/causal"
	"gocausal/domain/dataset"
	"gocausal/domain/graph"
)

// IndependenceTest computes the p-value of the null hypothesis that x and
// y are independent given the conditioning columns. An empty conditioning
// set makes it a marginal independence test.
type IndependenceTest interface {
	Name() string
	Test(ds *dataset.Dataset, x, y string, conditioning []string) (float64, error)
}

// Falsifier statistically tests a candidate graph against data and derives
// suggested edge corrections.
type Falsifier interface {
	// Falsify runs the permutation-based falsification procedure with
	// nPermutations null-distribution samples. The caller chooses
	// nPermutations deliberately: statistical power and cost trade off
	// directly and no default is judged correct.
	Falsify(g *graph.CausalGraph, ds *dataset.Dataset, nPermutations int, indep, condIndep IndependenceTest) (*causal.RefutationOfGraph, error)

	// ApplySuggestions returns a copy of g with the refutation's suggested
	// corrections applied. The input graph is never mutated.
	ApplySuggestions(g *graph.CausalGraph, r *causal.RefutationOfGraph) *graph.CausalGraph
}
