package falsify

import (
	"fmt"
	"math/rand"

	"gocausal/domain/causal"
	"gocausal/domain/dataset"
	"gocausal/domain/graph"
	"gocausal/ports"
)

// PermutationFalsifier tests a candidate graph's implied independence
// structure against data. The graph's local Markov condition violations
// are compared against a null distribution built from random node
// permutations of the same graph: if the candidate explains the data no
// better than a random relabeling, it is falsified.
type PermutationFalsifier struct {
	Alpha float64 // per-constraint significance level
	Seed  int64
}

// New creates a falsifier with the standard 0.05 constraint level.
func New(seed int64) *PermutationFalsifier {
	return &PermutationFalsifier{Alpha: 0.05, Seed: seed}
}

// Falsify runs the permutation-based falsification procedure.
func (f *PermutationFalsifier) Falsify(g *graph.CausalGraph, ds *dataset.Dataset, nPermutations int, indep, condIndep ports.IndependenceTest) (*causal.RefutationOfGraph, error) {
	if nPermutations <= 0 {
		return nil, fmt.Errorf("n_permutations must be positive, got %d", nPermutations)
	}
	if g.HasCycle() {
		return nil, fmt.Errorf("cannot falsify a cyclic graph")
	}

	constraints, violations, err := f.localMarkovViolations(g, ds, indep, condIndep, true)
	if err != nil {
		return nil, err
	}

	// Null distribution: violation counts of randomly relabeled copies.
	rng := rand.New(rand.NewSource(f.Seed))
	nodes := g.Nodes()
	atMostAsMany := 0
	for i := 0; i < nPermutations; i++ {
		perm := rng.Perm(len(nodes))
		mapping := make(map[string]string, len(nodes))
		for j, p := range perm {
			mapping[nodes[j]] = nodes[p]
		}
		relabeled, err := g.RelabelNodes(mapping)
		if err != nil {
			return nil, err
		}
		_, permViolations, err := f.localMarkovViolations(relabeled, ds, indep, condIndep, false)
		if err != nil {
			return nil, err
		}
		if permViolations <= violations {
			atMostAsMany++
		}
	}
	pValue := float64(atMostAsMany) / float64(nPermutations)

	suggestions, err := f.minimalitySuggestions(g, ds, indep, condIndep)
	if err != nil {
		return nil, err
	}

	return &causal.RefutationOfGraph{
		Constraints:     constraints,
		NumViolations:   violations,
		NumPermutations: nPermutations,
		PValue:          pValue,
		// The candidate is falsified when random relabelings violate the
		// data no more often than it does.
		Falsified:   pValue > f.Alpha,
		Suggestions: suggestions,
	}, nil
}

// ApplySuggestions removes every suggested edge on a copy of g.
func (f *PermutationFalsifier) ApplySuggestions(g *graph.CausalGraph, r *causal.RefutationOfGraph) *graph.CausalGraph {
	out := g.Clone()
	for _, e := range r.Suggestions {
		out.RemoveEdge(e.From, e.To)
	}
	return out
}

// localMarkovViolations tests, for every node, independence from each
// non-descendant given the node's parents. keepDetail controls whether the
// per-constraint records are materialized (skipped for null-distribution
// samples).
func (f *PermutationFalsifier) localMarkovViolations(g *graph.CausalGraph, ds *dataset.Dataset, indep, condIndep ports.IndependenceTest, keepDetail bool) ([]causal.ConstraintResult, int, error) {
	var results []causal.ConstraintResult
	violations := 0

	for _, node := range g.Nodes() {
		parents := g.Parents(node)
		parentSet := make(map[string]bool, len(parents))
		for _, p := range parents {
			parentSet[p] = true
		}
		descendants := g.Descendants(node)

		for _, other := range g.Nodes() {
			if other == node || parentSet[other] || descendants[other] {
				continue
			}
			test := condIndep
			if len(parents) == 0 {
				test = indep
			}
			p, err := test.Test(ds, node, other, parents)
			if err != nil {
				return nil, 0, fmt.Errorf("constraint %s _||_ %s | %v: %w", node, other, parents, err)
			}
			violated := p < f.Alpha
			if violated {
				violations++
			}
			if keepDetail {
				results = append(results, causal.ConstraintResult{
					Node:         node,
					Independent:  other,
					Conditioning: parents,
					PValue:       p,
					Violated:     violated,
				})
			}
		}
	}
	return results, violations, nil
}

// minimalitySuggestions proposes removing any edge u -> v whose child is
// independent of u given the child's remaining parents.
func (f *PermutationFalsifier) minimalitySuggestions(g *graph.CausalGraph, ds *dataset.Dataset, indep, condIndep ports.IndependenceTest) ([]graph.Edge, error) {
	var suggestions []graph.Edge
	for _, e := range g.Edges() {
		rest := make([]string, 0)
		for _, p := range g.Parents(e.To) {
			if p != e.From {
				rest = append(rest, p)
			}
		}
		test := condIndep
		if len(rest) == 0 {
			test = indep
		}
		p, err := test.Test(ds, e.To, e.From, rest)
		if err != nil {
			return nil, fmt.Errorf("minimality check for %s: %w", e, err)
		}
		if p > f.Alpha {
			suggestions = append(suggestions, e)
		}
	}
	return suggestions, nil
}
