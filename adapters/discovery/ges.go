package discovery

import (
	"math"

	"gocausal/adapters/stats"
	"gocausal/domain/causal"
	"gocausal/domain/graph"

	"gonum.org/v1/gonum/mat"
)

// GES is the score-based search: a greedy equivalence-style hill climb
// over DAGs under the Gaussian BIC criterion, with a forward edge
// insertion phase followed by a backward edge deletion phase. Candidate
// moves are evaluated in column order so the search is deterministic.
type GES struct{}

// NewGES creates a score-based search backend.
func NewGES() *GES {
	return &GES{}
}

// Name returns the algorithm identifier.
func (g *GES) Name() causal.DiscoveryAlgorithm {
	return causal.AlgorithmGES
}

// Discover runs the two-phase greedy search.
func (g *GES) Discover(data *mat.Dense, labels []string) (*graph.CausalGraph, error) {
	ds, err := datasetFromMatrix(data, labels)
	if err != nil {
		return nil, err
	}
	columns := make(map[string][]float64, len(labels))
	for _, name := range labels {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		columns[name] = col
	}

	dag := graph.New(labels)
	n := float64(ds.Rows())

	// Local BIC per node: n*ln(residual variance) + (#parents+1)*ln(n).
	// The total score is the sum of the node scores, so a single-edge move
	// only re-scores the child node.
	nodeScore := func(node string, parents []string) (float64, error) {
		regressors := make([][]float64, len(parents))
		for i, p := range parents {
			regressors[i] = columns[p]
		}
		variance, err := stats.ResidualVariance(columns[node], regressors)
		if err != nil {
			return math.Inf(1), nil
		}
		if variance <= 0 {
			variance = 1e-12
		}
		return n*math.Log(variance)+float64(len(parents)+1)*math.Log(n), nil
	}

	scores := make(map[string]float64, len(labels))
	for _, node := range labels {
		s, err := nodeScore(node, nil)
		if err != nil {
			return nil, err
		}
		scores[node] = s
	}

	// Forward phase: keep inserting the single edge with the best score
	// improvement while one exists.
	for {
		bestDelta := -1e-9
		bestFrom, bestTo := "", ""
		var bestScore float64
		for _, from := range labels {
			for _, to := range labels {
				if from == to || dag.HasEdge(from, to) || dag.WouldCreateCycle(from, to) {
					continue
				}
				parents := append(dag.Parents(to), from)
				s, err := nodeScore(to, parents)
				if err != nil {
					return nil, err
				}
				delta := s - scores[to]
				if delta < bestDelta {
					bestDelta = delta
					bestFrom, bestTo = from, to
					bestScore = s
				}
			}
		}
		if bestFrom == "" {
			break
		}
		if err := dag.AddEdge(bestFrom, bestTo); err != nil {
			return nil, err
		}
		scores[bestTo] = bestScore
	}

	// Backward phase: keep deleting the single edge with the best score
	// improvement while one exists.
	for {
		bestDelta := -1e-9
		var bestEdge graph.Edge
		var bestScore float64
		found := false
		for _, e := range dag.Edges() {
			parents := removeString(dag.Parents(e.To), e.From)
			s, err := nodeScore(e.To, parents)
			if err != nil {
				return nil, err
			}
			delta := s - scores[e.To]
			if delta < bestDelta {
				bestDelta = delta
				bestEdge = e
				bestScore = s
				found = true
			}
		}
		if !found {
			break
		}
		dag.RemoveEdge(bestEdge.From, bestEdge.To)
		scores[bestEdge.To] = bestScore
	}

	return dag, nil
}

func removeString(vals []string, drop string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
