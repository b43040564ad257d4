package testkit

import (
	"fmt"
	"math/rand"

	"gocausal/domain/dataset"
	"gocausal/domain/graph"
)

// SCMConfig configures the synthetic structural causal model generator.
type SCMConfig struct {
	SampleCount int     `json:"sample_count"`
	NoiseScale  float64 `json:"noise_scale"`
	Seed        int64   `json:"seed"`
}

// DefaultSCMConfig returns sensible defaults for SCM data generation.
func DefaultSCMConfig() SCMConfig {
	return SCMConfig{
		SampleCount: 500,
		NoiseScale:  1.0,
		Seed:        42,
	}
}

// SCM is a linear structural causal model with a known ground-truth graph.
// Samples are drawn in topological order, each node a linear combination
// of its parents plus Gaussian noise.
type SCM struct {
	config  SCMConfig
	graph   *graph.CausalGraph
	weights map[graph.Edge]float64
	order   []string
}

// NewSCM builds a model over the given acyclic graph with the given edge
// weights. Every edge in the graph must have a weight.
func NewSCM(config SCMConfig, g *graph.CausalGraph, weights map[graph.Edge]float64) (*SCM, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("scm requires an acyclic graph: %w", err)
	}
	for _, e := range g.Edges() {
		if _, ok := weights[e]; !ok {
			return nil, fmt.Errorf("missing weight for edge %s -> %s", e.From, e.To)
		}
	}
	return &SCM{config: config, graph: g, weights: weights, order: order}, nil
}

// Graph returns the ground-truth graph.
func (s *SCM) Graph() *graph.CausalGraph {
	return s.graph.Clone()
}

// TotalEffect returns the sum over all directed paths from treatment to
// outcome of the product of edge weights along each path. For a linear
// SCM this is the true average causal effect.
func (s *SCM) TotalEffect(treatment, outcome string) float64 {
	if treatment == outcome {
		return 1
	}
	total := 0.0
	for _, child := range s.graph.Children(treatment) {
		w := s.weights[graph.Edge{From: treatment, To: child}]
		total += w * s.TotalEffect(child, outcome)
	}
	return total
}

// Generate draws SampleCount rows from the model.
func (s *SCM) Generate() (*dataset.Dataset, error) {
	rng := rand.New(rand.NewSource(s.config.Seed))
	n := s.config.SampleCount

	values := make(map[string][]float64, len(s.order))
	for _, node := range s.order {
		col := make([]float64, n)
		parents := s.graph.Parents(node)
		for i := 0; i < n; i++ {
			v := rng.NormFloat64() * s.config.NoiseScale
			for _, p := range parents {
				v += s.weights[graph.Edge{From: p, To: node}] * values[p][i]
			}
			col[i] = v
		}
		values[node] = col
	}

	columns := s.graph.Nodes()
	data := make([][]float64, len(columns))
	for j, name := range columns {
		data[j] = values[name]
	}
	return dataset.New(columns, data)
}

// ChainSCM returns a model over the chain X -> M -> Y plus a confounder
// W -> X, W -> Y. The true effect of X on Y is the product of the chain
// weights.
func ChainSCM(config SCMConfig) *SCM {
	g := graph.New([]string{"W", "X", "M", "Y"})
	edges := map[graph.Edge]float64{
		{From: "W", To: "X"}: 0.8,
		{From: "W", To: "Y"}: 0.5,
		{From: "X", To: "M"}: 1.2,
		{From: "M", To: "Y"}: 0.7,
	}
	for e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			panic(err)
		}
	}
	scm, err := NewSCM(config, g, edges)
	if err != nil {
		panic(err)
	}
	return scm
}

// ConfoundedSCM returns a model over Z -> X -> Y with Z -> Y, the
// textbook backdoor scenario. Adjusting for Z recovers the direct
// X -> Y weight.
func ConfoundedSCM(config SCMConfig) *SCM {
	g := graph.New([]string{"Z", "X", "Y"})
	edges := map[graph.Edge]float64{
		{From: "Z", To: "X"}: 1.0,
		{From: "Z", To: "Y"}: 0.9,
		{From: "X", To: "Y"}: 0.6,
	}
	for e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			panic(err)
		}
	}
	scm, err := NewSCM(config, g, edges)
	if err != nil {
		panic(err)
	}
	return scm
}
