package ports

import (
	"gocausal/domain/causal"
	"gocausal/domain/graph"

	"gonum.org/v1/gonum/mat"
)

// DiscoveryBackend is one interchangeable graph discovery strategy. It
// takes the observations as a rows x variables matrix plus the ordered
// variable names and returns a fully-directed acyclic graph; strategies
// whose native output is partially directed normalize it to a DAG before
// returning.
type DiscoveryBackend interface {
	Name() causal.DiscoveryAlgorithm
	Discover(data *mat.Dense, labels []string) (*graph.CausalGraph, error)
}
