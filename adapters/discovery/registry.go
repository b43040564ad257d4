package discovery

import (
	"gocausal/adapters/stats"
	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/ports"
)

// DefaultAlpha is the significance level the constraint-based search uses
// when the caller does not configure one.
const DefaultAlpha = 0.05

// BackendFor acts as the factory over the closed set of discovery
// strategies. Adding an algorithm means one new case here.
func BackendFor(algo causal.DiscoveryAlgorithm) (ports.DiscoveryBackend, error) {
	switch algo {
	case causal.AlgorithmPC:
		return NewPC(DefaultAlpha, stats.NewFisherZ()), nil
	case causal.AlgorithmGES:
		return NewGES(), nil
	case causal.AlgorithmICALiNGAM:
		return NewICALiNGAM(), nil
	default:
		return nil, core.NewAlgorithmError(string(algo))
	}
}
