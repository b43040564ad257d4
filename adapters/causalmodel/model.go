package causalmodel

import (
	"fmt"

	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/domain/graph"
	"gocausal/ports"
)

// Backend constructs causal models binding data, graph and the
// treatment/outcome pair.
type Backend struct{}

// NewBackend creates the model backend.
func NewBackend() *Backend {
	return &Backend{}
}

// NewModel validates the binding and returns an immutable model. The graph
// is cloned so later mutations of the active pipeline graph cannot leak
// into an already-built model.
func (b *Backend) NewModel(ds *dataset.Dataset, treatment, outcome string, g *graph.CausalGraph) (ports.CausalModel, error) {
	if ds == nil {
		return nil, core.ErrEmptyDataset
	}
	if g == nil {
		return nil, core.ErrNoGraph
	}
	if !ds.HasColumn(treatment) {
		return nil, core.NewColumnError(treatment)
	}
	if !ds.HasColumn(outcome) {
		return nil, core.NewColumnError(outcome)
	}
	if treatment == outcome {
		return nil, fmt.Errorf("treatment and outcome must differ, both are %q", treatment)
	}
	if !g.HasNode(treatment) {
		return nil, fmt.Errorf("%w: treatment %s missing from graph", core.ErrNodeNotFound, treatment)
	}
	if !g.HasNode(outcome) {
		return nil, fmt.Errorf("%w: outcome %s missing from graph", core.ErrNodeNotFound, outcome)
	}
	return &Model{
		ds:        ds,
		g:         g.Clone(),
		treatment: treatment,
		outcome:   outcome,
	}, nil
}

// Model is the bound causal model. Immutable once built.
type Model struct {
	ds        *dataset.Dataset
	g         *graph.CausalGraph
	treatment string
	outcome   string
}

// Data returns the bound dataset.
func (m *Model) Data() *dataset.Dataset { return m.ds }

// Graph returns the bound graph.
func (m *Model) Graph() *graph.CausalGraph { return m.g }

// Treatment returns the treatment variable name.
func (m *Model) Treatment() string { return m.treatment }

// Outcome returns the outcome variable name.
func (m *Model) Outcome() string { return m.outcome }
