package causal

import (
	"fmt"

	"gocausal/domain/core"
	"gocausal/domain/graph"
)

// PriorKnowledge carries user-supplied edge constraints applied to a
// discovered graph: required edges are inserted unconditionally, forbidden
// edges removed unconditionally. Required is applied before forbidden, so
// an edge named in both lists is ultimately removed.
type PriorKnowledge struct {
	Required  []graph.Edge `json:"required,omitempty"`
	Forbidden []graph.Edge `json:"forbidden,omitempty"`
}

// IsEmpty reports whether the record carries no constraints.
func (pk *PriorKnowledge) IsEmpty() bool {
	return pk == nil || (len(pk.Required) == 0 && len(pk.Forbidden) == 0)
}

// ParsePriorKnowledge builds a PriorKnowledge record from the loosely-typed
// mapping shape accepted at the entry points. Only the keys "required" and
// "forbidden" are recognized; each value is a list of [source, target]
// pairs. Any other key fails validation.
func ParsePriorKnowledge(raw map[string][][2]string) (*PriorKnowledge, error) {
	if raw == nil {
		return nil, nil
	}
	pk := &PriorKnowledge{}
	for key, pairs := range raw {
		edges := make([]graph.Edge, 0, len(pairs))
		for _, p := range pairs {
			if p[0] == "" || p[1] == "" {
				return nil, fmt.Errorf("%w: edge endpoints cannot be empty", core.ErrBadPriorShape)
			}
			edges = append(edges, graph.Edge{From: p[0], To: p[1]})
		}
		switch key {
		case "required":
			pk.Required = edges
		case "forbidden":
			pk.Forbidden = edges
		default:
			return nil, fmt.Errorf("%w: unrecognized key %q", core.ErrBadPriorShape, key)
		}
	}
	return pk, nil
}

// Apply mutates g per the constraints: required edges inserted first, then
// forbidden edges removed. Inserting a required edge may create a cycle;
// that is deliberately not checked here and surfaces downstream if the
// resulting graph is unusable.
func (pk *PriorKnowledge) Apply(g *graph.CausalGraph) error {
	if pk == nil {
		return nil
	}
	for _, e := range pk.Required {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return fmt.Errorf("required edge %s: %w", e, err)
		}
	}
	for _, e := range pk.Forbidden {
		g.RemoveEdge(e.From, e.To)
	}
	return nil
}
