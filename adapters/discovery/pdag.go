package discovery

import (
	"fmt"

	"gocausal/domain/graph"
)

// PDAG is a partially directed graph: the native output shape of the
// constraint-based search before normalization. Nodes are addressed by
// their column index into labels.
type PDAG struct {
	labels     []string
	directed   []map[int]bool // directed[i][j]: i -> j
	undirected []map[int]bool // symmetric
}

// NewPDAG creates an empty partially directed graph over the labels.
func NewPDAG(labels []string) *PDAG {
	p := &PDAG{
		labels:     append([]string(nil), labels...),
		directed:   make([]map[int]bool, len(labels)),
		undirected: make([]map[int]bool, len(labels)),
	}
	for i := range labels {
		p.directed[i] = make(map[int]bool)
		p.undirected[i] = make(map[int]bool)
	}
	return p
}

// AddUndirected inserts the undirected edge i - j.
func (p *PDAG) AddUndirected(i, j int) {
	p.undirected[i][j] = true
	p.undirected[j][i] = true
}

// RemoveUndirected deletes the undirected edge i - j.
func (p *PDAG) RemoveUndirected(i, j int) {
	delete(p.undirected[i], j)
	delete(p.undirected[j], i)
}

// Orient converts the undirected edge i - j into the directed edge i -> j.
func (p *PDAG) Orient(i, j int) {
	p.RemoveUndirected(i, j)
	p.directed[i][j] = true
}

// HasDirected reports the directed edge i -> j.
func (p *PDAG) HasDirected(i, j int) bool {
	return p.directed[i][j]
}

// HasUndirected reports the undirected edge i - j.
func (p *PDAG) HasUndirected(i, j int) bool {
	return p.undirected[i][j]
}

// Adjacent reports whether i and j are connected by any edge.
func (p *PDAG) Adjacent(i, j int) bool {
	return p.directed[i][j] || p.directed[j][i] || p.undirected[i][j]
}

// neighbors returns every node adjacent to i, in index order.
func (p *PDAG) neighbors(i int) []int {
	var out []int
	for j := range p.labels {
		if j != i && p.Adjacent(i, j) {
			out = append(out, j)
		}
	}
	return out
}

// directedWouldCycle reports whether adding i -> j to the directed part
// would close a directed cycle.
func (p *PDAG) directedWouldCycle(i, j int) bool {
	// DFS from j through directed edges looking for i.
	seen := make([]bool, len(p.labels))
	stack := []int{j}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == i {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for next := range p.directed[cur] {
			stack = append(stack, next)
		}
	}
	return false
}

// ToDAG normalizes the PDAG into a fully directed acyclic graph using the
// Dor-Tarsi extension: repeatedly take the lowest-indexed node that is a
// sink in the remaining subgraph and whose undirected neighbours are
// adjacent to all its other neighbours, and orient its undirected edges
// into it. When no such node exists the remaining ambiguity is resolved by
// orienting the smallest undirected edge from lower to higher column
// index, provided that does not close a cycle. The completion is
// deterministic for a given input.
func (p *PDAG) ToDAG() (*graph.CausalGraph, error) {
	work := p.clone()
	out := graph.New(p.labels)
	for i := range p.labels {
		for j := range p.directed[i] {
			if err := out.AddEdge(p.labels[i], p.labels[j]); err != nil {
				return nil, err
			}
		}
	}

	removed := make([]bool, len(p.labels))
	remaining := len(p.labels)
	for remaining > 0 {
		picked := -1
		for i := range p.labels {
			if removed[i] {
				continue
			}
			if work.isExtendableSink(i, removed) {
				picked = i
				break
			}
		}

		if picked >= 0 {
			for j := range work.undirected[picked] {
				if !removed[j] {
					if err := out.AddEdge(p.labels[j], p.labels[picked]); err != nil {
						return nil, err
					}
				}
			}
			work.detach(picked)
			removed[picked] = true
			remaining--
			continue
		}

		// No extendable sink: the PDAG admits no consistent extension.
		// Resolve the smallest ambiguous edge deterministically.
		i, j, ok := work.smallestUndirected(removed)
		if !ok {
			return nil, fmt.Errorf("partially directed graph has no consistent extension")
		}
		if work.directedWouldCycle(i, j) {
			i, j = j, i
		}
		work.Orient(i, j)
		if err := out.AddEdge(p.labels[i], p.labels[j]); err != nil {
			return nil, err
		}
	}

	if out.HasCycle() {
		return nil, fmt.Errorf("completion produced a cyclic graph")
	}
	return out, nil
}

// isExtendableSink reports whether node i can be finalized: no outgoing
// directed edges among remaining nodes, and every undirected neighbour is
// adjacent to all other neighbours of i.
func (p *PDAG) isExtendableSink(i int, removed []bool) bool {
	for j := range p.directed[i] {
		if !removed[j] {
			return false
		}
	}
	for u := range p.undirected[i] {
		if removed[u] {
			continue
		}
		for _, v := range p.neighbors(i) {
			if removed[v] || v == u {
				continue
			}
			if !p.Adjacent(u, v) {
				return false
			}
		}
	}
	return true
}

// detach removes every edge incident to node i.
func (p *PDAG) detach(i int) {
	for j := range p.labels {
		delete(p.directed[i], j)
		delete(p.directed[j], i)
		p.RemoveUndirected(i, j)
	}
}

// smallestUndirected returns the undirected edge with the smallest (i, j)
// index pair among remaining nodes.
func (p *PDAG) smallestUndirected(removed []bool) (int, int, bool) {
	for i := range p.labels {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(p.labels); j++ {
			if !removed[j] && p.undirected[i][j] {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (p *PDAG) clone() *PDAG {
	out := NewPDAG(p.labels)
	for i := range p.labels {
		for j := range p.directed[i] {
			out.directed[i][j] = true
		}
		for j := range p.undirected[i] {
			out.undirected[i][j] = true
		}
	}
	return out
}
