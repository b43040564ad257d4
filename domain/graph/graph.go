package graph

import (
	"fmt"
	"sort"

	"gocausal/domain/core"
)

// Edge is a directed edge between two named variables.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

// CausalGraph is a directed graph over variable names. Discovery produces
// one per run; the knowledge adjuster and refiner mutate it in place.
// Acyclicity is an invariant of discovery output, not of every intermediate
// state: AddEdge deliberately does not reject cycle-introducing edges (see
// the prior-knowledge contract).
type CausalGraph struct {
	nodes    []string
	index    map[string]int
	children map[string]map[string]bool
	parents  map[string]map[string]bool
}

// New creates a graph over the given node names with no edges. Node order
// is preserved and used by deterministic tie-breaking rules elsewhere.
func New(nodes []string) *CausalGraph {
	g := &CausalGraph{
		nodes:    append([]string(nil), nodes...),
		index:    make(map[string]int, len(nodes)),
		children: make(map[string]map[string]bool, len(nodes)),
		parents:  make(map[string]map[string]bool, len(nodes)),
	}
	for i, n := range nodes {
		g.index[n] = i
		g.children[n] = make(map[string]bool)
		g.parents[n] = make(map[string]bool)
	}
	return g
}

// Nodes returns the node names in their original column order.
func (g *CausalGraph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// NodeCount returns the number of nodes.
func (g *CausalGraph) NodeCount() int {
	return len(g.nodes)
}

// HasNode reports whether the named node exists.
func (g *CausalGraph) HasNode(name string) bool {
	_, ok := g.index[name]
	return ok
}

// NodeIndex returns the position of the node in the original column order.
func (g *CausalGraph) NodeIndex(name string) (int, bool) {
	i, ok := g.index[name]
	return i, ok
}

// AddEdge inserts the directed edge from->to. Unknown endpoints are an
// error; re-adding an existing edge is a no-op.
func (g *CausalGraph) AddEdge(from, to string) error {
	if !g.HasNode(from) {
		return fmt.Errorf("%w: %s", core.ErrNodeNotFound, from)
	}
	if !g.HasNode(to) {
		return fmt.Errorf("%w: %s", core.ErrNodeNotFound, to)
	}
	if from == to {
		return fmt.Errorf("self loop %s->%s not allowed", from, to)
	}
	g.children[from][to] = true
	g.parents[to][from] = true
	return nil
}

// RemoveEdge deletes the directed edge from->to if present.
func (g *CausalGraph) RemoveEdge(from, to string) {
	if g.HasNode(from) && g.HasNode(to) {
		delete(g.children[from], to)
		delete(g.parents[to], from)
	}
}

// HasEdge reports whether the directed edge from->to exists.
func (g *CausalGraph) HasEdge(from, to string) bool {
	if !g.HasNode(from) {
		return false
	}
	return g.children[from][to]
}

// Edges returns all directed edges sorted by (from, to) column order.
func (g *CausalGraph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.nodes {
		for to := range g.children[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return g.index[edges[i].From] < g.index[edges[j].From]
		}
		return g.index[edges[i].To] < g.index[edges[j].To]
	})
	return edges
}

// EdgeCount returns the number of directed edges.
func (g *CausalGraph) EdgeCount() int {
	n := 0
	for _, from := range g.nodes {
		n += len(g.children[from])
	}
	return n
}

// Parents returns the parents of a node sorted by column order.
func (g *CausalGraph) Parents(node string) []string {
	return g.sortedSet(g.parents[node])
}

// Children returns the children of a node sorted by column order.
func (g *CausalGraph) Children(node string) []string {
	return g.sortedSet(g.children[node])
}

func (g *CausalGraph) sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return g.index[out[i]] < g.index[out[j]] })
	return out
}

// Ancestors returns all ancestors of the node (excluding the node itself).
func (g *CausalGraph) Ancestors(node string) map[string]bool {
	return g.reach(node, g.parents)
}

// Descendants returns all descendants of the node (excluding the node itself).
func (g *CausalGraph) Descendants(node string) map[string]bool {
	return g.reach(node, g.children)
}

func (g *CausalGraph) reach(start string, next map[string]map[string]bool) map[string]bool {
	seen := make(map[string]bool)
	stack := []string{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for n := range next[cur] {
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	delete(seen, start)
	return seen
}

// HasCycle reports whether the graph contains a directed cycle.
func (g *CausalGraph) HasCycle() bool {
	_, err := g.TopologicalOrder()
	return err != nil
}

// TopologicalOrder returns a topological ordering of the nodes, breaking
// ties by column order so the result is deterministic. Fails on cycles.
func (g *CausalGraph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n] = len(g.parents[n])
	}
	var ready []string
	for _, n := range g.nodes {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		// Lowest column index first keeps the order deterministic.
		sort.Slice(ready, func(i, j int) bool { return g.index[ready[i]] < g.index[ready[j]] })
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for child := range g.children[cur] {
			inDegree[child]--
			if inDegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}
	if len(order) != len(g.nodes) {
		return nil, core.ErrCyclicGraph
	}
	return order, nil
}

// WouldCreateCycle reports whether adding from->to would introduce a cycle.
func (g *CausalGraph) WouldCreateCycle(from, to string) bool {
	if from == to {
		return true
	}
	return g.Descendants(to)[from]
}

// Clone returns a deep copy of the graph.
func (g *CausalGraph) Clone() *CausalGraph {
	out := New(g.nodes)
	for from, set := range g.children {
		for to := range set {
			out.children[from][to] = true
			out.parents[to][from] = true
		}
	}
	return out
}

// Equal reports whether both graphs have identical node sets and edge sets.
func (g *CausalGraph) Equal(other *CausalGraph) bool {
	if other == nil || len(g.nodes) != len(other.nodes) {
		return false
	}
	for i, n := range g.nodes {
		if other.nodes[i] != n {
			return false
		}
	}
	if g.EdgeCount() != other.EdgeCount() {
		return false
	}
	for from, set := range g.children {
		for to := range set {
			if !other.HasEdge(from, to) {
				return false
			}
		}
	}
	return true
}

// RelabelNodes returns a copy of the graph whose edge structure is carried
// over through the given node permutation: an edge a->b becomes
// mapping[a]->mapping[b]. Used by the falsification null distribution.
func (g *CausalGraph) RelabelNodes(mapping map[string]string) (*CausalGraph, error) {
	out := New(g.nodes)
	for from, set := range g.children {
		for to := range set {
			nf, ok := mapping[from]
			if !ok {
				return nil, fmt.Errorf("%w: %s", core.ErrNodeNotFound, from)
			}
			nt, ok := mapping[to]
			if !ok {
				return nil, fmt.Errorf("%w: %s", core.ErrNodeNotFound, to)
			}
			if err := out.AddEdge(nf, nt); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
