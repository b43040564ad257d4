package discovery

import (
	"fmt"
	"sort"

	"gocausal/domain/causal"
	"gocausal/domain/dataset"
	"gocausal/domain/graph"
	"gocausal/ports"

	"gonum.org/v1/gonum/mat"
)

// PC is the constraint-based search: it prunes a complete skeleton with
// conditional-independence tests of increasing order (stable variant, so
// the result does not depend on edge visiting order within a level),
// orients v-structures from the separating sets, applies the Meek rules,
// and normalizes the remaining partially directed edges into a DAG.
type PC struct {
	Alpha    float64
	Test     ports.IndependenceTest
	MaxOrder int // largest conditioning set size; <=0 means unbounded
}

// NewPC creates a PC backend with the given significance level and test.
func NewPC(alpha float64, test ports.IndependenceTest) *PC {
	return &PC{Alpha: alpha, Test: test}
}

// Name returns the algorithm identifier.
func (p *PC) Name() causal.DiscoveryAlgorithm {
	return causal.AlgorithmPC
}

// Discover runs the search over the observation matrix.
func (p *PC) Discover(data *mat.Dense, labels []string) (*graph.CausalGraph, error) {
	ds, err := datasetFromMatrix(data, labels)
	if err != nil {
		return nil, err
	}
	n := len(labels)

	// Complete skeleton.
	adj := make([]map[int]bool, n)
	for i := range adj {
		adj[i] = make(map[int]bool, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				adj[i][j] = true
			}
		}
	}
	sepsets := make(map[[2]int][]int)

	maxOrder := p.MaxOrder
	if maxOrder <= 0 {
		maxOrder = n - 2
	}

	for order := 0; order <= maxOrder; order++ {
		// Stable variant: freeze the adjacency sets for this level.
		frozen := make([][]int, n)
		for i := range adj {
			frozen[i] = sortedKeys(adj[i])
		}

		anyTestable := false
		for i := 0; i < n; i++ {
			for _, j := range frozen[i] {
				if j < i || !adj[i][j] {
					continue
				}
				candidates := exclude(frozen[i], j)
				if len(candidates) < order {
					continue
				}
				anyTestable = true
				removed, err := p.pruneEdge(ds, labels, i, j, candidates, order, adj, sepsets)
				if err != nil {
					return nil, err
				}
				if removed {
					continue
				}
				// Also condition on neighbours of j, as the skeleton
				// search is symmetric in the pair.
				candidates = exclude(frozen[j], i)
				if len(candidates) >= order {
					if _, err := p.pruneEdge(ds, labels, i, j, candidates, order, adj, sepsets); err != nil {
						return nil, err
					}
				}
			}
		}
		if !anyTestable {
			break
		}
	}

	pdag := NewPDAG(labels)
	for i := 0; i < n; i++ {
		for j := range adj[i] {
			if i < j {
				pdag.AddUndirected(i, j)
			}
		}
	}
	orientVStructures(pdag, adj, sepsets)
	applyMeekRules(pdag)
	return pdag.ToDAG()
}

// pruneEdge tries every conditioning subset of the given order; on the
// first independence finding it removes i - j and records the sepset.
func (p *PC) pruneEdge(ds *dataset.Dataset, labels []string, i, j int, candidates []int, order int, adj []map[int]bool, sepsets map[[2]int][]int) (bool, error) {
	for _, subset := range combinations(candidates, order) {
		cond := make([]string, len(subset))
		for k, idx := range subset {
			cond[k] = labels[idx]
		}
		pValue, err := p.Test.Test(ds, labels[i], labels[j], cond)
		if err != nil {
			return false, fmt.Errorf("independence test %s vs %s: %w", labels[i], labels[j], err)
		}
		if pValue > p.Alpha {
			delete(adj[i], j)
			delete(adj[j], i)
			key := [2]int{min(i, j), max(i, j)}
			sepsets[key] = append([]int(nil), subset...)
			return true, nil
		}
	}
	return false, nil
}

// orientVStructures orients i -> k <- j for every unshielded triple whose
// separating set excludes the collider k.
func orientVStructures(p *PDAG, adj []map[int]bool, sepsets map[[2]int][]int) {
	n := len(p.labels)
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if i == k || !adj[i][k] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if j == k || !adj[j][k] || adj[i][j] {
					continue
				}
				sep, ok := sepsets[[2]int{min(i, j), max(i, j)}]
				if !ok || containsInt(sep, k) {
					continue
				}
				if p.HasUndirected(i, k) {
					p.Orient(i, k)
				}
				if p.HasUndirected(j, k) {
					p.Orient(j, k)
				}
			}
		}
	}
}

// applyMeekRules propagates orientations until fixpoint. Rules 1-3 of
// Meek (1995); rule 4 never fires without background knowledge.
func applyMeekRules(p *PDAG) {
	n := len(p.labels)
	changed := true
	for changed {
		changed = false
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				if a == b || !p.HasUndirected(a, b) {
					continue
				}
				// Rule 1: c -> a, c not adjacent to b  =>  a -> b.
				for c := 0; c < n; c++ {
					if c != b && p.HasDirected(c, a) && !p.Adjacent(c, b) {
						p.Orient(a, b)
						changed = true
						break
					}
				}
				if !p.HasUndirected(a, b) {
					continue
				}
				// Rule 2: a -> c -> b  =>  a -> b.
				for c := 0; c < n; c++ {
					if c != a && c != b && p.HasDirected(a, c) && p.HasDirected(c, b) {
						p.Orient(a, b)
						changed = true
						break
					}
				}
				if !p.HasUndirected(a, b) {
					continue
				}
				// Rule 3: a - c -> b and a - d -> b with c, d non-adjacent
				// =>  a -> b.
				for c := 0; c < n; c++ {
					if c == a || c == b || !p.HasUndirected(a, c) || !p.HasDirected(c, b) {
						continue
					}
					for d := c + 1; d < n; d++ {
						if d == a || d == b || !p.HasUndirected(a, d) || !p.HasDirected(d, b) {
							continue
						}
						if !p.Adjacent(c, d) {
							p.Orient(a, b)
							changed = true
							break
						}
					}
					if !p.HasUndirected(a, b) {
						break
					}
				}
			}
		}
	}
}

func datasetFromMatrix(data *mat.Dense, labels []string) (*dataset.Dataset, error) {
	rows, cols := data.Dims()
	if cols != len(labels) {
		return nil, fmt.Errorf("matrix has %d columns, expected %d labels", cols, len(labels))
	}
	columns := make([][]float64, cols)
	for j := 0; j < cols; j++ {
		col := make([]float64, rows)
		mat.Col(col, j, data)
		columns[j] = col
	}
	return dataset.New(labels, columns)
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func exclude(vals []int, drop int) []int {
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}

// combinations enumerates all subsets of the given size in lexicographic
// order over the (already ordered) candidate slice.
func combinations(vals []int, size int) [][]int {
	if size == 0 {
		return [][]int{{}}
	}
	if size > len(vals) {
		return nil
	}
	var out [][]int
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]int, size)
		for i, v := range idx {
			combo[i] = vals[v]
		}
		out = append(out, combo)

		i := size - 1
		for i >= 0 && idx[i] == len(vals)-size+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}

func containsInt(vals []int, v int) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
