package causalmodel

import (
	"sort"

	"gocausal/domain/causal"
	"gocausal/domain/core"
)

// minimalIterationBudget bounds the backward-elimination search of the
// minimal policy; exceeding it yields no adjustment set rather than an
// unbounded search.
const minimalIterationBudget = 10000

// IdentifyEffect derives the backdoor estimand for the model's
// treatment/outcome pair under the given policy. When no policy achieves a
// valid adjustment set the returned Estimand has an empty estimand type
// and IsValid reports false; that is a recoverable condition for the
// caller, not an error.
func (m *Model) IdentifyEffect(method causal.IdentifyMethod) (*causal.Estimand, error) {
	method, err := causal.ParseIdentifyMethod(string(method))
	if err != nil {
		return nil, err
	}

	estimand := &causal.Estimand{
		Treatment: m.treatment,
		Outcome:   m.outcome,
		Method:    method,
	}

	pool := m.backdoorCandidates()
	switch method {
	case causal.IdentifyMaximal:
		if set, ok := m.maximalSet(pool); ok {
			estimand.EstimandType = causal.EstimandTypeBackdoor
			estimand.BackdoorSet = set
		}
	case causal.IdentifyMinimal:
		if set, ok := m.minimalSet(pool); ok {
			estimand.EstimandType = causal.EstimandTypeBackdoor
			estimand.BackdoorSet = set
		}
	case causal.IdentifyExhaustive:
		all := m.allValidSets(pool)
		if len(all) > 0 {
			estimand.EstimandType = causal.EstimandTypeBackdoor
			estimand.BackdoorSet = all[0]
			estimand.AllBackdoorSets = all
		}
	case causal.IdentifyDefault:
		// Maximal first for speed, then minimal; keep whichever is
		// smaller. Extra computation traded for parsimony.
		maxSet, maxOK := m.maximalSet(pool)
		minSet, minOK := m.minimalSet(pool)
		switch {
		case minOK && (!maxOK || len(minSet) <= len(maxSet)):
			estimand.EstimandType = causal.EstimandTypeBackdoor
			estimand.BackdoorSet = minSet
		case maxOK:
			estimand.EstimandType = causal.EstimandTypeBackdoor
			estimand.BackdoorSet = maxSet
		}
	default:
		return nil, core.NewMethodError("identification", string(method))
	}

	return estimand, nil
}

// backdoorCandidates returns every variable eligible for adjustment: all
// nodes except the treatment, the outcome, and descendants of the
// treatment. Sorted by column order for determinism.
func (m *Model) backdoorCandidates() []string {
	descendants := m.g.Descendants(m.treatment)
	var pool []string
	for _, node := range m.g.Nodes() {
		if node == m.treatment || node == m.outcome || descendants[node] {
			continue
		}
		pool = append(pool, node)
	}
	return pool
}

// isValidBackdoorSet checks the backdoor criterion: conditioning on the
// set d-separates treatment from outcome in the graph with the treatment's
// outgoing edges removed.
func (m *Model) isValidBackdoorSet(set []string) bool {
	doGraph := m.g.Clone()
	for _, child := range m.g.Children(m.treatment) {
		doGraph.RemoveEdge(m.treatment, child)
	}
	z := make(map[string]bool, len(set))
	for _, v := range set {
		z[v] = true
	}
	return doGraph.DSeparated(m.treatment, m.outcome, z)
}

// maximalSet returns the full candidate pool when it satisfies the
// backdoor criterion. Fastest policy; the set may contain superfluous
// variables.
func (m *Model) maximalSet(pool []string) ([]string, bool) {
	if m.isValidBackdoorSet(pool) {
		return append([]string(nil), pool...), true
	}
	return nil, false
}

// minimalSet shrinks a valid set by greedy backward elimination until no
// single variable can be dropped. Bounded by an iteration budget; when the
// budget runs out no set is returned.
func (m *Model) minimalSet(pool []string) ([]string, bool) {
	set, ok := m.maximalSet(pool)
	if !ok {
		return nil, false
	}
	budget := minimalIterationBudget
	for {
		dropped := false
		for i := 0; i < len(set); i++ {
			if budget <= 0 {
				return nil, false
			}
			budget--
			trial := append(append([]string(nil), set[:i]...), set[i+1:]...)
			if m.isValidBackdoorSet(trial) {
				set = trial
				dropped = true
				break
			}
		}
		if !dropped {
			return set, true
		}
	}
}

// allValidSets enumerates every subset of the pool satisfying the backdoor
// criterion, ordered by size then lexicographically. Cost grows
// exponentially with graph size.
func (m *Model) allValidSets(pool []string) [][]string {
	var all [][]string
	n := len(pool)
	for mask := 0; mask < (1 << n); mask++ {
		var subset []string
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				subset = append(subset, pool[i])
			}
		}
		if m.isValidBackdoorSet(subset) {
			all = append(all, subset)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if len(all[i]) != len(all[j]) {
			return len(all[i]) < len(all[j])
		}
		return lessStrings(all[i], all[j])
	})
	return all
}

func lessStrings(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
