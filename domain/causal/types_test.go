package causal

import (
	"strings"
	"testing"
)

// TestEstimandValidity tests the achievable-type flag
func TestEstimandValidity(t *testing.T) {
	e := &Estimand{Treatment: "x", Outcome: "y"}
	if e.IsValid() {
		t.Error("Estimand without a type is not valid")
	}
	e.EstimandType = EstimandTypeBackdoor
	if !e.IsValid() {
		t.Error("Backdoor estimand is valid")
	}
}

// TestEstimandExpression tests the rendered adjustment formula
func TestEstimandExpression(t *testing.T) {
	e := &Estimand{
		Treatment:    "x",
		Outcome:      "y",
		EstimandType: EstimandTypeBackdoor,
		BackdoorSet:  []string{"z", "w"},
	}
	expr := e.Expression()
	for _, want := range []string{"x", "y", "z", "w"} {
		if !strings.Contains(expr, want) {
			t.Errorf("Expected expression to mention %q, got %q", want, expr)
		}
	}
}

// TestRefutationSetSingle tests the single-result accessor
func TestRefutationSetSingle(t *testing.T) {
	single := &RefutationSet{Results: []RefutationOfEstimate{{Method: RefuterDataSubset}}}
	r, ok := single.Single()
	if !ok || r.Method != RefuterDataSubset {
		t.Errorf("Expected single result, got %v/%v", r, ok)
	}

	all := &RefutationSet{
		Aggregate: true,
		Results: []RefutationOfEstimate{
			{Method: RefuterPlaceboTreatment},
			{Method: RefuterRandomCommonCause},
			{Method: RefuterDataSubset},
		},
	}
	if _, ok := all.Single(); ok {
		t.Error("Aggregate set has no single result")
	}
}

// TestSnapshotEmptyState tests the read model before any stage ran
func TestSnapshotEmptyState(t *testing.T) {
	state := NewPipelineState()
	if state.RunID == "" {
		t.Error("Fresh state should carry a run id")
	}
	snap := state.Snapshot()
	if snap.Graph != nil || snap.Estimand != nil || snap.Estimate != nil {
		t.Error("Snapshot fields for unrun stages must be nil")
	}
	if snap.GraphRefutation != nil || snap.EstimateRefutation != nil {
		t.Error("Snapshot refutation fields for unrun stages must be nil")
	}
}

// TestRefutationSummary tests the falsification one-liner
func TestRefutationSummary(t *testing.T) {
	r := &RefutationOfGraph{NumViolations: 2, NumPermutations: 50, PValue: 0.3, Falsified: true}
	s := r.Summary()
	if !strings.Contains(s, "falsified") {
		t.Errorf("Expected verdict in summary, got %q", s)
	}
}
