package causal

import (
	"fmt"
	"sort"
	"strings"

	"gocausal/domain/core"
	"gocausal/domain/graph"
)

// ConstraintResult is the outcome of one tested independence constraint
// during graph falsification.
type ConstraintResult struct {
	Node         string   `json:"node"`
	Independent  string   `json:"independent_of"`
	Conditioning []string `json:"conditioning_set"`
	PValue       float64  `json:"p_value"`
	Violated     bool     `json:"violated"`
}

// RefutationOfGraph is the immutable result of one falsification call:
// per-constraint pass/fail signals, the permutation-test p-value, and the
// suggested edge corrections. Created once per refinement call.
type RefutationOfGraph struct {
	Constraints     []ConstraintResult `json:"constraints"`
	NumViolations   int                `json:"num_violations"`
	NumPermutations int                `json:"num_permutations"`
	PValue          float64            `json:"p_value"`
	Falsified       bool               `json:"falsified"`
	Suggestions     []graph.Edge       `json:"suggestions"`
}

// Summary renders a one-line report of the falsification outcome.
func (r *RefutationOfGraph) Summary() string {
	verdict := "not falsified"
	if r.Falsified {
		verdict = "falsified"
	}
	return fmt.Sprintf("graph %s: %d/%d local Markov violations, permutation p=%.4f, %d suggested removals",
		verdict, r.NumViolations, len(r.Constraints), r.PValue, len(r.Suggestions))
}

// EstimandTypeBackdoor is the one estimand type the identifier can derive.
const EstimandTypeBackdoor = "backdoor"

// Estimand is the formal description of how the treatment effect is to be
// computed: the identification strategy plus its adjustment set. Exactly
// one Estimand is active per run; re-identification replaces it.
type Estimand struct {
	Treatment    string         `json:"treatment"`
	Outcome      string         `json:"outcome"`
	EstimandType string         `json:"estimand_type"` // empty when identification found no strategy
	BackdoorSet  []string       `json:"backdoor_set"`
	Method       IdentifyMethod `json:"method"`
	// AllBackdoorSets is populated only by the exhaustive policy.
	AllBackdoorSets [][]string `json:"all_backdoor_sets,omitempty"`
}

// IsValid reports whether identification produced an achievable estimand.
// Callers must check this before estimating; an invalid Estimand is a
// recoverable condition, not an error.
func (e *Estimand) IsValid() bool {
	return e != nil && e.EstimandType != ""
}

// Expression renders the estimand as an adjustment expression.
func (e *Estimand) Expression() string {
	if !e.IsValid() {
		return fmt.Sprintf("no valid estimand for %s -> %s", e.Treatment, e.Outcome)
	}
	set := append([]string(nil), e.BackdoorSet...)
	sort.Strings(set)
	if len(set) == 0 {
		return fmt.Sprintf("E[%s | do(%s)]", e.Outcome, e.Treatment)
	}
	return fmt.Sprintf("E[%s | do(%s), {%s}]", e.Outcome, e.Treatment, strings.Join(set, ","))
}

// ConfidenceInterval is an ordered (lower, upper) pair.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Estimate is a numeric effect value with its confidence interval and
// significance test, derived from exactly one Estimand by exactly one
// estimation method.
type Estimate struct {
	Value          float64            `json:"value"`
	StdErr         float64            `json:"std_err"`
	Interval       ConfidenceInterval `json:"confidence_interval"`
	PValue         float64            `json:"p_value"`
	Significant    bool               `json:"significant"`
	Method         EstimationMethod   `json:"method"`
	ControlValue   float64            `json:"control_value"`
	TreatmentValue float64            `json:"treatment_value"`
}

// RefutationOfEstimate is one robustness-test outcome: the effect under
// perturbation, a p-value, and a significance flag. Significance here is
// evidence the original estimate is fragile.
type RefutationOfEstimate struct {
	Method         RefuterMethod `json:"method"`
	OriginalEffect float64       `json:"original_effect"`
	NewEffect      float64       `json:"new_effect"`
	PValue         float64       `json:"p_value"`
	Significant    bool          `json:"significant"`
	NumSimulations int           `json:"num_simulations"`
}

// RefutationSet holds either a single named refutation result or the
// ordered aggregate of all three (placebo, random common cause, subset).
type RefutationSet struct {
	Results   []RefutationOfEstimate `json:"results"`
	Aggregate bool                   `json:"aggregate"`
}

// Single returns the sole result of a non-aggregate set.
func (s *RefutationSet) Single() (*RefutationOfEstimate, bool) {
	if s == nil || s.Aggregate || len(s.Results) != 1 {
		return nil, false
	}
	return &s.Results[0], true
}

// PipelineState is the aggregate owner of one analysis run's artifacts.
// Fields are populated monotonically: each stage sets or replaces only its
// own field and never retroactively invalidates downstream fields.
type PipelineState struct {
	RunID              core.RunID
	Graph              *graph.CausalGraph
	GraphRefutation    *RefutationOfGraph
	Estimand           *Estimand
	Estimate           *Estimate
	EstimateRefutation *RefutationSet
}

// NewPipelineState creates the state for a fresh analysis run.
func NewPipelineState() *PipelineState {
	return &PipelineState{RunID: core.RunID(core.NewID())}
}

// Snapshot is the read model over the accumulated artifacts. Fields for
// stages that have not run are nil.
type Snapshot struct {
	Graph              *graph.CausalGraph `json:"-"`
	GraphEdges         []graph.Edge       `json:"graph_edges"`
	GraphNodes         []string           `json:"graph_nodes"`
	GraphRefutation    *RefutationOfGraph `json:"graph_refutation"`
	Estimand           *Estimand          `json:"estimand"`
	Estimate           *Estimate          `json:"estimate"`
	EstimateRefutation *RefutationSet     `json:"estimate_refutation"`
}

// Snapshot returns the current read model. Pure read, no validation.
func (s *PipelineState) Snapshot() Snapshot {
	snap := Snapshot{
		Graph:              s.Graph,
		GraphRefutation:    s.GraphRefutation,
		Estimand:           s.Estimand,
		Estimate:           s.Estimate,
		EstimateRefutation: s.EstimateRefutation,
	}
	if s.Graph != nil {
		snap.GraphEdges = s.Graph.Edges()
		snap.GraphNodes = s.Graph.Nodes()
	}
	return snap
}
