package app

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/graph"
	apperrors "gocausal/internal/errors"
	"gocausal/internal/testkit"
)

func pipelineFixture(t *testing.T) (*CausalPipeline, *testkit.SCM) {
	t.Helper()
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	require.NoError(t, err)

	p, err := NewCausalPipeline(ds, Config{Treatment: "X", Outcome: "Y", Seed: 3})
	require.NoError(t, err)
	return p, scm
}

// TestNewCausalPipelineValidation tests construction guards
func TestNewCausalPipelineValidation(t *testing.T) {
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	require.NoError(t, err)

	_, err = NewCausalPipeline(nil, Config{Treatment: "X", Outcome: "Y"})
	require.True(t, apperrors.IsConfiguration(err))

	_, err = NewCausalPipeline(ds, Config{Treatment: "", Outcome: "Y"})
	require.True(t, apperrors.IsConfiguration(err))

	_, err = NewCausalPipeline(ds, Config{Treatment: "missing", Outcome: "Y"})
	require.True(t, apperrors.IsConfiguration(err))
	require.ErrorIs(t, err, core.ErrColumnNotFound)
}

// TestPipelineFullRun drives every stage over a known structure and checks
// the accumulated artifacts
func TestPipelineFullRun(t *testing.T) {
	p, scm := pipelineFixture(t)

	require.NoError(t, p.InputGraph(scm.Graph()))

	refutation, err := p.Refine(RefineOptions{NPermutations: 30})
	require.NoError(t, err)
	require.Equal(t, 30, refutation.NumPermutations)

	require.NoError(t, p.BuildModel())

	estimand, err := p.Identify(causal.IdentifyDefault)
	require.NoError(t, err)
	require.True(t, estimand.IsValid())
	require.Equal(t, []string{"Z"}, estimand.BackdoorSet)

	estimate, err := p.Estimate(causal.EstimatorLinearRegression, nil, nil)
	require.NoError(t, err)
	truth := scm.TotalEffect("X", "Y")
	require.InDelta(t, truth, estimate.Value, 0.15)
	require.LessOrEqual(t, estimate.Interval.Lower, estimate.Interval.Upper)

	set, err := p.Refute(RefuteOptions{Method: causal.RefuterAll, NumSimulations: 30})
	require.NoError(t, err)
	require.True(t, set.Aggregate)
	require.Len(t, set.Results, 3)
	require.Equal(t, causal.RefuterPlaceboTreatment, set.Results[0].Method)
	require.Equal(t, causal.RefuterRandomCommonCause, set.Results[1].Method)
	require.Equal(t, causal.RefuterDataSubset, set.Results[2].Method)

	snap := p.Snapshot()
	require.NotNil(t, snap.Graph)
	require.NotNil(t, snap.GraphRefutation)
	require.NotNil(t, snap.Estimand)
	require.NotNil(t, snap.Estimate)
	require.NotNil(t, snap.EstimateRefutation)
}

// TestPipelinePreconditions tests stage ordering enforcement
func TestPipelinePreconditions(t *testing.T) {
	p, scm := pipelineFixture(t)

	_, err := p.Refine(RefineOptions{NPermutations: 10})
	require.True(t, apperrors.IsPrecondition(err))
	require.ErrorIs(t, err, core.ErrNoGraph)

	err = p.BuildModel()
	require.True(t, apperrors.IsPrecondition(err))

	_, err = p.Identify(causal.IdentifyDefault)
	require.True(t, apperrors.IsPrecondition(err))
	require.ErrorIs(t, err, core.ErrNoModel)

	_, err = p.Estimate(causal.EstimatorLinearRegression, nil, nil)
	require.True(t, apperrors.IsPrecondition(err))

	_, err = p.Refute(RefuteOptions{Method: causal.RefuterAll})
	require.True(t, apperrors.IsPrecondition(err))

	// With a model but no estimand, estimation is still premature.
	require.NoError(t, p.InputGraph(scm.Graph()))
	require.NoError(t, p.BuildModel())
	_, err = p.Estimate(causal.EstimatorLinearRegression, nil, nil)
	require.True(t, apperrors.IsPrecondition(err))
	require.ErrorIs(t, err, core.ErrNoEstimand)

	_, err = p.Refute(RefuteOptions{Method: causal.RefuterAll})
	require.True(t, apperrors.IsPrecondition(err))
}

// TestDiscoverStoresGraph tests discovery success and state update
func TestDiscoverStoresGraph(t *testing.T) {
	p, _ := pipelineFixture(t)

	g, err := p.Discover(causal.AlgorithmPC, nil)
	require.NoError(t, err)
	require.NotNil(t, g)
	require.False(t, g.HasCycle())
	require.NotNil(t, p.Snapshot().Graph)
}

// TestDiscoverUnknownAlgorithm tests algorithm validation
func TestDiscoverUnknownAlgorithm(t *testing.T) {
	p, _ := pipelineFixture(t)

	_, err := p.Discover("fci", nil)
	require.True(t, apperrors.IsConfiguration(err))
	require.ErrorIs(t, err, core.ErrUnknownAlgorithm)
	require.Nil(t, p.Snapshot().Graph)
}

// TestDiscoverConfigOverride tests that the pipeline-level algorithm wins
// over the call argument
func TestDiscoverConfigOverride(t *testing.T) {
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	require.NoError(t, err)

	p, err := NewCausalPipeline(ds, Config{
		Treatment:          "X",
		Outcome:            "Y",
		DiscoveryAlgorithm: causal.AlgorithmPC,
	})
	require.NoError(t, err)

	// The bogus argument is never consulted when an algorithm is
	// configured; success proves the override took effect.
	_, err = p.Discover("bogus", nil)
	require.NoError(t, err)
}

// TestDiscoverPriorKnowledge tests constraint application and validation
func TestDiscoverPriorKnowledge(t *testing.T) {
	p, _ := pipelineFixture(t)

	pk := &causal.PriorKnowledge{
		Required:  []graph.Edge{{From: "Z", To: "X"}},
		Forbidden: []graph.Edge{{From: "Y", To: "X"}},
	}
	g, err := p.Discover(causal.AlgorithmPC, pk)
	require.NoError(t, err)
	require.True(t, g.HasEdge("Z", "X"))
	require.False(t, g.HasEdge("Y", "X"))

	bad := &causal.PriorKnowledge{Required: []graph.Edge{{From: "Z", To: "nope"}}}
	_, err = p.Discover(causal.AlgorithmPC, bad)
	require.True(t, apperrors.IsConfiguration(err))
	require.ErrorIs(t, err, core.ErrColumnNotFound)
}

// TestRefineWithoutSuggestions tests that declining suggestions leaves the
// graph structurally identical
func TestRefineWithoutSuggestions(t *testing.T) {
	p, scm := pipelineFixture(t)
	require.NoError(t, p.InputGraph(scm.Graph()))
	before := p.Snapshot().Graph.Clone()

	_, err := p.Refine(RefineOptions{NPermutations: 20, ApplySuggestions: false})
	require.NoError(t, err)
	require.True(t, before.Equal(p.Snapshot().Graph))
}

// TestSnapshotIdempotent tests that reading the snapshot twice yields the
// same view and mutates nothing
func TestSnapshotIdempotent(t *testing.T) {
	p, scm := pipelineFixture(t)
	require.NoError(t, p.InputGraph(scm.Graph()))
	require.NoError(t, p.BuildModel())
	_, err := p.Identify(causal.IdentifyDefault)
	require.NoError(t, err)

	s1 := p.Snapshot()
	s2 := p.Snapshot()
	require.Equal(t, s1.GraphEdges, s2.GraphEdges)
	require.Equal(t, s1.GraphNodes, s2.GraphNodes)
	require.Equal(t, s1.Estimand, s2.Estimand)
	require.Nil(t, s1.Estimate)
}

// TestEstimateUsesConfigReferenceValues tests the config fallback for the
// treatment contrast
func TestEstimateUsesConfigReferenceValues(t *testing.T) {
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	require.NoError(t, err)

	control, treatment := 0.0, 2.0
	p, err := NewCausalPipeline(ds, Config{
		Treatment:      "X",
		Outcome:        "Y",
		ControlValue:   &control,
		TreatmentValue: &treatment,
	})
	require.NoError(t, err)
	require.NoError(t, p.InputGraph(scm.Graph()))
	require.NoError(t, p.BuildModel())
	_, err = p.Identify(causal.IdentifyDefault)
	require.NoError(t, err)

	estimate, err := p.Estimate(causal.EstimatorLinearRegression, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2.0, estimate.TreatmentValue)
	// A 2-unit contrast doubles the unit effect.
	require.InDelta(t, 2*scm.TotalEffect("X", "Y"), estimate.Value, 0.3)
	require.False(t, math.IsNaN(estimate.StdErr))
}

// TestRunIDAssigned tests per-run identity
func TestRunIDAssigned(t *testing.T) {
	p1, _ := pipelineFixture(t)
	p2, _ := pipelineFixture(t)
	require.NotEmpty(t, p1.RunID())
	require.NotEqual(t, p1.RunID(), p2.RunID())
}

// TestPipelineDataImmutable tests that a full run leaves the input data
// untouched
func TestPipelineDataImmutable(t *testing.T) {
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	require.NoError(t, err)
	original, err := ds.Column("X")
	require.NoError(t, err)

	p, err := NewCausalPipeline(ds, Config{Treatment: "X", Outcome: "Y"})
	require.NoError(t, err)
	require.NoError(t, p.InputGraph(scm.Graph()))
	require.NoError(t, p.BuildModel())
	_, err = p.Identify(causal.IdentifyDefault)
	require.NoError(t, err)
	_, err = p.Estimate(causal.EstimatorLinearRegression, nil, nil)
	require.NoError(t, err)
	_, err = p.Refute(RefuteOptions{Method: causal.RefuterPlaceboTreatment, NumSimulations: 10})
	require.NoError(t, err)

	after, err := ds.Column("X")
	require.NoError(t, err)
	require.Equal(t, original, after)
}
