package ports

import (
	"gocausal/domain/causal"
	"gocausal/domain/dataset"
	"gocausal/domain/graph"
)

// EstimateParams carries the estimation request. Nil reference values mean
// the method's internal defaults apply (continuous treatments are
// discretized internally by the method; documented behavior).
type EstimateParams struct {
	Method              causal.EstimationMethod
	ControlValue        *float64
	TreatmentValue      *float64
	ConfidenceIntervals bool
	TestSignificance    bool
}

// RefuteParams carries a single refutation request. Method must name one
// concrete refuter; the "run all" selector is resolved by the pipeline, not
// the backend.
type RefuteParams struct {
	Method         causal.RefuterMethod
	PlaceboType    string
	SubsetFraction float64
	NumSimulations int
	Seed           int64
}

// CausalModel binds a dataset, a graph and a treatment/outcome pair, and
// exposes the identification, estimation and refutation operations over
// that binding. Immutable once built; a changed graph requires a rebuild.
type CausalModel interface {
	Data() *dataset.Dataset
	Graph() *graph.CausalGraph
	Treatment() string
	Outcome() string

	// IdentifyEffect derives an estimand under the given policy. A model
	// with no achievable estimand returns an invalid Estimand, not an
	// error; callers check Estimand.IsValid.
	IdentifyEffect(method causal.IdentifyMethod) (*causal.Estimand, error)

	// EstimateEffect computes the effect for an identified estimand.
	EstimateEffect(estimand *causal.Estimand, params EstimateParams) (*causal.Estimate, error)

	// RefuteEstimate runs one robustness check against an estimate.
	RefuteEstimate(estimand *causal.Estimand, estimate *causal.Estimate, params RefuteParams) (*causal.RefutationOfEstimate, error)
}

// ModelBackend constructs causal models.
type ModelBackend interface {
	NewModel(ds *dataset.Dataset, treatment, outcome string, g *graph.CausalGraph) (CausalModel, error)
}

// DatasetReader loads a dataset from a file path, coercing categorical
// values to numeric codes.
type DatasetReader interface {
	Read(path string) (*dataset.Dataset, error)
}
