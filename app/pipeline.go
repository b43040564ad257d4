package app

import (
	"gocausal/adapters/causalmodel"
	"gocausal/adapters/discovery"
	"gocausal/adapters/falsify"
	stat "gocausal/adapters/stats"
	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/domain/graph"
	"gocausal/internal"
	apperrors "gocausal/internal/errors"
	"gocausal/ports"
)

// CausalPipeline orchestrates one end-to-end causal analysis run:
// discovery, optional knowledge injection and falsification, model
// building, identification, estimation and refutation. Strictly
// sequential: each call runs to completion before the next, and each
// stage's precondition is an explicit check, not undefined behavior.
type CausalPipeline struct {
	data    *dataset.Dataset
	config  Config
	backend ports.ModelBackend
	log     *internal.Logger

	state *causal.PipelineState
	model ports.CausalModel
}

// Config holds the run-level settings supplied at construction. Optional
// values override per-call arguments (discovery algorithm) or fill in
// omitted ones (treatment/control reference values).
type Config struct {
	Treatment          string
	Outcome            string
	DiscoveryAlgorithm causal.DiscoveryAlgorithm // optional; overrides the Discover argument when set
	TreatmentValue     *float64
	ControlValue       *float64
	Seed               int64
}

// Option customizes pipeline construction.
type Option func(*CausalPipeline)

// WithLogger injects the progress/warning sink. The default is a no-op
// logger; there is no process-global logging side channel.
func WithLogger(l *internal.Logger) Option {
	return func(p *CausalPipeline) { p.log = l }
}

// WithModelBackend swaps the causal-model backend. Used by tests.
func WithModelBackend(b ports.ModelBackend) Option {
	return func(p *CausalPipeline) { p.backend = b }
}

// NewCausalPipeline creates a pipeline over the dataset. The dataset is
// read-only to the pipeline and exclusively owned state is created per
// run: no two pipelines share a PipelineState.
func NewCausalPipeline(data *dataset.Dataset, cfg Config, opts ...Option) (*CausalPipeline, error) {
	if data == nil {
		return nil, apperrors.Configuration("dataset is required")
	}
	if cfg.Treatment == "" || cfg.Outcome == "" {
		return nil, apperrors.Configuration("treatment and outcome variables are required")
	}
	if !data.HasColumn(cfg.Treatment) {
		return nil, apperrors.WithCode(apperrors.CodeConfiguration, core.NewColumnError(cfg.Treatment))
	}
	if !data.HasColumn(cfg.Outcome) {
		return nil, apperrors.WithCode(apperrors.CodeConfiguration, core.NewColumnError(cfg.Outcome))
	}
	p := &CausalPipeline{
		data:    data,
		config:  cfg,
		backend: causalmodel.NewBackend(),
		log:     internal.NopLogger(),
		state:   causal.NewPipelineState(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// RunID identifies this analysis run.
func (p *CausalPipeline) RunID() core.RunID {
	return p.state.RunID
}

// Discover produces the causal graph using the selected algorithm and
// replaces the pipeline's active graph. A configured pipeline-level
// algorithm wins over the argument. Prior knowledge, when supplied, is
// applied required-first then forbidden, so forbidden wins for an edge
// named in both lists; inserting a required edge is not cycle-checked
// here.
func (p *CausalPipeline) Discover(algorithm causal.DiscoveryAlgorithm, pk *causal.PriorKnowledge) (*graph.CausalGraph, error) {
	if p.config.DiscoveryAlgorithm != "" {
		algorithm = p.config.DiscoveryAlgorithm
	}
	algorithm, err := causal.ParseDiscoveryAlgorithm(string(algorithm))
	if err != nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodeConfiguration, err), "discovery")
	}

	p.log.Info("finding causal graph using %s algorithm", algorithm)

	backend, err := discovery.BackendFor(algorithm)
	if err != nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodeConfiguration, err), "discovery")
	}

	g, err := backend.Discover(p.data.Matrix(), p.data.Columns())
	if err != nil {
		return nil, p.fail(apperrors.Stage(apperrors.CodeDiscovery, "discovery", err), "discovery")
	}

	if !pk.IsEmpty() {
		if err := p.validatePriorKnowledge(pk); err != nil {
			return nil, p.fail(err, "discovery")
		}
		if err := pk.Apply(g); err != nil {
			return nil, p.fail(apperrors.Stage(apperrors.CodeDiscovery, "discovery", err), "discovery")
		}
	}

	// Replace the active graph only after everything succeeded: a failed
	// discovery retains no partial graph.
	p.state.Graph = g
	return g, nil
}

// validatePriorKnowledge checks the prior-knowledge record's shape: every
// named endpoint must be a dataset column.
func (p *CausalPipeline) validatePriorKnowledge(pk *causal.PriorKnowledge) error {
	for _, e := range append(append([]graph.Edge(nil), pk.Required...), pk.Forbidden...) {
		if !p.data.HasColumn(e.From) {
			return apperrors.WithCode(apperrors.CodeConfiguration, core.NewColumnError(e.From))
		}
		if !p.data.HasColumn(e.To) {
			return apperrors.WithCode(apperrors.CodeConfiguration, core.NewColumnError(e.To))
		}
	}
	return nil
}

// InputGraph replaces the active graph with a caller-supplied one,
// bypassing discovery.
func (p *CausalPipeline) InputGraph(g *graph.CausalGraph) error {
	if g == nil {
		return apperrors.Configuration("input graph is nil")
	}
	p.log.Info("using caller-supplied causal graph with %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	p.state.Graph = g
	return nil
}

// RefineOptions parameterizes graph falsification. NPermutations has no
// default: statistical power and cost trade off directly, so the caller
// chooses deliberately.
type RefineOptions struct {
	NPermutations    int
	IndependenceTest ports.IndependenceTest // nil selects Fisher-z
	CondIndepTest    ports.IndependenceTest // nil selects Fisher-z
	ApplySuggestions bool
}

// Refine statistically falsifies the active graph and, when requested,
// rewrites it with the suggested corrections. On failure the active graph
// is left in its pre-call state; suggestions are never partially applied.
func (p *CausalPipeline) Refine(opts RefineOptions) (*causal.RefutationOfGraph, error) {
	if p.state.Graph == nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodePrecondition, core.ErrNoGraph), "refinement")
	}

	p.log.Info("refuting the discovered/given causal graph with %d permutations", opts.NPermutations)

	indep := opts.IndependenceTest
	if indep == nil {
		indep = stat.NewFisherZ()
	}
	condIndep := opts.CondIndepTest
	if condIndep == nil {
		condIndep = stat.NewFisherZ()
	}

	falsifier := falsify.New(p.config.Seed)
	result, err := falsifier.Falsify(p.state.Graph, p.data, opts.NPermutations, indep, condIndep)
	if err != nil {
		return nil, p.fail(apperrors.Stage(apperrors.CodeRefinement, "refinement", err), "refinement")
	}

	p.state.GraphRefutation = result
	if opts.ApplySuggestions {
		p.state.Graph = falsifier.ApplySuggestions(p.state.Graph, result)
		p.log.Info("applied %d suggested corrections to the causal graph", len(result.Suggestions))
	}
	p.log.Info("%s", result.Summary())
	return result, nil
}

// BuildModel binds the dataset, the active graph and the treatment/outcome
// pair. Pure construction.
func (p *CausalPipeline) BuildModel() error {
	if p.state.Graph == nil {
		return p.fail(apperrors.WithCode(apperrors.CodePrecondition, core.ErrNoGraph), "modeling")
	}

	p.log.Info("creating a causal model from the discovered/given causal graph")

	model, err := p.backend.NewModel(p.data, p.config.Treatment, p.config.Outcome, p.state.Graph)
	if err != nil {
		// Model building is pure construction: every failure mode here is
		// caller misconfiguration.
		return p.fail(apperrors.WithCode(apperrors.CodeConfiguration, err), "modeling")
	}
	p.model = model
	return nil
}

// Identify derives the estimand for the treatment's effect on the outcome
// under the given policy (empty selects the backend default). An estimand
// with no achievable type is a recoverable condition: it is stored and
// returned with a warning, never raised, so the caller can still redirect
// downstream stages manually.
func (p *CausalPipeline) Identify(method causal.IdentifyMethod) (*causal.Estimand, error) {
	if p.model == nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodePrecondition, core.ErrNoModel), "identification")
	}

	p.log.Info("identifying the effect estimand of the treatment on the outcome variable")

	estimand, err := p.model.IdentifyEffect(method)
	if err != nil {
		if core.IsInputError(err) {
			return nil, p.fail(apperrors.WithCode(apperrors.CodeConfiguration, err), "identification")
		}
		return nil, p.fail(apperrors.Stage(apperrors.CodeIdentification, "identification", err), "identification")
	}
	p.state.Estimand = estimand

	if !estimand.IsValid() {
		p.log.Warn("could not identify a valid estimand from the causal graph; check the graph structure or variable selection")
	}
	p.logIdentifyMethods()
	return estimand, nil
}

// logIdentifyMethods summarizes the selectable identification policies
// after each identification call.
func (p *CausalPipeline) logIdentifyMethods() {
	p.log.Debug("maximal-adjustment: largest valid backdoor set, fastest, may contain superfluous variables")
	p.log.Debug("minimal-adjustment: smallest valid backdoor set, slower, may yield no set within its iteration budget")
	p.log.Debug("exhaustive-search: all valid backdoor sets, cost grows with graph size")
	p.log.Debug("default: maximal first for speed, then minimal, keeping the smaller set")
}

// Estimate computes the numeric effect for the active estimand.
// Confidence intervals and the significance test are always enabled. Nil
// reference values fall back to the pipeline configuration, then to the
// method's internal defaults.
func (p *CausalPipeline) Estimate(method causal.EstimationMethod, controlValue, treatmentValue *float64) (*causal.Estimate, error) {
	if p.model == nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodePrecondition, core.ErrNoModel), "estimation")
	}
	if p.state.Estimand == nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodePrecondition, core.ErrNoEstimand), "estimation")
	}

	p.log.Info("estimating the effect of the treatment on the outcome variable")

	if controlValue == nil {
		controlValue = p.config.ControlValue
	}
	if treatmentValue == nil {
		treatmentValue = p.config.TreatmentValue
	}

	estimate, err := p.model.EstimateEffect(p.state.Estimand, ports.EstimateParams{
		Method:              method,
		ControlValue:        controlValue,
		TreatmentValue:      treatmentValue,
		ConfidenceIntervals: true,
		TestSignificance:    true,
	})
	if err != nil {
		if core.IsInputError(err) {
			return nil, p.fail(apperrors.WithCode(apperrors.CodeConfiguration, err), "estimation")
		}
		return nil, p.fail(apperrors.Stage(apperrors.CodeEstimation, "estimation", err), "estimation")
	}
	p.state.Estimate = estimate
	p.log.Debug("a continuous treatment is discretized internally by the estimation method")
	return estimate, nil
}

// RefuteOptions parameterizes estimate refutation.
type RefuteOptions struct {
	Method         causal.RefuterMethod
	PlaceboType    string  // defaults to "permute"
	SubsetFraction float64 // defaults to 0.9
	NumSimulations int
}

// Refute stress-tests the active estimate. The ALL selector executes the
// three refuters independently and returns them in the fixed order
// [placebo, random_common_cause, data_subset]. A statistically significant
// refutation is evidence the estimate is fragile: it is logged as a
// warning, and the decision is left with the analyst.
func (p *CausalPipeline) Refute(opts RefuteOptions) (*causal.RefutationSet, error) {
	if p.model == nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodePrecondition, core.ErrNoModel), "refutation")
	}
	if p.state.Estimand == nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodePrecondition, core.ErrNoEstimand), "refutation")
	}
	if p.state.Estimate == nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodePrecondition, core.ErrNoEstimate), "refutation")
	}

	method, err := causal.ParseRefuterMethod(string(opts.Method))
	if err != nil {
		return nil, p.fail(apperrors.WithCode(apperrors.CodeConfiguration, err), "refutation")
	}
	if opts.PlaceboType == "" {
		opts.PlaceboType = "permute"
	}
	if opts.SubsetFraction == 0 {
		opts.SubsetFraction = 0.9
	}

	p.log.Info("refuting the estimated effect of the treatment on the outcome variable")

	methods := []causal.RefuterMethod{method}
	aggregate := false
	if method == causal.RefuterAll {
		methods = []causal.RefuterMethod{
			causal.RefuterPlaceboTreatment,
			causal.RefuterRandomCommonCause,
			causal.RefuterDataSubset,
		}
		aggregate = true
	}

	set := &causal.RefutationSet{Aggregate: aggregate}
	for i, m := range methods {
		result, err := p.model.RefuteEstimate(p.state.Estimand, p.state.Estimate, ports.RefuteParams{
			Method:         m,
			PlaceboType:    opts.PlaceboType,
			SubsetFraction: opts.SubsetFraction,
			NumSimulations: opts.NumSimulations,
			Seed:           p.config.Seed + int64(i),
		})
		if err != nil {
			return nil, p.fail(apperrors.Stage(apperrors.CodeRefutation, "refutation", err), "refutation")
		}
		if result.Significant {
			p.log.Warn("revisit the pipeline: %s refutation p-value %.4f is significant", m, result.PValue)
		}
		set.Results = append(set.Results, *result)
	}

	p.state.EstimateRefutation = set
	return set, nil
}

// Snapshot exposes the accumulated artifacts as a single read model. Pure
// read; fields for stages not yet run are nil.
func (p *CausalPipeline) Snapshot() causal.Snapshot {
	return p.state.Snapshot()
}

// fail logs a stage failure with context and propagates it. The failing
// stage's PipelineState field is left unset or unchanged; earlier stages
// are never rolled back.
func (p *CausalPipeline) fail(err error, stage string) error {
	p.log.Error("error in %s stage: %v", stage, err)
	return err
}
