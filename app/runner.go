package app

import (
	"gocausal/adapters/tabular"
	"gocausal/domain/causal"
	"gocausal/internal"
	"gocausal/internal/config"
	apperrors "gocausal/internal/errors"
)

// Run drives a full analysis from configuration: ingest, discover, refine,
// model, identify, estimate, refute. It returns the driven pipeline so the
// caller can read the snapshot or serve it.
func Run(cfg *config.Config, log *internal.Logger) (*CausalPipeline, error) {
	if cfg.Data.Path == "" {
		return nil, apperrors.Configuration("DATA_FILE is required")
	}

	reader := tabular.NewDataReader()
	if cfg.Data.Sheet != "" {
		reader = reader.WithSheet(cfg.Data.Sheet)
	}
	data, err := reader.Read(cfg.Data.Path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load dataset")
	}
	log.Info("loaded dataset with %d columns, %d rows", len(data.Columns()), data.Rows())

	pipeline, err := NewCausalPipeline(data, Config{
		Treatment:      cfg.Pipeline.Treatment,
		Outcome:        cfg.Pipeline.Outcome,
		TreatmentValue: cfg.Pipeline.TreatmentValue,
		ControlValue:   cfg.Pipeline.ControlValue,
		Seed:           cfg.Pipeline.Seed,
	}, WithLogger(log))
	if err != nil {
		return nil, err
	}

	if _, err := pipeline.Discover(causal.DiscoveryAlgorithm(cfg.Pipeline.DiscoveryAlgorithm), nil); err != nil {
		return nil, err
	}
	if _, err := pipeline.Refine(RefineOptions{
		NPermutations:    cfg.Pipeline.NPermutations,
		ApplySuggestions: cfg.Pipeline.ApplySuggestions,
	}); err != nil {
		return nil, err
	}
	if err := pipeline.BuildModel(); err != nil {
		return nil, err
	}
	if _, err := pipeline.Identify(causal.IdentifyMethod(cfg.Pipeline.IdentifyMethod)); err != nil {
		return nil, err
	}
	if _, err := pipeline.Estimate(causal.EstimationMethod(cfg.Pipeline.EstimationMethod), nil, nil); err != nil {
		return nil, err
	}
	if _, err := pipeline.Refute(RefuteOptions{
		Method:         causal.RefuterMethod(cfg.Pipeline.RefuterMethod),
		SubsetFraction: cfg.Pipeline.SubsetFraction,
	}); err != nil {
		return nil, err
	}
	return pipeline, nil
}
