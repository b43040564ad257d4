package causalmodel

import (
	"fmt"
	"math"
	"math/rand"

	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/ports"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

const defaultNumSimulations = 100

// RefuteEstimate runs a single robustness check against the estimate. The
// "run all" selector is resolved by the pipeline into three separate calls
// here, so this dispatch only knows concrete refuters.
func (m *Model) RefuteEstimate(estimand *causal.Estimand, estimate *causal.Estimate, params ports.RefuteParams) (*causal.RefutationOfEstimate, error) {
	if estimand == nil {
		return nil, core.ErrNoEstimand
	}
	if estimate == nil {
		return nil, core.ErrNoEstimate
	}
	if params.NumSimulations <= 0 {
		params.NumSimulations = defaultNumSimulations
	}
	rng := rand.New(rand.NewSource(params.Seed))

	switch params.Method {
	case causal.RefuterPlaceboTreatment:
		return m.refutePlacebo(estimand, estimate, params, rng)
	case causal.RefuterRandomCommonCause:
		return m.refuteRandomCommonCause(estimand, estimate, params, rng)
	case causal.RefuterDataSubset:
		return m.refuteDataSubset(estimand, estimate, params, rng)
	default:
		return nil, core.NewMethodError("refutation", string(params.Method))
	}
}

// refutePlacebo replaces the treatment with a random placebo and expects
// the re-estimated effect to collapse toward zero. A p-value significantly
// separating the placebo effects from zero marks the estimate fragile.
func (m *Model) refutePlacebo(estimand *causal.Estimand, estimate *causal.Estimate, params ports.RefuteParams, rng *rand.Rand) (*causal.RefutationOfEstimate, error) {
	original, err := m.ds.Column(m.treatment)
	if err != nil {
		return nil, err
	}

	effects := make([]float64, params.NumSimulations)
	for i := range effects {
		var placebo []float64
		if params.PlaceboType == "permute" || params.PlaceboType == "" {
			placebo = permuted(original, rng)
		} else {
			placebo = make([]float64, len(original))
			for j := range placebo {
				placebo[j] = rng.NormFloat64()
			}
		}
		ds, err := m.ds.WithReplacedColumn(m.treatment, placebo)
		if err != nil {
			return nil, err
		}
		effect, err := m.adjustedEffect(ds, m.treatment, estimand.BackdoorSet, estimate)
		if err != nil {
			return nil, fmt.Errorf("placebo simulation %d: %w", i, err)
		}
		effects[i] = effect
	}

	return summarizeRefutation(causal.RefuterPlaceboTreatment, estimate.Value, effects, 0)
}

// refuteRandomCommonCause adds an independent synthetic confounder to the
// adjustment set and expects the effect to remain stable.
func (m *Model) refuteRandomCommonCause(estimand *causal.Estimand, estimate *causal.Estimate, params ports.RefuteParams, rng *rand.Rand) (*causal.RefutationOfEstimate, error) {
	effects := make([]float64, params.NumSimulations)
	for i := range effects {
		synthetic := make([]float64, m.ds.Rows())
		for j := range synthetic {
			synthetic[j] = rng.NormFloat64()
		}
		ds, err := m.ds.WithColumn("w_random", synthetic)
		if err != nil {
			return nil, err
		}
		adjustment := append(append([]string(nil), estimand.BackdoorSet...), "w_random")
		effect, err := m.adjustedEffect(ds, m.treatment, adjustment, estimate)
		if err != nil {
			return nil, fmt.Errorf("random common cause simulation %d: %w", i, err)
		}
		effects[i] = effect
	}

	return summarizeRefutation(causal.RefuterRandomCommonCause, estimate.Value, effects, estimate.Value)
}

// refuteDataSubset re-estimates on random subsets of the data and expects
// a similar effect.
func (m *Model) refuteDataSubset(estimand *causal.Estimand, estimate *causal.Estimate, params ports.RefuteParams, rng *rand.Rand) (*causal.RefutationOfEstimate, error) {
	fraction := params.SubsetFraction
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("subset_fraction must be in (0,1], got %v", fraction)
	}
	size := int(math.Floor(fraction * float64(m.ds.Rows())))
	if size < 3 {
		return nil, fmt.Errorf("%w: subset of %d rows", core.ErrInsufficientData, size)
	}

	effects := make([]float64, params.NumSimulations)
	for i := range effects {
		indices := rng.Perm(m.ds.Rows())[:size]
		ds, err := m.ds.SubsetRows(indices)
		if err != nil {
			return nil, err
		}
		effect, err := m.adjustedEffect(ds, m.treatment, estimand.BackdoorSet, estimate)
		if err != nil {
			return nil, fmt.Errorf("data subset simulation %d: %w", i, err)
		}
		effects[i] = effect
	}

	return summarizeRefutation(causal.RefuterDataSubset, estimate.Value, effects, estimate.Value)
}

// adjustedEffect re-runs the adjusted regression on a perturbed dataset
// and scales the treatment coefficient by the original contrast.
func (m *Model) adjustedEffect(ds *dataset.Dataset, treatmentColumn string, adjustment []string, estimate *causal.Estimate) (float64, error) {
	fit, idx, err := m.fitAdjusted(ds, treatmentColumn, adjustment)
	if err != nil {
		return 0, err
	}
	return fit.Coefficients[idx] * (estimate.TreatmentValue - estimate.ControlValue), nil
}

// summarizeRefutation reduces the simulated effect distribution to a
// result record. expected is the value the refuted effects should center
// on when the original estimate is robust (zero for placebo, the original
// estimate otherwise); the p-value tests that expectation against the
// simulated distribution, and significance flags fragility.
func summarizeRefutation(method causal.RefuterMethod, originalEffect float64, effects []float64, expected float64) (*causal.RefutationOfEstimate, error) {
	mean, err := mstats.Mean(effects)
	if err != nil {
		return nil, err
	}
	stdDev, err := mstats.StandardDeviationSample(effects)
	if err != nil {
		return nil, err
	}

	pValue := 1.0
	if stdDev > 0 {
		z := math.Abs(expected-mean) / stdDev
		normal := distuv.Normal{Mu: 0, Sigma: 1}
		pValue = 2 * (1 - normal.CDF(z))
	} else if expected != mean {
		pValue = 0.0
	}

	return &causal.RefutationOfEstimate{
		Method:         method,
		OriginalEffect: originalEffect,
		NewEffect:      mean,
		PValue:         pValue,
		Significant:    pValue < significanceAlpha,
		NumSimulations: len(effects),
	}, nil
}

func permuted(vals []float64, rng *rand.Rand) []float64 {
	out := append([]float64(nil), vals...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
