package causal

import (
	"gocausal/domain/core"
)

// DiscoveryAlgorithm identifies one of the interchangeable graph discovery
// strategies. The set is closed; adding a strategy means adding a constant
// here and a case in the discovery registry.
type DiscoveryAlgorithm string

const (
	// AlgorithmPC is constraint-based search over conditional-independence tests.
	AlgorithmPC DiscoveryAlgorithm = "pc"
	// AlgorithmGES is score-based search over a scoring criterion.
	AlgorithmGES DiscoveryAlgorithm = "ges"
	// AlgorithmICALiNGAM is independence-based decomposition assuming
	// linear non-Gaussian causal mechanisms.
	AlgorithmICALiNGAM DiscoveryAlgorithm = "icalingam"
)

// ParseDiscoveryAlgorithm validates a discovery algorithm identifier.
func ParseDiscoveryAlgorithm(s string) (DiscoveryAlgorithm, error) {
	switch DiscoveryAlgorithm(s) {
	case AlgorithmPC, AlgorithmGES, AlgorithmICALiNGAM:
		return DiscoveryAlgorithm(s), nil
	default:
		return "", core.NewAlgorithmError(s)
	}
}

// IdentifyMethod selects a backdoor-adjustment search policy.
type IdentifyMethod string

const (
	// IdentifyMaximal returns the largest valid adjustment set. Fastest,
	// may include superfluous variables.
	IdentifyMaximal IdentifyMethod = "maximal-adjustment"
	// IdentifyMinimal returns the smallest valid adjustment set. Slowest,
	// may fail to find one within its iteration budget.
	IdentifyMinimal IdentifyMethod = "minimal-adjustment"
	// IdentifyExhaustive enumerates all valid adjustment sets.
	IdentifyExhaustive IdentifyMethod = "exhaustive-search"
	// IdentifyDefault runs maximal then minimal and keeps the smaller set.
	IdentifyDefault IdentifyMethod = "default"
)

// ParseIdentifyMethod validates an identification policy identifier. The
// empty string selects the backend's own default policy.
func ParseIdentifyMethod(s string) (IdentifyMethod, error) {
	switch IdentifyMethod(s) {
	case "":
		return IdentifyDefault, nil
	case IdentifyMaximal, IdentifyMinimal, IdentifyExhaustive, IdentifyDefault:
		return IdentifyMethod(s), nil
	default:
		return "", core.NewMethodError("identification", s)
	}
}

// EstimationMethod selects an effect estimation technique.
type EstimationMethod string

// EstimatorLinearRegression is backdoor-adjusted linear regression, the
// one estimation method the pipeline ships.
const EstimatorLinearRegression EstimationMethod = "backdoor.linear_regression"

// ParseEstimationMethod validates an estimation method identifier.
func ParseEstimationMethod(s string) (EstimationMethod, error) {
	switch EstimationMethod(s) {
	case "":
		return EstimatorLinearRegression, nil
	case EstimatorLinearRegression:
		return EstimationMethod(s), nil
	default:
		return "", core.NewMethodError("estimation", s)
	}
}

// RefuterMethod selects an estimate refutation procedure.
type RefuterMethod string

const (
	// RefuterPlaceboTreatment replaces the treatment with a random placebo
	// and expects the effect to collapse toward zero.
	RefuterPlaceboTreatment RefuterMethod = "placebo_treatment_refuter"
	// RefuterRandomCommonCause adds a synthetic confounder and expects the
	// effect to remain stable.
	RefuterRandomCommonCause RefuterMethod = "random_common_cause"
	// RefuterDataSubset re-estimates on a random data subset and expects a
	// similar effect.
	RefuterDataSubset RefuterMethod = "data_subset_refuter"
	// RefuterAll runs the three refuters independently, in a fixed order.
	RefuterAll RefuterMethod = "ALL"
)

// ParseRefuterMethod validates a refutation method identifier.
func ParseRefuterMethod(s string) (RefuterMethod, error) {
	switch RefuterMethod(s) {
	case "":
		return RefuterAll, nil
	case RefuterPlaceboTreatment, RefuterRandomCommonCause, RefuterDataSubset, RefuterAll:
		return RefuterMethod(s), nil
	default:
		return "", core.NewMethodError("refutation", s)
	}
}
