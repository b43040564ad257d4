package causal

import (
	"errors"
	"testing"

	"gocausal/domain/core"
)

// TestParseDiscoveryAlgorithm tests algorithm identifier validation
func TestParseDiscoveryAlgorithm(t *testing.T) {
	for _, valid := range []string{"pc", "ges", "icalingam"} {
		if _, err := ParseDiscoveryAlgorithm(valid); err != nil {
			t.Errorf("Expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseDiscoveryAlgorithm("fci"); !errors.Is(err, core.ErrUnknownAlgorithm) {
		t.Errorf("Expected unknown-algorithm error, got %v", err)
	}
	if _, err := ParseDiscoveryAlgorithm(""); err == nil {
		t.Error("Discovery has no default algorithm; empty string should fail")
	}
}

// TestParseIdentifyMethod tests policy validation and the empty default
func TestParseIdentifyMethod(t *testing.T) {
	m, err := ParseIdentifyMethod("")
	if err != nil {
		t.Fatal(err)
	}
	if m != IdentifyDefault {
		t.Errorf("Expected empty string to select default policy, got %s", m)
	}
	if _, err := ParseIdentifyMethod("frontdoor"); !errors.Is(err, core.ErrUnknownMethod) {
		t.Errorf("Expected unknown-method error, got %v", err)
	}
}

// TestParseEstimationMethod tests estimator validation and the empty default
func TestParseEstimationMethod(t *testing.T) {
	m, err := ParseEstimationMethod("")
	if err != nil {
		t.Fatal(err)
	}
	if m != EstimatorLinearRegression {
		t.Errorf("Expected default estimator, got %s", m)
	}
	if _, err := ParseEstimationMethod("backdoor.propensity_score"); err == nil {
		t.Error("Expected unknown estimator to fail")
	}
}

// TestParseRefuterMethod tests refuter validation and the ALL default
func TestParseRefuterMethod(t *testing.T) {
	m, err := ParseRefuterMethod("")
	if err != nil {
		t.Fatal(err)
	}
	if m != RefuterAll {
		t.Errorf("Expected empty string to select ALL, got %s", m)
	}
	for _, valid := range []string{"placebo_treatment_refuter", "random_common_cause", "data_subset_refuter", "ALL"} {
		if _, err := ParseRefuterMethod(valid); err != nil {
			t.Errorf("Expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseRefuterMethod("bootstrap"); err == nil {
		t.Error("Expected unknown refuter to fail")
	}
}
