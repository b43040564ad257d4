package causalmodel

import (
	"testing"

	"gocausal/domain/causal"
)

// TestIdentifyBackdoorSet tests that every policy finds the confounder
func TestIdentifyBackdoorSet(t *testing.T) {
	model, _, _ := confoundedModel(t)

	for _, method := range []causal.IdentifyMethod{
		causal.IdentifyMaximal,
		causal.IdentifyMinimal,
		causal.IdentifyExhaustive,
		causal.IdentifyDefault,
	} {
		estimand, err := model.IdentifyEffect(method)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		if !estimand.IsValid() {
			t.Fatalf("%s: expected a valid estimand", method)
		}
		if estimand.EstimandType != causal.EstimandTypeBackdoor {
			t.Errorf("%s: expected backdoor type, got %s", method, estimand.EstimandType)
		}
		if len(estimand.BackdoorSet) != 1 || estimand.BackdoorSet[0] != "Z" {
			t.Errorf("%s: expected adjustment set {Z}, got %v", method, estimand.BackdoorSet)
		}
		if estimand.Treatment != "X" || estimand.Outcome != "Y" {
			t.Errorf("%s: estimand binding wrong: %s -> %s", method, estimand.Treatment, estimand.Outcome)
		}
	}
}

// TestIdentifyMinimalNotLargerThanMaximal tests the policy size relation
func TestIdentifyMinimalNotLargerThanMaximal(t *testing.T) {
	model, _, _ := confoundedModel(t)

	maximal, err := model.IdentifyEffect(causal.IdentifyMaximal)
	if err != nil {
		t.Fatal(err)
	}
	minimal, err := model.IdentifyEffect(causal.IdentifyMinimal)
	if err != nil {
		t.Fatal(err)
	}
	if len(minimal.BackdoorSet) > len(maximal.BackdoorSet) {
		t.Errorf("Minimal set %v larger than maximal set %v", minimal.BackdoorSet, maximal.BackdoorSet)
	}
}

// TestIdentifyExhaustiveEnumeration tests the all-sets listing
func TestIdentifyExhaustiveEnumeration(t *testing.T) {
	model, _, _ := confoundedModel(t)

	estimand, err := model.IdentifyEffect(causal.IdentifyExhaustive)
	if err != nil {
		t.Fatal(err)
	}
	if len(estimand.AllBackdoorSets) == 0 {
		t.Fatal("Expected at least one enumerated adjustment set")
	}
	// Sets are ordered by size; the first is also the chosen one.
	for i := 1; i < len(estimand.AllBackdoorSets); i++ {
		if len(estimand.AllBackdoorSets[i-1]) > len(estimand.AllBackdoorSets[i]) {
			t.Error("Enumerated sets must be ordered by size")
		}
	}
}

// TestIdentifyUnknownMethod tests policy validation
func TestIdentifyUnknownMethod(t *testing.T) {
	model, _, _ := confoundedModel(t)
	if _, err := model.IdentifyEffect("frontdoor"); err == nil {
		t.Error("Expected unknown policy to fail")
	}
}

// TestIdentifyEmptyMethodDefaults tests the empty-policy default
func TestIdentifyEmptyMethodDefaults(t *testing.T) {
	model, _, _ := confoundedModel(t)
	estimand, err := model.IdentifyEffect("")
	if err != nil {
		t.Fatal(err)
	}
	if estimand.Method != causal.IdentifyDefault {
		t.Errorf("Expected default policy recorded, got %s", estimand.Method)
	}
}
