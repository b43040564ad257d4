package causalmodel

import (
	"testing"

	"gocausal/domain/dataset"
	"gocausal/domain/graph"
	"gocausal/internal/testkit"
	"gocausal/ports"
)

// confoundedModel builds a model over the Z -> X -> Y, Z -> Y fixture.
func confoundedModel(t *testing.T) (ports.CausalModel, *testkit.SCM, *dataset.Dataset) {
	t.Helper()
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	if err != nil {
		t.Fatal(err)
	}
	model, err := NewBackend().NewModel(ds, "X", "Y", scm.Graph())
	if err != nil {
		t.Fatal(err)
	}
	return model, scm, ds
}

// TestNewModelValidation tests construction guards
func TestNewModelValidation(t *testing.T) {
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	if err != nil {
		t.Fatal(err)
	}
	g := scm.Graph()
	backend := NewBackend()

	if _, err := backend.NewModel(ds, "missing", "Y", g); err == nil {
		t.Error("Expected unknown treatment column to fail")
	}
	if _, err := backend.NewModel(ds, "X", "missing", g); err == nil {
		t.Error("Expected unknown outcome column to fail")
	}
	if _, err := backend.NewModel(ds, "X", "X", g); err == nil {
		t.Error("Expected identical treatment and outcome to fail")
	}

	other := graph.New([]string{"p", "q"})
	if _, err := backend.NewModel(ds, "X", "Y", other); err == nil {
		t.Error("Expected graph without the treatment node to fail")
	}
}

// TestModelAccessors tests the bound state
func TestModelAccessors(t *testing.T) {
	model, scm, ds := confoundedModel(t)
	if model.Treatment() != "X" || model.Outcome() != "Y" {
		t.Errorf("Expected X/Y binding, got %s/%s", model.Treatment(), model.Outcome())
	}
	if model.Data() != ds {
		t.Error("Expected the model to hold the given dataset")
	}
	if !model.Graph().Equal(scm.Graph()) {
		t.Error("Expected the model's graph to match the input structure")
	}
}

// TestModelGraphIsolated tests that the model's graph is a private copy
func TestModelGraphIsolated(t *testing.T) {
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	if err != nil {
		t.Fatal(err)
	}
	input := scm.Graph()
	model, err := NewBackend().NewModel(ds, "X", "Y", input)
	if err != nil {
		t.Fatal(err)
	}

	model.Graph().RemoveEdge("X", "Y")
	if !input.HasEdge("X", "Y") {
		t.Error("Input graph must never be mutated through the model")
	}
}
