package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gocausal/app"
	"gocausal/domain/causal"
	"gocausal/internal"
	"gocausal/internal/testkit"
)

func serverFixture(t *testing.T, drive bool) *Server {
	t.Helper()
	scm := testkit.ConfoundedSCM(testkit.DefaultSCMConfig())
	ds, err := scm.Generate()
	if err != nil {
		t.Fatal(err)
	}
	pipeline, err := app.NewCausalPipeline(ds, app.Config{Treatment: "X", Outcome: "Y"})
	if err != nil {
		t.Fatal(err)
	}
	if drive {
		if err := pipeline.InputGraph(scm.Graph()); err != nil {
			t.Fatal(err)
		}
		if err := pipeline.BuildModel(); err != nil {
			t.Fatal(err)
		}
		if _, err := pipeline.Identify(causal.IdentifyDefault); err != nil {
			t.Fatal(err)
		}
	}
	return NewServer(Config{Port: "0"}, pipeline, internal.NopLogger())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// TestHealthEndpoint tests the liveness route
func TestHealthEndpoint(t *testing.T) {
	rec := get(t, serverFixture(t, false), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

// TestGraphEndpointBeforeDiscovery tests the empty-state response
func TestGraphEndpointBeforeDiscovery(t *testing.T) {
	s := serverFixture(t, false)
	for _, path := range []string{"/api/graph", "/api/estimand", "/api/estimate", "/api/refutations"} {
		rec := get(t, s, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 before the stage ran, got %d", path, rec.Code)
		}
	}
}

// TestGraphEndpointAfterDiscovery tests the populated graph view
func TestGraphEndpointAfterDiscovery(t *testing.T) {
	s := serverFixture(t, true)

	rec := get(t, s, "/api/graph")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Nodes []string `json:"nodes"`
		Edges []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Nodes) != 3 {
		t.Errorf("Expected 3 nodes, got %v", body.Nodes)
	}
	if len(body.Edges) != 3 {
		t.Errorf("Expected 3 edges, got %v", body.Edges)
	}
}

// TestEstimandEndpoint tests the identified-estimand view
func TestEstimandEndpoint(t *testing.T) {
	s := serverFixture(t, true)

	rec := get(t, s, "/api/estimand")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var estimand causal.Estimand
	if err := json.Unmarshal(rec.Body.Bytes(), &estimand); err != nil {
		t.Fatal(err)
	}
	if estimand.Treatment != "X" || estimand.Outcome != "Y" {
		t.Errorf("Unexpected estimand binding: %s -> %s", estimand.Treatment, estimand.Outcome)
	}
}

// TestRunEndpoint tests the run-level snapshot
func TestRunEndpoint(t *testing.T) {
	rec := get(t, serverFixture(t, false), "/api/run")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.RunID == "" {
		t.Error("Expected a run id in the response")
	}
}
