package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gocausal/app"
	"gocausal/internal"
)

// Server exposes the pipeline read model over HTTP. It is a thin view of
// the accumulated artifacts and never mutates pipeline state.
type Server struct {
	router   *chi.Mux
	pipeline *app.CausalPipeline
	log      *internal.Logger
	port     string
}

// Config holds server configuration.
type Config struct {
	Port string
}

// NewServer creates a read-model server over an already driven pipeline.
func NewServer(cfg Config, pipeline *app.CausalPipeline, log *internal.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		pipeline: pipeline,
		log:      log,
		port:     cfg.Port,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/run", s.handleRun)
	s.router.Get("/api/graph", s.handleGraph)
	s.router.Get("/api/estimand", s.handleEstimand)
	s.router.Get("/api/estimate", s.handleEstimate)
	s.router.Get("/api/refutations", s.handleRefutations)
	s.router.Get("/healthz", s.handleHealth)
}

// Start starts the HTTP server and blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.port)
	s.log.Info("starting read-model server on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()
	s.writeJSON(w, map[string]interface{}{
		"run_id":   s.pipeline.RunID(),
		"snapshot": snap,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()
	if snap.Graph == nil {
		s.writeError(w, http.StatusNotFound, "no graph discovered yet")
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"nodes":      snap.GraphNodes,
		"edges":      snap.GraphEdges,
		"refutation": snap.GraphRefutation,
	})
}

func (s *Server) handleEstimand(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()
	if snap.Estimand == nil {
		s.writeError(w, http.StatusNotFound, "no estimand identified yet")
		return
	}
	s.writeJSON(w, snap.Estimand)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()
	if snap.Estimate == nil {
		s.writeError(w, http.StatusNotFound, "no estimate computed yet")
		return
	}
	s.writeJSON(w, snap.Estimate)
}

func (s *Server) handleRefutations(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()
	if snap.EstimateRefutation == nil {
		s.writeError(w, http.StatusNotFound, "no refutations run yet")
		return
	}
	s.writeJSON(w, snap.EstimateRefutation)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
