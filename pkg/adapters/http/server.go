package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/internal/presentation/graph"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/observability"
	"github.com/aretw0/scribe/pkg/ports"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RunRequest is the body of POST /flows/{name}/runs.
type RunRequest struct {
	// RunID is optional; clients pick one to subscribe to /events before the run starts.
	RunID   string         `json:"run_id,omitempty"`
	Context map[string]any `json:"context"`
}

// RunResponse is returned for a successful run.
type RunResponse struct {
	RunID   string         `json:"run_id"`
	Flow    string         `json:"flow"`
	Context map[string]any `json:"context"`
	Steps   []string       `json:"steps,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Step  string `json:"step,omitempty"`
	RunID string `json:"run_id,omitempty"`
}

// GraphResponse is the JSON form of GET /flows/{name}/graph?format=json.
type GraphResponse struct {
	Flow   string      `json:"flow"`
	Entry  string      `json:"entry"`
	Steps  []string    `json:"steps"`
	Routes []RouteView `json:"routes"`
}

// RouteView is one edge of a graph.
type RouteView struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// Server exposes a workflow catalog over HTTP.
type Server struct {
	catalog ports.WorkflowCatalog
	streams *StreamManager
	trail   *observability.Trail
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams enables GET /events. Its Hooks must be installed on the flows.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithTrail adds the visited steps to run responses. Its Hooks must be
// installed on the flows.
func WithTrail(t *observability.Trail) Option {
	return func(s *Server) {
		s.trail = t
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for catalog.
func NewHandler(catalog ports.WorkflowCatalog, opts ...Option) http.Handler {
	s := &Server{
		catalog: catalog,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/flows", s.ListFlows)
	r.Get("/flows/{name}/graph", s.GetGraph)
	r.Post("/flows/{name}/runs", s.RunFlow)
	if s.streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	if err := writeJSON(w, status, resp); err != nil {
		s.logger.Error("error response encode failed", "error", err)
	}
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "scribe-http",
		"version": strings.TrimSpace(scribe.Version),
	})
}

// ListFlows handles GET /flows.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"flows": s.catalog.Names()})
}

func (s *Server) workflow(w http.ResponseWriter, r *http.Request) (string, ports.Workflow, bool) {
	name := chi.URLParam(r, "name")
	wf, ok := s.catalog.Workflow(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("unknown flow %q", name)})
		return name, nil, false
	}
	return name, wf, true
}

// GetGraph handles GET /flows/{name}/graph. The default body is Mermaid
// text; ?format=json returns a GraphResponse.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	name, wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	g := wf.Graph()

	if r.URL.Query().Get("format") == "json" {
		resp := GraphResponse{Flow: name, Entry: g.Entry(), Steps: g.Steps(), Routes: []RouteView{}}
		for _, from := range g.Sources() {
			for _, route := range g.Routes(from) {
				resp.Routes = append(resp.Routes, RouteView{From: from, To: route.Target, Label: route.Label})
			}
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var steps graph.StepSource
	if introspect, ok := wf.(interface{ Steps() *registry.Registry }); ok {
		steps = introspect.Steps()
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(g, steps, nil))
}

// RunFlow handles POST /flows/{name}/runs.
func (s *Server) RunFlow(w http.ResponseWriter, r *http.Request) {
	name, wf, ok := s.workflow(w, r)
	if !ok {
		return
	}

	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Warn("RunFlow: invalid request body", "flow", name, "error", err)
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	runID := body.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	final, err := wf.RunWithID(r.Context(), runID, body.Context)

	var visited []string
	if s.trail != nil {
		visited = s.trail.Visited(runID)
		s.trail.Forget(runID)
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrMissingInput) {
			status = http.StatusBadRequest
		}
		s.logger.Error("RunFlow: run failed", "flow", name, "run_id", runID, "step", domain.FailedStep(err), "error", err)
		s.writeError(w, status, ErrorResponse{Error: err.Error(), Step: domain.FailedStep(err), RunID: runID})
		return
	}

	resp := RunResponse{RunID: runID, Flow: name, Context: final, Steps: visited}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		s.logger.Error("RunFlow: response encode failed", "flow", name, "run_id", runID, "error", err)
	}
}
