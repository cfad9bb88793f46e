package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/internal/presentation/graph"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/ports"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RunResult is the structured output of run_flow.
type RunResult struct {
	RunID   string         `json:"run_id" jsonschema_description:"Identifier of the run"`
	Flow    string         `json:"flow" jsonschema_description:"Name of the flow that ran"`
	Context map[string]any `json:"context" jsonschema_description:"Final context of the run"`
}

// GraphResult is the structured output of get_graph.
type GraphResult struct {
	Flow    string   `json:"flow"`
	Entry   string   `json:"entry" jsonschema_description:"Name of the entry step"`
	Steps   []string `json:"steps" jsonschema_description:"Every step of the graph"`
	Mermaid string   `json:"mermaid" jsonschema_description:"Mermaid flowchart of the graph"`
}

// FlowList is the structured output of list_flows.
type FlowList struct {
	Flows []string `json:"flows"`
}

// Server exposes a workflow catalog as MCP tools.
type Server struct {
	catalog   ports.WorkflowCatalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger. It must not write to stdout when
// serving over stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(catalog ports.WorkflowCatalog, opts ...Option) *Server {
	s := &Server{
		catalog:   catalog,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("scribe-mcp", strings.TrimSpace(scribe.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the workflows that can be run."),
		mcp.WithOutputSchema[FlowList](),
	), mcp.NewStructuredToolHandler(s.handleListFlows))

	s.mcpServer.AddTool(mcp.NewTool("run_flow",
		mcp.WithDescription("Run a workflow to completion from an initial context and return the final context."),
		mcp.WithString("flow", mcp.Required(), mcp.Description("Name of the workflow, e.g. post, pdf2md or md2docx")),
		mcp.WithString("context", mcp.Description("JSON object with the initial context, e.g. {\"file_path\": \"paper.pdf\"}")),
		mcp.WithString("run_id", mcp.Description("Run identifier (optional, generated when omitted)")),
		mcp.WithOutputSchema[RunResult](),
	), mcp.NewStructuredToolHandler(s.handleRunFlow))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the step graph of a workflow for introspection."),
		mcp.WithString("flow", mcp.Required(), mcp.Description("Name of the workflow")),
		mcp.WithOutputSchema[GraphResult](),
	), mcp.NewStructuredToolHandler(s.handleGetGraph))
}

func (s *Server) workflow(args map[string]any) (string, ports.Workflow, error) {
	name, _ := args["flow"].(string)
	if name == "" {
		return "", nil, errors.New("flow is required")
	}
	wf, ok := s.catalog.Workflow(name)
	if !ok {
		return name, nil, fmt.Errorf("unknown flow %q (available: %s)", name, strings.Join(s.catalog.Names(), ", "))
	}
	return name, wf, nil
}

func (s *Server) handleListFlows(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (FlowList, error) {
	return FlowList{Flows: s.catalog.Names()}, nil
}

func (s *Server) handleRunFlow(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (RunResult, error) {
	name, wf, err := s.workflow(args)
	if err != nil {
		return RunResult{}, err
	}

	initial := map[string]any{}
	if raw, ok := args["context"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &initial); err != nil {
			return RunResult{}, fmt.Errorf("context must be a JSON object: %w", err)
		}
	}
	runID, _ := args["run_id"].(string)
	if runID == "" {
		runID = uuid.NewString()
	}

	final, err := wf.RunWithID(ctx, runID, initial)
	if err != nil {
		s.logger.Error("MCP run_flow: run failed", "flow", name, "run_id", runID, "error", err)
		if step := domain.FailedStep(err); step != "" {
			return RunResult{}, fmt.Errorf("run %s failed at step %q: %w", runID, step, err)
		}
		return RunResult{}, fmt.Errorf("run %s failed: %w", runID, err)
	}
	return RunResult{RunID: runID, Flow: name, Context: final}, nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (GraphResult, error) {
	name, wf, err := s.workflow(args)
	if err != nil {
		return GraphResult{}, err
	}
	g := wf.Graph()

	var steps graph.StepSource
	if introspect, ok := wf.(interface{ Steps() *registry.Registry }); ok {
		steps = introspect.Steps()
	}
	return GraphResult{
		Flow:    name,
		Entry:   g.Entry(),
		Steps:   g.Steps(),
		Mermaid: graph.GenerateMermaid(g, steps, nil),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("scribe://flows", "Available Workflows",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(FlowList{Flows: s.catalog.Names()})
		if err != nil {
			return nil, fmt.Errorf("failed to encode flows: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "scribe://flows",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
