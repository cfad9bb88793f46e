package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/dsl"
	"github.com/aretw0/scribe/pkg/ports"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog map[string]*scribe.Engine

func (c catalog) Names() []string { return []string{"echo"} }

func (c catalog) Workflow(name string) (ports.Workflow, bool) {
	eng, ok := c[name]
	if !ok {
		return nil, false
	}
	return eng, true
}

func newServer(t *testing.T) *Server {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Define(registry.Step{
		Name:   "echo",
		Inputs: []registry.Input{registry.In("text")},
		Output: "echoed",
		Logic: func(_ context.Context, in registry.Inputs) (any, error) {
			text, err := in.String("text")
			if text == "fail" {
				return nil, errors.New("echo refused")
			}
			return text, err
		},
	}))
	g, err := dsl.New(reg).Entry("echo").Build()
	require.NoError(t, err)
	eng, err := scribe.New(g, reg, scribe.WithName("echo"))
	require.NoError(t, err)
	return NewServer(catalog{"echo": eng})
}

func TestServer_RunFlow(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		res, err := s.handleRunFlow(ctx, mcp.CallToolRequest{}, map[string]any{
			"flow":    "echo",
			"context": `{"text": "hi"}`,
			"run_id":  "mcp-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "mcp-1", res.RunID)
		assert.Equal(t, "hi", res.Context["echoed"])
	})

	t.Run("Step Failure Names The Step", func(t *testing.T) {
		_, err := s.handleRunFlow(ctx, mcp.CallToolRequest{}, map[string]any{
			"flow":    "echo",
			"context": `{"text": "fail"}`,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `failed at step "echo"`)
		assert.Contains(t, err.Error(), "echo refused")
	})

	t.Run("Invalid Context", func(t *testing.T) {
		_, err := s.handleRunFlow(ctx, mcp.CallToolRequest{}, map[string]any{"flow": "echo", "context": "[1,2]"})
		assert.ErrorContains(t, err, "JSON object")
	})

	t.Run("Unknown Flow", func(t *testing.T) {
		_, err := s.handleRunFlow(ctx, mcp.CallToolRequest{}, map[string]any{"flow": "nope"})
		assert.ErrorContains(t, err, "available: echo")
	})

	t.Run("Missing Flow", func(t *testing.T) {
		_, err := s.handleRunFlow(ctx, mcp.CallToolRequest{}, map[string]any{})
		assert.ErrorContains(t, err, "flow is required")
	})
}

func TestServer_GetGraph(t *testing.T) {
	s := newServer(t)

	res, err := s.handleGetGraph(context.Background(), mcp.CallToolRequest{}, map[string]any{"flow": "echo"})
	require.NoError(t, err)
	assert.Equal(t, "echo", res.Entry)
	assert.Equal(t, []string{"echo"}, res.Steps)
	assert.Contains(t, res.Mermaid, `echo(("echo"))`)
}

func TestServer_ListFlows(t *testing.T) {
	s := newServer(t)

	res, err := s.handleListFlows(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo"}, res.Flows)
}

func TestServer_ToolsList(t *testing.T) {
	s := newServer(t)

	msg := s.mcpServer.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, tool := range []string{"list_flows", "run_flow", "get_graph"} {
		assert.Contains(t, string(data), `"name":"`+tool+`"`)
	}
}
