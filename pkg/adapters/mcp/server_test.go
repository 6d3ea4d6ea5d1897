package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/scene"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	lib, err := scene.Builtin()
	require.NoError(t, err)
	ws, err := agentscene.NewWorkspace(lib)
	require.NoError(t, err)
	t.Cleanup(ws.Close)
	return NewServer(ws)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_scenes": srv.listScenes,
		"load_scene":  srv.loadScene,
		"create_node": srv.createNode,
		"get_graph":   srv.getGraph,
		"get_outputs": srv.getOutputs,
	}
	h, ok := handlers[name]
	require.True(t, ok, "unknown tool %s", name)

	result, err := h(ctx, req)
	require.NoError(t, err)
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListScenes(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_scenes", map[string]any{"editor": "architecture"})
	require.False(t, r.IsError, resultText(r))

	text := resultText(r)
	assert.Contains(t, text, "Full Architecture")
	assert.Contains(t, text, "Complete Pipeline")
	assert.Contains(t, text, "Model: Llama")
}

func TestLoadSceneAndOutputs(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "load_scene", map[string]any{"editor": "pluggedin", "index": float64(2)})
	require.False(t, r.IsError, resultText(r))
	var res domain.SceneResult
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &res))
	assert.Equal(t, "After Plugged.in", res.Name)
	assert.Len(t, res.Connections, 14)

	r = callTool(t, srv, "get_outputs", map[string]any{"editor": "pluggedin"})
	require.False(t, r.IsError)
	assert.Contains(t, resultText(r), "Plugged.in MCP")

	r = callTool(t, srv, "get_graph", map[string]any{"editor": "pluggedin"})
	require.False(t, r.IsError)
	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &snap))
	assert.EqualValues(t, 2, snap["active_scene"])
}

func TestToolErrors(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{"missing editor", "get_graph", map[string]any{}},
		{"unknown editor", "get_graph", map[string]any{"editor": "nope"}},
		{"missing index", "load_scene", map[string]any{"editor": "architecture"}},
		{"unknown scene", "load_scene", map[string]any{"editor": "architecture", "index": "7"}},
		{"fractional index", "load_scene", map[string]any{"editor": "architecture", "index": 1.5}},
		{"unknown menu", "create_node", map[string]any{"editor": "architecture", "menu": "Toaster"}},
		{"no kind", "create_node", map[string]any{"editor": "architecture"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := callTool(t, srv, tt.tool, tt.args)
			assert.True(t, r.IsError, resultText(r))
		})
	}
}

func TestCreateNode(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_node", map[string]any{"editor": "architecture", "menu": "Model: Claude", "name": "Claude 2"})
	require.False(t, r.IsError, resultText(r))
	var node map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &node))
	assert.Equal(t, string(domain.KindModel), node["kind"])
	assert.Equal(t, "Claude 2", node["display_name"])

	r = callTool(t, srv, "create_node", map[string]any{"editor": "architecture", "kind": "agent"})
	require.False(t, r.IsError, resultText(r))
	assert.Contains(t, resultText(r), "AI Agent")
}

func TestResourceURI(t *testing.T) {
	assert.Equal(t, "agentscene://architecture/graph", ResourceURI("architecture"))
	assert.NotNil(t, testServer(t).MCPServer())
}
