package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/internal/logging"
	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// ResourceURI returns the URI of an editor's graph resource.
func ResourceURI(editor string) string {
	return "agentscene://" + editor + "/graph"
}

// Server exposes a workspace of editors as an MCP server.
type Server struct {
	workspace *agentscene.Workspace
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(ws *agentscene.Workspace, opts ...Option) *Server {
	s := &Server{
		workspace: ws,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("agentscene-mcp", agentscene.Version(),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_scenes",
		mcp.WithDescription("List the scene presets of an editor and which one is active."),
		mcp.WithString("editor", mcp.Required(), mcp.Description("Editor name, e.g. architecture")),
	), s.listScenes)

	s.mcpServer.AddTool(mcp.NewTool("load_scene",
		mcp.WithDescription("Switch an editor to a scene preset. Replaces every connection."),
		mcp.WithString("editor", mcp.Required(), mcp.Description("Editor name")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Scene index, starting at 1")),
	), s.loadScene)

	s.mcpServer.AddTool(mcp.NewTool("create_node",
		mcp.WithDescription("Create a node from a context menu label (see the menu in list_scenes) or a kind."),
		mcp.WithString("editor", mcp.Required(), mcp.Description("Editor name")),
		mcp.WithString("menu", mcp.Description("Menu label, e.g. \"Model: Claude\"")),
		mcp.WithString("kind", mcp.Description("Node kind: tool_source, knowledge_source, memory_source, model, agent, document")),
		mcp.WithString("name", mcp.Description("Optional display name")),
	), s.createNode)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the nodes and connections of an editor's graph."),
		mcp.WithString("editor", mcp.Required(), mcp.Description("Editor name")),
	), s.getGraph)

	s.mcpServer.AddTool(mcp.NewTool("get_outputs",
		mcp.WithDescription("Get the output values of the last evaluation pass."),
		mcp.WithString("editor", mcp.Required(), mcp.Description("Editor name")),
	), s.getOutputs)
}

func (s *Server) registerResources() {
	for _, name := range s.workspace.Names() {
		editor := name
		uri := ResourceURI(editor)
		s.mcpServer.AddResource(mcp.NewResource(uri, editor+" graph",
			mcp.WithResourceDescription("Live snapshot of the "+editor+" graph."),
			mcp.WithMIMEType("application/json"),
		), func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			ed, err := s.workspace.Editor(editor)
			if err != nil {
				return nil, err
			}
			data, err := json.Marshal(ed.Snapshot())
			if err != nil {
				return nil, fmt.Errorf("failed to encode graph: %w", err)
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			}, nil
		})
	}
}

func (s *Server) editor(req mcp.CallToolRequest) (*agentscene.Editor, error) {
	name, err := req.RequireString("editor")
	if err != nil {
		return nil, err
	}
	return s.workspace.Editor(name)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

type sceneInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Connections int    `json:"connections"`
	Active      bool   `json:"active"`
}

func (s *Server) listScenes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	active := ed.ActiveScene()
	scenes := make([]sceneInfo, 0, len(ed.Scenes()))
	for _, p := range ed.Scenes() {
		scenes = append(scenes, sceneInfo{
			Index:       p.Index,
			Name:        p.Name,
			Description: p.Description,
			Connections: len(p.Connections),
			Active:      p.Index == active,
		})
	}
	return jsonResult(map[string]any{
		"editor": ed.Name,
		"state":  ed.State(),
		"scenes": scenes,
		"menu":   catalog.MenuItems(),
	})
}

func (s *Server) loadScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := intArg(req, "index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := ed.LoadScene(ctx, n)
	if err != nil {
		s.logger.Warn("MCP load_scene failed", "editor", ed.Name, "scene", n, "err", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) createNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		kind   domain.NodeKind
		params = map[string]any{}
	)
	if label := req.GetString("menu", ""); label != "" {
		item, ok := catalog.FindMenuItem(label)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown menu item %q", label)), nil
		}
		kind = item.Kind
		for k, v := range item.Params {
			params[k] = v
		}
	} else {
		kind, err = domain.ParseKind(req.GetString("kind", ""))
		if err != nil {
			return mcp.NewToolResultError("menu or a valid kind is required: " + err.Error()), nil
		}
	}
	if name := req.GetString("name", ""); name != "" {
		params["name"] = name
	}

	node, err := ed.CreateNode(ctx, kind, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}

func (s *Server) getGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ed.Snapshot())
}

func (s *Server) getOutputs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := ed.Evaluation()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func intArg(req mcp.CallToolRequest, key string) (int, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return 0, fmt.Errorf("required argument %q not found", key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("argument %q must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer", key)
		}
		return i, nil
	}
	return 0, fmt.Errorf("argument %q must be an integer", key)
}
