package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/internal/presentation/graph"
	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "agentscene-http",
		"version":     agentscene.Version(),
		"api_version": apiVersion,
	})
}

// GetSpec handles GET /openapi.yaml.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	if _, err := GetSwagger(); err != nil {
		s.logger.Error("Failed to load OpenAPI spec", "err", err)
		http.Error(w, "Failed to load spec", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(rawSpec)
}

// GetMenu handles GET /menu.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.MenuItems())
}

type editorSummary struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Scenes      int    `json:"scenes"`
	ActiveScene int    `json:"active_scene"`
	State       string `json:"state"`
}

// ListEditors handles GET /editors.
func (s *Server) ListEditors(w http.ResponseWriter, r *http.Request) {
	out := make([]editorSummary, 0)
	for _, name := range s.Workspace.Names() {
		ed, err := s.Workspace.Editor(name)
		if err != nil {
			continue
		}
		out = append(out, editorSummary{
			Name:        name,
			Title:       ed.Book().Title,
			Scenes:      len(ed.Scenes()),
			ActiveScene: ed.ActiveScene(),
			State:       ed.State(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type sceneSummary struct {
	Index       int      `json:"index"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Connections int      `json:"connections"`
	Hidden      []string `json:"hidden,omitempty"`
	Active      bool     `json:"active"`
}

type sceneList struct {
	Editor      string         `json:"editor"`
	ActiveScene int            `json:"active_scene"`
	Scenes      []sceneSummary `json:"scenes"`
}

// ListScenes handles GET /editors/{editor}/scenes.
func (s *Server) ListScenes(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	active := ed.ActiveScene()
	resp := sceneList{Editor: ed.Name, ActiveScene: active}
	for _, p := range ed.Scenes() {
		resp.Scenes = append(resp.Scenes, sceneSummary{
			Index:       p.Index,
			Name:        p.Name,
			Description: p.Description,
			Connections: len(p.Connections),
			Hidden:      p.Hidden,
			Active:      p.Index == active,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// LoadScene handles POST /editors/{editor}/scenes/{index}.
func (s *Server) LoadScene(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, r, badRequest("scene index must be an integer"))
		return
	}
	res, err := ed.LoadScene(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetGraph handles GET /editors/{editor}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ed.Snapshot())
}

// GetGraphMermaid handles GET /editors/{editor}/graph.mmd.
func (s *Server) GetGraphMermaid(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	chart := graph.GenerateMermaid(ed.Snapshot(), &graph.GraphOverlay{
		Title:      ed.State(),
		Refs:       ed.Refs(),
		ShowHidden: r.URL.Query().Get("hidden") == "true",
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(chart))
}

// GetOutputs handles GET /editors/{editor}/outputs.
func (s *Server) GetOutputs(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	res, err := ed.Evaluation()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type createNodeRequest struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params"`
	Menu   string         `json:"menu"`
}

// CreateNode handles POST /editors/{editor}/nodes.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body createNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, badRequest("invalid request body: %v", err))
		return
	}

	var (
		node *domain.NodeInstance
		err  error
	)
	switch {
	case body.Menu != "":
		item, found := catalog.FindMenuItem(body.Menu)
		if !found {
			s.writeError(w, r, badRequest("unknown menu item %q", body.Menu))
			return
		}
		node, err = ed.CreateNode(r.Context(), item.Kind, item.Params)
	case body.Kind != "":
		kind, kerr := domain.ParseKind(body.Kind)
		if kerr != nil {
			s.writeError(w, r, kerr)
			return
		}
		node, err = ed.CreateNode(r.Context(), kind, body.Params)
	default:
		s.writeError(w, r, badRequest("kind or menu is required"))
		return
	}
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			err = badRequest("%v", err)
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// RemoveNode handles DELETE /editors/{editor}/nodes/{id}.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	if err := ed.RemoveNode(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateConnection handles POST /editors/{editor}/connections.
func (s *Server) CreateConnection(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var spec domain.ConnectionSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.writeError(w, r, badRequest("invalid request body: %v", err))
		return
	}
	id, err := ed.Connect(r.Context(), spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.Connection{ID: id, ConnectionSpec: spec})
}

// RemoveConnection handles DELETE /editors/{editor}/connections/{id}.
func (s *Server) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !ed.Disconnect(r.Context(), id) {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("connection %q not found", id)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /editors/{editor}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var filter map[string]bool
	if types := r.URL.Query().Get("types"); types != "" {
		filter = make(map[string]bool)
		for _, t := range strings.Split(types, ",") {
			filter[strings.TrimSpace(t)] = true
		}
	}

	ch, cancel := s.Streams.Subscribe(ed.Name)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Info("SSE: Client subscribed", "editor", ed.Name)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "editor", ed.Name)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			typ, payload, _ := strings.Cut(msg, "\n")
			if filter != nil && !filter[typ] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", typ, payload)
			flusher.Flush()
		}
	}
}
