package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/agentscene"
	httpadapter "github.com/aretw0/agentscene/pkg/adapters/http"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...httpadapter.Option) (*httpadapter.Server, *agentscene.Workspace) {
	t.Helper()
	lib, err := scene.Builtin()
	require.NoError(t, err)
	ws, err := agentscene.NewWorkspace(lib)
	require.NoError(t, err)
	srv := httpadapter.New(ws, opts...)
	t.Cleanup(func() {
		srv.Close()
		ws.Close()
	})
	return srv, ws
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Meta(t *testing.T) {
	srv, _ := newServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, agentscene.Version(), info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = do(t, h, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, http.MethodGet, "/menu", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Model: Claude")
}

func TestGetSwagger(t *testing.T) {
	doc, err := httpadapter.GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/editors/{editor}/scenes/{index}"))
}

func TestServer_SceneLifecycle(t *testing.T) {
	srv, _ := newServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/editors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"architecture"`)
	assert.Contains(t, w.Body.String(), `"state":"uninitialized"`)

	w = do(t, h, http.MethodPost, "/editors/architecture/scenes/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res domain.SceneResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Full Architecture", res.Name)
	assert.Len(t, res.Connections, 12)

	w = do(t, h, http.MethodGet, "/editors/architecture/scenes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active_scene":1`)

	w = do(t, h, http.MethodGet, "/editors/architecture/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap domain.GraphSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap.Connections, 12)
	assert.Len(t, snap.Nodes, 7)

	w = do(t, h, http.MethodGet, "/editors/architecture/graph.mmd", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "%% Full Architecture")
	assert.Contains(t, w.Body.String(), `rag -- "context → rag" --> chatgpt`)

	w = do(t, h, http.MethodGet, "/editors/architecture/outputs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Claude_response")
}

func TestServer_ErrorStatuses(t *testing.T) {
	srv, ws := newServer(t)
	h := srv.Handler()
	ed, err := ws.Editor("architecture")
	require.NoError(t, err)
	agentID, _ := ed.NodeID("agent")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown editor", http.MethodGet, "/editors/nope/scenes", nil, http.StatusNotFound},
		{"unknown scene", http.MethodPost, "/editors/architecture/scenes/9", nil, http.StatusNotFound},
		{"bad index", http.MethodPost, "/editors/architecture/scenes/two", nil, http.StatusBadRequest},
		{"bad kind", http.MethodPost, "/editors/architecture/nodes", map[string]any{"kind": "gizmo"}, http.StatusBadRequest},
		{"empty node", http.MethodPost, "/editors/architecture/nodes", map[string]any{}, http.StatusBadRequest},
		{"unknown menu", http.MethodPost, "/editors/architecture/nodes", map[string]any{"menu": "Toaster"}, http.StatusBadRequest},
		{"bad connection", http.MethodPost, "/editors/architecture/connections", domain.ConnectionSpec{SourceNodeID: "x", SourcePort: "y", TargetNodeID: "z", TargetPort: "w"}, http.StatusBadRequest},
		{"missing node", http.MethodDelete, "/editors/architecture/nodes/ghost", nil, http.StatusNotFound},
		{"declared node", http.MethodDelete, "/editors/architecture/nodes/" + agentID, nil, http.StatusConflict},
		{"missing connection", http.MethodDelete, "/editors/architecture/connections/ghost", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestServer_NodeAndConnectionCRUD(t *testing.T) {
	srv, ws := newServer(t)
	h := srv.Handler()
	ed, err := ws.Editor("architecture")
	require.NoError(t, err)

	w := do(t, h, http.MethodPost, "/editors/architecture/nodes", map[string]any{"menu": "Document"})
	require.Equal(t, http.StatusCreated, w.Code)
	var doc domain.NodeInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, domain.KindDocument, doc.Kind)

	agentID, _ := ed.NodeID("agent")
	w = do(t, h, http.MethodPost, "/editors/architecture/connections", domain.ConnectionSpec{
		SourceNodeID: agentID, SourcePort: "action", TargetNodeID: doc.ID, TargetPort: "content",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var conn domain.Connection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conn))
	assert.NotEmpty(t, conn.ID)

	w = do(t, h, http.MethodDelete, "/editors/architecture/connections/"+conn.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodDelete, "/editors/architecture/nodes/"+doc.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, ed.Snapshot().Nodes, 7)
}

func TestServer_Auth(t *testing.T) {
	srv, _ := newServer(t, httpadapter.WithToken("s3cret"))
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/editors", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/editors", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("agentscene_up 1\n"))
	})
	srv, _ := newServer(t, httpadapter.WithMetricsHandler(metrics))

	w := do(t, srv.Handler(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agentscene_up")
}

func TestServer_SubscribeEvents(t *testing.T) {
	srv, ws := newServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/editors/pluggedin/events?types=scene_activated", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return srv.Streams.Subscribers("pluggedin") == 1 }, time.Second, 10*time.Millisecond)

	ed, err := ws.Editor("pluggedin")
	require.NoError(t, err)
	_, err = ed.LoadScene(ctx, 2)
	require.NoError(t, err)

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") && !strings.Contains(line, "ping") {
			got = append(got, strings.TrimSpace(line))
			data, err := reader.ReadString('\n')
			require.NoError(t, err)
			got = append(got, data)
		}
	}
	assert.Equal(t, "event: scene_activated", got[0])
	assert.Contains(t, got[1], `"scene":2`)
}
