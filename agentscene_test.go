package agentscene_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/dsl"
	"github.com/aretw0/agentscene/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PopulatesBook(t *testing.T) {
	ed, err := agentscene.New("architecture")
	require.NoError(t, err)
	defer ed.Close()

	snap := ed.Snapshot()
	assert.Len(t, snap.Nodes, 7)
	assert.Empty(t, snap.Connections)
	assert.Equal(t, 0, ed.ActiveScene())
	assert.Equal(t, "uninitialized", ed.State())

	// Sources evaluate even before any scene is loaded.
	ragID, ok := ed.NodeID("rag")
	require.True(t, ok)
	outs, ok := ed.Outputs(ragID)
	require.True(t, ok)
	assert.Equal(t, catalog.KnowledgeContext, outs["context"])
}

func TestNew_UnknownEditor(t *testing.T) {
	_, err := agentscene.New("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownEditor)
}

func TestNew_InitialScene(t *testing.T) {
	ed, err := agentscene.New("architecture", agentscene.WithInitialScene(4))
	require.NoError(t, err)
	defer ed.Close()

	assert.Equal(t, 4, ed.ActiveScene())
	assert.Equal(t, "Complete Pipeline", ed.State())
	assert.Len(t, ed.Snapshot().Connections, 7)
}

func TestNew_InitialSceneOutOfRange(t *testing.T) {
	_, err := agentscene.New("architecture", agentscene.WithInitialScene(9))
	assert.ErrorIs(t, err, domain.ErrSceneNotFound)
}

func TestEditor_LoadSceneReevaluates(t *testing.T) {
	var (
		mu     sync.Mutex
		scenes []string
	)
	hooks := domain.LifecycleHooks{
		OnSceneEnter: func(_ context.Context, e *domain.SceneEvent) {
			mu.Lock()
			scenes = append(scenes, e.Name)
			mu.Unlock()
		},
	}
	ed, err := agentscene.New("architecture", agentscene.WithLifecycleHooks(hooks))
	require.NoError(t, err)
	defer ed.Close()
	ctx := context.Background()

	res, err := ed.LoadScene(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, res.Connections, 12)
	assert.True(t, res.Fitted)

	result, err := ed.Evaluation()
	require.NoError(t, err)
	agentID, _ := ed.NodeID("agent")
	v, ok := result.Output(agentID, "action")
	require.True(t, ok)
	assert.Equal(t, catalog.AgentAction, v)

	_, err = ed.LoadScene(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Full Architecture", "Data Flow"}, scenes)
}

func TestEditor_NodeOperations(t *testing.T) {
	ed, err := agentscene.New("architecture")
	require.NoError(t, err)
	defer ed.Close()
	ctx := context.Background()

	doc, err := ed.CreateFromMenu(ctx, "Document")
	require.NoError(t, err)
	assert.Equal(t, "Document", doc.DisplayName)

	agentID, _ := ed.NodeID("agent")
	id, err := ed.Connect(ctx, domain.ConnectionSpec{
		SourceNodeID: agentID, SourcePort: "action",
		TargetNodeID: doc.ID, TargetPort: "content",
	})
	require.NoError(t, err)
	assert.Len(t, ed.Snapshot().Connections, 1)

	assert.True(t, ed.Disconnect(ctx, id))
	assert.False(t, ed.Disconnect(ctx, id))

	_, err = ed.CreateFromMenu(ctx, "Toaster")
	assert.Error(t, err)

	_, err = ed.CreateNode(ctx, "gizmo", nil)
	var kindErr *domain.InvalidKindError
	assert.ErrorAs(t, err, &kindErr)

	require.NoError(t, ed.RemoveNode(ctx, doc.ID))
	assert.ErrorIs(t, ed.RemoveNode(ctx, doc.ID), domain.ErrNodeNotFound)

	assert.ErrorIs(t, ed.RemoveNode(ctx, agentID), domain.ErrNodeDeclared)
	assert.NotNil(t, ed.Snapshot().Node(agentID))
	_, err = ed.LoadScene(ctx, 1)
	require.NoError(t, err)
}

func TestEditor_WithBook(t *testing.T) {
	book := dsl.New("tiny").
		Model("m", "Claude").
		Document("d", "Out").
		Scene(1, "Only").
		Connect("m.response", "d.content").
		Done().
		MustBuild(nil)

	ed, err := agentscene.New("", agentscene.WithBook(book))
	require.NoError(t, err)
	defer ed.Close()
	assert.Equal(t, "tiny", ed.Name)

	_, err = ed.LoadScene(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Only", ed.State())
}

func TestEditor_InvalidBookRejected(t *testing.T) {
	book := &scene.Book{Editor: "bad"}
	_, err := agentscene.New("", agentscene.WithBook(book))
	assert.ErrorContains(t, err, "no scenes")
}

func TestWorkspace(t *testing.T) {
	lib, err := scene.Builtin()
	require.NoError(t, err)

	ws, err := agentscene.NewWorkspace(lib, agentscene.WithInitialScene(1))
	require.NoError(t, err)
	defer ws.Close()

	assert.Equal(t, []string{"architecture", "pluggedin"}, ws.Names())

	ed, err := ws.Editor("pluggedin")
	require.NoError(t, err)
	assert.Equal(t, "Before Plugged.in", ed.State())

	_, err = ws.Editor("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownEditor)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, agentscene.Version())
}
