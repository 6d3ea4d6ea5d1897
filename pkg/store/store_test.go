package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *store.Store
	nodes map[domain.NodeKind]*domain.NodeInstance
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := catalog.New()
	f := &fixture{store: store.New(), nodes: make(map[domain.NodeKind]*domain.NodeInstance)}
	for _, kind := range domain.Kinds {
		n, err := reg.CreateNode(kind, nil)
		require.NoError(t, err)
		require.NoError(t, f.store.AddNode(context.Background(), n))
		f.nodes[kind] = n
	}
	return f
}

func (f *fixture) id(kind domain.NodeKind) string { return f.nodes[kind].ID }

func TestAddNode_Duplicate(t *testing.T) {
	f := newFixture(t)
	err := f.store.AddNode(context.Background(), f.nodes[domain.KindAgent])

	var dup *domain.DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, f.id(domain.KindAgent), dup.ID)
}

// Every port pair across every kind: success iff out -> in.
func TestAddConnection_DirectionRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	type endpoint struct {
		node *domain.NodeInstance
		port domain.PortSpec
	}
	var all []endpoint
	for _, kind := range domain.Kinds {
		n := f.nodes[kind]
		for _, p := range append(append([]domain.PortSpec{}, n.Inputs...), n.Outputs...) {
			all = append(all, endpoint{n, p})
		}
	}

	for _, src := range all {
		for _, dst := range all {
			spec := domain.ConnectionSpec{
				SourceNodeID: src.node.ID, SourcePort: src.port.Name,
				TargetNodeID: dst.node.ID, TargetPort: dst.port.Name,
			}
			id, err := f.store.AddConnection(ctx, spec)
			valid := src.port.Direction == domain.DirectionOut && dst.port.Direction == domain.DirectionIn
			if valid {
				require.NoError(t, err, spec.String())
				assert.NotEmpty(t, id)
			} else {
				var connErr *domain.InvalidConnectionError
				require.ErrorAs(t, err, &connErr, spec.String())
				assert.Empty(t, id)
			}
		}
	}
}

func TestAddConnection_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		spec   domain.ConnectionSpec
		reason string
	}{
		{
			name:   "document content as source",
			spec:   domain.ConnectionSpec{SourceNodeID: f.id(domain.KindDocument), SourcePort: "content", TargetNodeID: f.id(domain.KindAgent), TargetPort: "rag"},
			reason: "is an input",
		},
		{
			name:   "output as target",
			spec:   domain.ConnectionSpec{SourceNodeID: f.id(domain.KindKnowledgeSource), SourcePort: "context", TargetNodeID: f.id(domain.KindModel), TargetPort: "response"},
			reason: "is an output",
		},
		{
			name:   "unknown port",
			spec:   domain.ConnectionSpec{SourceNodeID: f.id(domain.KindModel), SourcePort: "embedding", TargetNodeID: f.id(domain.KindAgent), TargetPort: "claude"},
			reason: "has no port",
		},
		{
			name:   "unknown node",
			spec:   domain.ConnectionSpec{SourceNodeID: "ghost", SourcePort: "tool_out", TargetNodeID: f.id(domain.KindAgent), TargetPort: "mcp_tool"},
			reason: "unknown source node",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.store.AddConnection(ctx, tt.spec)
			var connErr *domain.InvalidConnectionError
			require.ErrorAs(t, err, &connErr)
			assert.Contains(t, connErr.Reason, tt.reason)
		})
	}
	assert.Empty(t, f.store.Connections())
}

func TestAddConnection_FanInFanOutAndDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := catalog.New()

	claude, _ := reg.CreateNode(domain.KindModel, map[string]any{"model_name": "Claude"})
	require.NoError(t, f.store.AddNode(ctx, claude))

	rag := f.id(domain.KindKnowledgeSource)
	specs := []domain.ConnectionSpec{
		{SourceNodeID: rag, SourcePort: "context", TargetNodeID: f.id(domain.KindModel), TargetPort: "rag"},
		{SourceNodeID: rag, SourcePort: "context", TargetNodeID: claude.ID, TargetPort: "rag"},
		{SourceNodeID: f.id(domain.KindModel), SourcePort: "response", TargetNodeID: f.id(domain.KindDocument), TargetPort: "content"},
		{SourceNodeID: claude.ID, SourcePort: "response", TargetNodeID: f.id(domain.KindDocument), TargetPort: "content"},
		{SourceNodeID: claude.ID, SourcePort: "response", TargetNodeID: f.id(domain.KindDocument), TargetPort: "content"},
	}
	ids := map[string]bool{}
	for _, spec := range specs {
		id, err := f.store.AddConnection(ctx, spec)
		require.NoError(t, err)
		ids[id] = true
	}
	assert.Len(t, ids, len(specs))
	assert.Len(t, f.store.Connections(), len(specs))
}

func TestRemoveNode_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model := f.id(domain.KindModel)
	_, err := f.store.AddConnection(ctx, domain.ConnectionSpec{SourceNodeID: f.id(domain.KindMemorySource), SourcePort: "state", TargetNodeID: model, TargetPort: "memory"})
	require.NoError(t, err)
	_, err = f.store.AddConnection(ctx, domain.ConnectionSpec{SourceNodeID: model, SourcePort: "response", TargetNodeID: f.id(domain.KindAgent), TargetPort: "chatgpt"})
	require.NoError(t, err)
	keep, err := f.store.AddConnection(ctx, domain.ConnectionSpec{SourceNodeID: f.id(domain.KindToolSource), SourcePort: "tool_out", TargetNodeID: f.id(domain.KindAgent), TargetPort: "mcp_tool"})
	require.NoError(t, err)

	var events []domain.EventType
	f.store.Subscribe(func(_ context.Context, evt domain.GraphEvent) {
		events = append(events, evt.Type)
	})

	require.NoError(t, f.store.RemoveNode(ctx, model))

	snap := f.store.Snapshot()
	assert.Nil(t, snap.Node(model))
	assert.Empty(t, snap.ConnectionsTouching(model))
	require.Len(t, snap.Connections, 1)
	assert.Equal(t, keep, snap.Connections[0].ID)
	assert.Equal(t, []domain.EventType{
		domain.EventConnectionRemoved,
		domain.EventConnectionRemoved,
		domain.EventNodeRemoved,
	}, events)

	err = f.store.RemoveNode(ctx, model)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	assert.Empty(t, f.store.Snapshot().ConnectionsTouching(model))
}

func TestRemoveConnection_UnknownIsNoop(t *testing.T) {
	f := newFixture(t)
	called := false
	f.store.Subscribe(func(context.Context, domain.GraphEvent) { called = true })

	assert.False(t, f.store.RemoveConnection(context.Background(), "missing"))
	assert.False(t, called)
}

func TestClearConnections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, port := range []string{"rag", "memory"} {
		src := f.id(domain.KindKnowledgeSource)
		srcPort := "context"
		if port == "memory" {
			src, srcPort = f.id(domain.KindMemorySource), "state"
		}
		_, err := f.store.AddConnection(ctx, domain.ConnectionSpec{SourceNodeID: src, SourcePort: srcPort, TargetNodeID: f.id(domain.KindAgent), TargetPort: port})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, f.store.ClearConnections(ctx))
	assert.Empty(t, f.store.Connections())
	assert.Equal(t, 0, f.store.ClearConnections(ctx))
}

func TestUpdate_PartialEffectsKept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var seen int
	f.store.Subscribe(func(_ context.Context, evt domain.GraphEvent) {
		if evt.Type == domain.EventConnectionCreated {
			seen++
		}
	})

	err := f.store.Update(ctx, func(tx *store.Tx) error {
		_, err := tx.AddConnection(domain.ConnectionSpec{SourceNodeID: f.id(domain.KindToolSource), SourcePort: "tool_out", TargetNodeID: f.id(domain.KindModel), TargetPort: "tools"})
		require.NoError(t, err)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.store.Connections(), 1)
	assert.Equal(t, 1, seen)
}

func TestUpdate_ReadersWaitForCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started := make(chan struct{})
	var wg sync.WaitGroup
	var snap *domain.GraphSnapshot

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-started
		snap = f.store.Snapshot()
	}()

	err := f.store.Update(ctx, func(tx *store.Tx) error {
		tx.ClearConnections()
		close(started)
		// Give the reader time to block on the lock while the graph is empty.
		time.Sleep(50 * time.Millisecond)
		_, err := tx.AddConnection(domain.ConnectionSpec{SourceNodeID: f.id(domain.KindToolSource), SourcePort: "tool_out", TargetNodeID: f.id(domain.KindAgent), TargetPort: "mcp_tool"})
		return err
	})
	require.NoError(t, err)

	wg.Wait()
	require.NotNil(t, snap)
	assert.Len(t, snap.Connections, 1)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var count int
	unsubscribe := f.store.Subscribe(func(context.Context, domain.GraphEvent) { count++ })

	require.NoError(t, f.store.SetPosition(ctx, f.id(domain.KindAgent), domain.Vec3{X: 1}))
	unsubscribe()
	require.NoError(t, f.store.SetPosition(ctx, f.id(domain.KindAgent), domain.Vec3{X: 2}))

	assert.Equal(t, 1, count)
}

func TestUpdate_PanicReleasesLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var delivered int
	f.store.Subscribe(func(context.Context, domain.GraphEvent) { delivered++ })

	assert.PanicsWithValue(t, "camera exploded", func() {
		_ = f.store.Update(ctx, func(tx *store.Tx) error {
			tx.ClearConnections()
			panic("camera exploded")
		})
	})

	done := make(chan *domain.GraphSnapshot, 1)
	go func() { done <- f.store.Snapshot() }()
	select {
	case snap := <-done:
		assert.Len(t, snap.Nodes, len(domain.Kinds))
	case <-time.After(2 * time.Second):
		t.Fatal("Snapshot blocked after a panic in Update")
	}

	require.NoError(t, f.store.SetPosition(ctx, f.id(domain.KindAgent), domain.Vec3{X: 1}))
	assert.Equal(t, 1, delivered)
}
