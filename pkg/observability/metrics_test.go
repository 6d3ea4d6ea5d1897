package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/observability"
	"github.com/aretw0/agentscene/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks("architecture")
	ctx := context.Background()

	hooks.OnSceneEnter(ctx, &domain.SceneEvent{Scene: 1, Name: "Full Architecture", Duration: time.Millisecond})
	hooks.OnSceneEnter(ctx, &domain.SceneEvent{Scene: 1, Name: "Full Architecture", Duration: time.Millisecond})
	hooks.OnSceneFailed(ctx, &domain.SceneEvent{Scene: 2, Name: "RAG", Err: errors.New("boom")})
	hooks.OnEvaluate(ctx, &domain.EvaluationEvent{Nodes: 7})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("architecture", "1", observability.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("architecture", "2", observability.ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("architecture", observability.ResultOK)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestMetrics_Observe(t *testing.T) {
	m := observability.NewMetrics(nil)
	st := store.New()
	ctx := context.Background()

	unsubscribe := m.Observe("e", st)
	defer unsubscribe()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, st.AddNode(ctx, &domain.NodeInstance{
			ID:      id,
			Kind:    domain.KindModel,
			Visible: true,
			Inputs:  []domain.PortSpec{{Name: "in", Direction: domain.DirectionIn, Socket: "socket"}},
			Outputs: []domain.PortSpec{{Name: "out", Direction: domain.DirectionOut, Socket: "socket"}},
		}))
	}
	_, err := st.AddConnection(ctx, domain.ConnectionSpec{SourceNodeID: "a", SourcePort: "out", TargetNodeID: "b", TargetPort: "in"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("e")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Visible.WithLabelValues("e")))

	st.ClearConnections(ctx)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connections.WithLabelValues("e")))
}

func TestChain(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnSceneEnter: func(context.Context, *domain.SceneEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnSceneEnter: func(context.Context, *domain.SceneEvent) { calls = append(calls, "b") },
		OnEvaluate:   func(context.Context, *domain.EvaluationEvent) { calls = append(calls, "eval") },
	}

	hooks := observability.Chain(a, domain.LifecycleHooks{}, b)
	hooks.OnSceneEnter(context.Background(), &domain.SceneEvent{})
	hooks.OnEvaluate(context.Background(), &domain.EvaluationEvent{})
	assert.Nil(t, hooks.OnSceneFailed)
	assert.Equal(t, []string{"a", "b", "eval"}, calls)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hooks := observability.LogHooks(logger, "pluggedin")

	hooks.OnSceneEnter(context.Background(), &domain.SceneEvent{Scene: 2, Name: "After Plugged.in", Connections: 14})
	assert.Contains(t, buf.String(), "scene_enter")
	assert.Contains(t, buf.String(), "connections=14")
}
