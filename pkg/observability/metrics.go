package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agentscene"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors exported by an editor process.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Evaluations *prometheus.CounterVec
	Connections *prometheus.GaugeVec
	Visible     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scene_transitions_total",
				Help:      "Scene loads by editor, scene index and result.",
			},
			[]string{"editor", "scene", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scene_transition_duration_seconds",
				Help:      "Duration of scene loads.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"editor"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Dataflow evaluation passes by editor and result.",
			},
			[]string{"editor", "result"},
		),
		Connections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_connections",
				Help:      "Connections currently in the graph.",
			},
			[]string{"editor"},
		),
		Visible: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_visible_nodes",
				Help:      "Nodes currently shown.",
			},
			[]string{"editor"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.Duration, m.Evaluations, m.Connections, m.Visible)
	}
	return m
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks(editor string) domain.LifecycleHooks {
	record := func(_ context.Context, e *domain.SceneEvent) {
		m.Transitions.WithLabelValues(editor, strconv.Itoa(e.Scene), result(e.Err)).Inc()
		m.Duration.WithLabelValues(editor).Observe(e.Duration.Seconds())
	}
	return domain.LifecycleHooks{
		OnSceneEnter:  record,
		OnSceneFailed: record,
		OnEvaluate: func(_ context.Context, e *domain.EvaluationEvent) {
			m.Evaluations.WithLabelValues(editor, result(e.Err)).Inc()
		},
	}
}

// Observe keeps the graph gauges of editor in sync with st.
func (m *Metrics) Observe(editor string, st *store.Store) (unsubscribe func()) {
	update := func() {
		snap := st.Snapshot()
		m.Connections.WithLabelValues(editor).Set(float64(len(snap.Connections)))
		m.Visible.WithLabelValues(editor).Set(float64(len(snap.VisibleNodes())))
	}
	update()
	return st.Subscribe(func(context.Context, domain.GraphEvent) { update() })
}

// LogHooks returns lifecycle hooks that log every transition.
func LogHooks(logger *slog.Logger, editor string) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSceneEnter: func(ctx context.Context, e *domain.SceneEvent) {
			logger.InfoContext(ctx, "scene_enter",
				"editor", editor,
				"scene", e.Scene,
				"name", e.Name,
				"connections", e.Connections,
				"duration", e.Duration,
			)
		},
		OnSceneFailed: func(ctx context.Context, e *domain.SceneEvent) {
			logger.WarnContext(ctx, "scene_failed",
				"editor", editor,
				"scene", e.Scene,
				"name", e.Name,
				"err", e.Err,
			)
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluationEvent) {
			logger.DebugContext(ctx, "evaluate",
				"editor", editor,
				"nodes", e.Nodes,
				"duration", e.Duration,
				"err", e.Err,
			)
		},
	}
}

// Chain merges hooks so that each callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnSceneEnter = chainScene(out.OnSceneEnter, h.OnSceneEnter)
		out.OnSceneFailed = chainScene(out.OnSceneFailed, h.OnSceneFailed)
		out.OnEvaluate = chainEval(out.OnEvaluate, h.OnEvaluate)
	}
	return out
}

func chainScene(a, b func(context.Context, *domain.SceneEvent)) func(context.Context, *domain.SceneEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.SceneEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainEval(a, b func(context.Context, *domain.EvaluationEvent)) func(context.Context, *domain.EvaluationEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.EvaluationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
