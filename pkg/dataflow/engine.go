package dataflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/agentscene/internal/logging"
	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/store"
)

// Engine keeps the latest evaluation of a store's graph.
type Engine struct {
	reg   *catalog.Registry
	store *store.Store

	mu      sync.RWMutex
	last    Result
	lastErr error
	runs    int

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine over the store. Call Attach to evaluate on every topology change.
func NewEngine(reg *catalog.Registry, st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		reg:    reg,
		store:  st,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reset drops the previous result.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = nil
	e.lastErr = nil
}

// Process resets and evaluates the current graph.
func (e *Engine) Process(ctx context.Context) (Result, error) {
	e.Reset()

	start := time.Now()
	snap := e.store.Snapshot()
	res, err := Evaluate(e.reg, snap)

	e.mu.Lock()
	e.last, e.lastErr = res, err
	e.runs++
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("Evaluation failed", "err", err)
	}
	if e.hooks.OnEvaluate != nil {
		e.hooks.OnEvaluate(ctx, &domain.EvaluationEvent{
			Nodes:    len(snap.Nodes),
			Duration: time.Since(start),
			Err:      err,
		})
	}
	return res, err
}

// Attach subscribes to the store and re-evaluates on every connection created or removed.
func (e *Engine) Attach() (detach func()) {
	return e.store.Subscribe(func(ctx context.Context, evt domain.GraphEvent) {
		if !evt.Topology() {
			return
		}
		_, _ = e.Process(ctx)
	})
}

// Result returns the latest evaluation and the error it ended with.
func (e *Engine) Result() (Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last, e.lastErr
}

// Outputs returns the latest outputs of one node.
func (e *Engine) Outputs(nodeID string) (map[string]any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	outs, ok := e.last[nodeID]
	return outs, ok
}

// Runs counts completed passes.
func (e *Engine) Runs() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runs
}
