package main

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/pkg/adapters/redis"
	"github.com/aretw0/agentscene/pkg/controller"
	"github.com/aretw0/agentscene/pkg/observability"
)

// workspace is every editor of the library wired for a long-running server.
type workspace struct {
	*agentscene.Workspace
	cleanup []func()
}

func (w *workspace) Close() {
	for i := len(w.cleanup) - 1; i >= 0; i-- {
		w.cleanup[i]()
	}
}

// openWorkspace builds one editor per book. Metrics may be nil. With Redis
// configured, scene loads are serialized across replicas, events are journaled
// and each editor resumes the last scene recorded for it.
func openWorkspace(ctx context.Context, metrics *observability.Metrics) (*workspace, error) {
	lib, err := loadLibrary()
	if err != nil {
		return nil, err
	}
	w := &workspace{}

	var (
		locker  *redis.Locker
		journal *redis.Journal
	)
	if cfg.Redis.Enabled() {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		w.cleanup = append(w.cleanup, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		locker = redis.NewLocker(client, cfg.Redis.Prefix)
		journal = redis.NewJournal(client, redis.WithPrefix(cfg.Redis.Prefix), redis.WithLogger(logger))
		logger.Info("Redis enabled", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
	}

	locks := controller.NewLockSet()
	var editors []*agentscene.Editor
	for _, name := range lib.Editors() {
		hooks := observability.LogHooks(logger, name)
		if metrics != nil {
			hooks = observability.Chain(metrics.Hooks(name), hooks)
		}
		opts := []agentscene.Option{
			agentscene.WithLibrary(lib),
			agentscene.WithLogger(logger),
			agentscene.WithLockSet(locks),
			agentscene.WithLockTTL(cfg.Transitions.LockTTL),
			agentscene.WithLifecycleHooks(hooks),
		}
		if cfg.Transitions.Reject() {
			opts = append(opts, agentscene.WithRejectConcurrent())
		}
		if locker != nil {
			opts = append(opts, agentscene.WithLocker(locker))
		}
		if journal != nil {
			opts = append(opts, agentscene.WithObserver(journal.Observer(name)))
			if n, ok, err := journal.LastScene(ctx, name); err != nil {
				logger.Warn("Could not read last scene", "editor", name, "err", err)
			} else if ok {
				if book, err := lib.Get(name); err == nil {
					if _, err := book.Scene(n); err != nil {
						logger.Warn("Ignoring stale last scene", "editor", name, "scene", n, "err", err)
						ok = false
					}
				}
				if ok {
					opts = append(opts, agentscene.WithInitialScene(n))
				}
			}
		}

		ed, err := agentscene.New(name, opts...)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("editor %q: %w", name, err)
		}
		w.cleanup = append(w.cleanup, ed.Close)
		if metrics != nil {
			w.cleanup = append(w.cleanup, metrics.Observe(name, ed.Store()))
		}
		editors = append(editors, ed)
	}

	ws, err := agentscene.NewWorkspaceOf(editors...)
	if err != nil {
		w.Close()
		return nil, err
	}
	w.Workspace = ws
	return w, nil
}

// activeScenes summarizes the workspace for startup logs.
func activeScenes(ws *agentscene.Workspace) map[string]int {
	out := make(map[string]int)
	for _, name := range ws.Names() {
		if ed, err := ws.Editor(name); err == nil {
			out[name] = ed.ActiveScene()
		}
	}
	return out
}

