package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/agentscene/internal/logging"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/store"
	backend "github.com/redis/go-redis/v9"
)

// Journal mirrors an editor's graph events into Redis.
// Every event is published on the editor's channel and the active scene is
// kept under a key so that a restarted replica can resume it.
type Journal struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// JournalOption configures the Journal.
type JournalOption func(*Journal)

// WithTTL sets the expiration of the active scene key.
func WithTTL(ttl time.Duration) JournalOption {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) JournalOption {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// WithLogger configures a logger for the Journal.
func WithLogger(logger *slog.Logger) JournalOption {
	return func(j *Journal) {
		j.logger = logger
	}
}

// NewJournal creates a journal over an existing client.
func NewJournal(client backend.UniversalClient, opts ...JournalOption) *Journal {
	j := &Journal{
		client: client,
		prefix: DefaultPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Channel is the pub/sub channel carrying the editor's events.
func (j *Journal) Channel(editor string) string {
	return j.prefix + editor + ":events"
}

func (j *Journal) sceneKey(editor string) string {
	return j.prefix + editor + ":scene"
}

// Observer returns a store observer recording events for the editor.
// Redis failures are logged and never reach the store.
func (j *Journal) Observer(editor string) store.Observer {
	return func(ctx context.Context, evt domain.GraphEvent) {
		if err := j.Record(ctx, editor, evt); err != nil {
			j.logger.Warn("Journal write failed", "editor", editor, "type", evt.Type, "err", err)
		}
	}
}

// Record publishes one event.
func (j *Journal) Record(ctx context.Context, editor string, evt domain.GraphEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := j.client.TxPipeline()
	pipe.Publish(ctx, j.Channel(editor), payload)
	if evt.Type == domain.EventSceneActivated {
		pipe.Set(ctx, j.sceneKey(editor), evt.Scene, j.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis journal: %w", err)
	}
	return nil
}

// LastScene returns the last scene recorded for the editor, or false if none is known.
func (j *Journal) LastScene(ctx context.Context, editor string) (int, bool, error) {
	val, err := j.client.Get(ctx, j.sceneKey(editor)).Result()
	if errors.Is(err, backend.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis journal: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt scene value %q: %w", val, err)
	}
	return n, true, nil
}

// Subscribe streams the editor's events until ctx ends. Malformed messages are skipped.
func (j *Journal) Subscribe(ctx context.Context, editor string) (<-chan domain.GraphEvent, error) {
	sub := j.client.Subscribe(ctx, j.Channel(editor))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan domain.GraphEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt domain.GraphEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					j.logger.Debug("Skipping malformed journal message", "err", err)
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
