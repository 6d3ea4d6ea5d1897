package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/agentscene/internal/logging"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/google/uuid"
)

// Observer receives change notifications. It is the store's onTopologyChanged hook.
type Observer func(ctx context.Context, evt domain.GraphEvent)

// Store is an in-memory graph guarded by a RWMutex.
type Store struct {
	mu     sync.RWMutex
	nodes  map[string]*domain.NodeInstance
	order  []string
	conns  []domain.Connection
	active int

	// emitMu keeps deliveries of consecutive transactions from interleaving.
	emitMu    sync.Mutex
	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObs   int

	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the connection id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		nodes:     make(map[string]*domain.NodeInstance),
		observers: make(map[int]Observer),
		newID:     uuid.NewString,
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(obs Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = obs
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// Update runs fn as one transaction. Whatever fn applied before returning an
// error stays applied, and its events are still delivered.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	tx := &Tx{store: s}
	err := s.apply(tx, fn)
	s.deliver(ctx, tx.events)
	return err
}

// apply runs fn under the write lock. A panic in fn releases the lock and
// discards the pending events before propagating.
func (s *Store) apply(tx *Tx, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer func() {
		tx.done = true
		s.mu.Unlock()
	}()
	return fn(tx)
}

func (s *Store) deliver(ctx context.Context, events []domain.GraphEvent) {
	if len(events) == 0 {
		return
	}

	s.obsMu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if obs, ok := s.observers[i]; ok {
			observers = append(observers, obs)
		}
	}
	s.obsMu.RUnlock()

	for _, evt := range events {
		for _, obs := range observers {
			obs(ctx, evt)
		}
	}
}

// AddNode registers a node by id.
func (s *Store) AddNode(ctx context.Context, node *domain.NodeInstance) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.AddNode(node)
	})
}

// RemoveNode removes a node and every connection referencing it.
func (s *Store) RemoveNode(ctx context.Context, id string) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.RemoveNode(id)
	})
}

// AddConnection validates and stores a connection, returning its fresh id.
func (s *Store) AddConnection(ctx context.Context, spec domain.ConnectionSpec) (string, error) {
	var id string
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.AddConnection(spec)
		return err
	})
	return id, err
}

// RemoveConnection deletes a connection. Unknown ids are ignored.
func (s *Store) RemoveConnection(ctx context.Context, id string) bool {
	var removed bool
	_ = s.Update(ctx, func(tx *Tx) error {
		removed = tx.RemoveConnection(id)
		return nil
	})
	return removed
}

// ClearConnections removes every connection in one step and returns how many were removed.
func (s *Store) ClearConnections(ctx context.Context) int {
	var n int
	_ = s.Update(ctx, func(tx *Tx) error {
		n = tx.ClearConnections()
		return nil
	})
	return n
}

// SetPosition moves a node.
func (s *Store) SetPosition(ctx context.Context, id string, pos domain.Vec3) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.SetPosition(id, pos)
	})
}

// Snapshot copies the whole graph.
func (s *Store) Snapshot() *domain.GraphSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() *domain.GraphSnapshot {
	snap := &domain.GraphSnapshot{
		Nodes:       make([]*domain.NodeInstance, 0, len(s.order)),
		Connections: append([]domain.Connection{}, s.conns...),
		ActiveScene: s.active,
	}
	for _, id := range s.order {
		snap.Nodes = append(snap.Nodes, s.nodes[id].Clone())
	}
	return snap
}

// Node returns a copy of one node.
func (s *Store) Node(id string) (*domain.NodeInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n.Clone(), nil
}

// Connections copies the current connection set.
func (s *Store) Connections() []domain.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Connection{}, s.conns...)
}

// ActiveScene returns the index of the last completed scene load, or 0.
func (s *Store) ActiveScene() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}
