package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/agentscene/internal/logging"
	"github.com/aretw0/agentscene/pkg/adapters/camera"
	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/ports"
	"github.com/aretw0/agentscene/pkg/scene"
	"github.com/aretw0/agentscene/pkg/store"
)

// Mode decides what happens to a load request while another one runs.
type Mode string

const (
	// ModeQueue makes the request wait its turn.
	ModeQueue Mode = "queue"
	// ModeReject fails the request with domain.ErrTransitionInFlight.
	ModeReject Mode = "reject"
)

// DefaultLockTTL bounds how long a distributed transition lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Controller drives the scene state machine of one editor.
type Controller struct {
	book  *scene.Book
	store *store.Store
	refs  map[string]string

	camera  ports.Camera
	locks   *LockSet
	locker  ports.DistributedLocker
	lockTTL time.Duration
	mode    Mode
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithCamera sets the camera collaborator.
func WithCamera(cam ports.Camera) Option {
	return func(c *Controller) {
		c.camera = cam
	}
}

// WithLockSet shares in-process transition locks with other controllers.
func WithLockSet(locks *LockSet) Option {
	return func(c *Controller) {
		c.locks = locks
	}
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *Controller) {
		c.locker = locker
	}
}

// WithLockTTL sets the TTL requested from the distributed locker.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		c.lockTTL = ttl
	}
}

// WithMode selects queueing or rejecting of concurrent requests.
func WithMode(mode Mode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Populate creates every node the book declares and adds it to the store.
// It returns the ref to node id mapping the controller needs.
func Populate(ctx context.Context, book *scene.Book, reg *catalog.Registry, st *store.Store) (map[string]string, error) {
	refs := make(map[string]string, len(book.Nodes))
	err := st.Update(ctx, func(tx *store.Tx) error {
		for _, decl := range book.Nodes {
			node, err := reg.CreateNode(decl.Kind, decl.Params)
			if err != nil {
				return fmt.Errorf("node %q: %w", decl.Ref, err)
			}
			if err := tx.AddNode(node); err != nil {
				return fmt.Errorf("node %q: %w", decl.Ref, err)
			}
			refs[decl.Ref] = node.ID
		}
		return nil
	})
	return refs, err
}

// New creates a controller for the book. refs maps every declared ref to a live node id.
func New(book *scene.Book, st *store.Store, refs map[string]string, opts ...Option) *Controller {
	c := &Controller{
		book:    book,
		store:   st,
		refs:    refs,
		camera:  camera.New(),
		locks:   NewLockSet(),
		lockTTL: DefaultLockTTL,
		mode:    ModeQueue,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("editor", book.Editor)
	return c
}

// Book returns the scene book driving this controller.
func (c *Controller) Book() *scene.Book {
	return c.book
}

// NodeID resolves a ref to the live node id.
func (c *Controller) NodeID(ref string) (string, bool) {
	id, ok := c.refs[ref]
	return id, ok
}

// Declares reports the ref under which the book declares the node id.
func (c *Controller) Declares(id string) (string, bool) {
	for ref, nodeID := range c.refs {
		if nodeID == id {
			return ref, true
		}
	}
	return "", false
}

// ActiveScene returns the active scene index, 0 while uninitialized.
func (c *Controller) ActiveScene() int {
	return c.store.ActiveScene()
}

// State names the current state of the machine.
func (c *Controller) State() string {
	active := c.store.ActiveScene()
	if active == 0 {
		return "uninitialized"
	}
	if p, err := c.book.Scene(active); err == nil {
		return p.Name
	}
	return fmt.Sprintf("scene %d", active)
}

// LoadScene transitions the graph to scene n. On failure the graph keeps
// whatever the transition had applied so far; loading any scene again recovers.
func (c *Controller) LoadScene(ctx context.Context, n int) (*domain.SceneResult, error) {
	preset, err := c.book.Scene(n)
	if err != nil {
		return nil, c.fail(ctx, n, "", 0, &domain.SceneLoadError{Editor: c.book.Editor, Scene: n, Step: "lookup", Err: err})
	}

	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	start := time.Now()
	result := &domain.SceneResult{Editor: c.book.Editor, Scene: n, Name: preset.Name}
	err = c.store.Update(ctx, func(tx *store.Tx) error {
		return c.transition(ctx, tx, preset, result)
	})
	if err != nil {
		return nil, c.fail(ctx, n, preset.Name, time.Since(start), err)
	}

	evt := &domain.SceneEvent{
		Editor:      c.book.Editor,
		Scene:       n,
		Name:        preset.Name,
		Connections: len(result.Connections),
		Duration:    time.Since(start),
	}
	c.logger.Info("Scene loaded", "scene", n, "name", preset.Name, "connections", evt.Connections, "duration", evt.Duration)
	if c.hooks.OnSceneEnter != nil {
		c.hooks.OnSceneEnter(ctx, evt)
	}
	return result, nil
}

func (c *Controller) transition(ctx context.Context, tx *store.Tx, preset *domain.ScenePreset, result *domain.SceneResult) error {
	loadErr := func(step string, err error) error {
		return &domain.SceneLoadError{Editor: c.book.Editor, Scene: preset.Index, Step: step, Err: err}
	}

	before := tx.Snapshot()

	// 1. Tear down.
	tx.ClearConnections()

	// 2. Build; the first invalid connection aborts without rollback.
	for _, ref := range preset.Connections {
		spec, err := c.resolve(ref)
		if err != nil {
			return loadErr("connect", err)
		}
		if _, err := tx.AddConnection(spec); err != nil {
			return loadErr("connect", err)
		}
	}

	// 3. Layout.
	for _, ref := range sortedRefs(preset.Positions) {
		id, ok := c.refs[ref]
		if !ok {
			continue
		}
		if err := tx.SetPosition(id, preset.Positions[ref]); err != nil {
			c.logger.Warn("Skipping position of a removed node", "ref", ref, "node_id", id)
		}
	}

	// 4. Visibility.
	for _, ref := range sortedRefs(c.refs) {
		if err := tx.SetVisible(c.refs[ref], !preset.IsHidden(ref)); err != nil {
			c.logger.Debug("Skipping visibility of a removed node", "ref", ref)
		}
	}

	// 5. Camera.
	if preset.Camera != nil {
		if err := c.camera.Place(ctx, *preset.Camera); err != nil {
			return loadErr("camera", err)
		}
		result.Camera = *preset.Camera
	} else {
		placement, err := c.camera.FitAll(ctx, tx.VisibleNodes())
		if err != nil {
			return loadErr("camera", err)
		}
		result.Camera = placement
		result.Fitted = true
	}

	// 6. Commit the state change.
	tx.SetActiveScene(preset.Index)
	result.Connections = tx.Connections()
	result.Diff = domain.Diff(before, tx.Snapshot())
	return nil
}

func (c *Controller) resolve(ref domain.ConnectionRef) (domain.ConnectionSpec, error) {
	spec := domain.ConnectionSpec{
		SourceNodeID: c.refs[ref.FromNode],
		SourcePort:   ref.FromPort,
		TargetNodeID: c.refs[ref.ToNode],
		TargetPort:   ref.ToPort,
	}
	for _, r := range []string{ref.FromNode, ref.ToNode} {
		if _, ok := c.refs[r]; !ok {
			return spec, &domain.InvalidConnectionError{Spec: spec, Reason: fmt.Sprintf("unknown node ref %q", r)}
		}
	}
	return spec, nil
}

func (c *Controller) lock(ctx context.Context) (func(), error) {
	key := "scene:" + c.book.Editor
	unlock, err := c.locks.Lock(ctx, key, c.mode != ModeReject)
	if err != nil {
		return nil, err
	}
	if c.locker == nil {
		return unlock, nil
	}

	remote, err := c.locker.Lock(ctx, key, c.lockTTL)
	if err != nil {
		unlock()
		return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	return func() {
		if err := remote(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("Failed to release distributed lock (will expire via TTL)", "err", err)
		}
		unlock()
	}, nil
}

func (c *Controller) fail(ctx context.Context, n int, name string, d time.Duration, err error) error {
	c.logger.Error("Scene load failed", "scene", n, "err", err)
	if c.hooks.OnSceneFailed != nil {
		c.hooks.OnSceneFailed(ctx, &domain.SceneEvent{
			Editor:   c.book.Editor,
			Scene:    n,
			Name:     name,
			Duration: d,
			Err:      err,
		})
	}
	var loadErr *domain.SceneLoadError
	if errors.As(err, &loadErr) {
		return err
	}
	return &domain.SceneLoadError{Editor: c.book.Editor, Scene: n, Step: "transition", Err: err}
}

func sortedRefs[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
