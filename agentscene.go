package agentscene

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/agentscene/internal/logging"
	"github.com/aretw0/agentscene/pkg/adapters/camera"
	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/controller"
	"github.com/aretw0/agentscene/pkg/dataflow"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/ports"
	"github.com/aretw0/agentscene/pkg/scene"
	"github.com/aretw0/agentscene/pkg/store"
)

// Editor is the high-level entry point for the library.
// It owns one graph and wires the catalog, store, scene controller and
// evaluator around it.
type Editor struct {
	Name string

	book     *scene.Book
	library  *scene.Library
	registry *catalog.Registry
	store    *store.Store
	ctrl     *controller.Controller
	engine   *dataflow.Engine
	camera   ports.Camera

	locks        *controller.LockSet
	locker       ports.DistributedLocker
	lockTTL      time.Duration
	reject       bool
	initialScene int
	observers    []store.Observer
	hooks        domain.LifecycleHooks
	logger       *slog.Logger

	closeOnce sync.Once
	detach    []func()
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLocker serializes scene transitions across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Editor) {
		e.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed transition locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Editor) {
		e.lockTTL = ttl
	}
}

// WithLockSet shares in-process transition locks between editors.
func WithLockSet(locks *controller.LockSet) Option {
	return func(e *Editor) {
		e.locks = locks
	}
}

// WithCamera replaces the default in-process camera rig.
func WithCamera(cam ports.Camera) Option {
	return func(e *Editor) {
		e.camera = cam
	}
}

// WithBook uses the given book instead of looking the editor up in a library.
func WithBook(book *scene.Book) Option {
	return func(e *Editor) {
		e.book = book
	}
}

// WithLibrary sets the library the editor's book is looked up in (default: the built-in books).
func WithLibrary(lib *scene.Library) Option {
	return func(e *Editor) {
		e.library = lib
	}
}

// WithRegistry replaces the built-in node catalog.
func WithRegistry(reg *catalog.Registry) Option {
	return func(e *Editor) {
		e.registry = reg
	}
}

// WithRejectConcurrent fails a scene load with domain.ErrTransitionInFlight
// while another one runs, instead of queueing it.
func WithRejectConcurrent() Option {
	return func(e *Editor) {
		e.reject = true
	}
}

// WithInitialScene loads scene n while the editor is created.
func WithInitialScene(n int) Option {
	return func(e *Editor) {
		e.initialScene = n
	}
}

// WithObserver subscribes an observer to graph events from the start.
func WithObserver(obs store.Observer) Option {
	return func(e *Editor) {
		e.observers = append(e.observers, obs)
	}
}

// New creates the editor, instantiates every node its book declares and,
// if requested, loads the initial scene.
func New(editor string, opts ...Option) (*Editor, error) {
	e := &Editor{Name: editor}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.logger = e.logger.With("editor", editor)
	if e.registry == nil {
		e.registry = catalog.New()
	}
	if e.camera == nil {
		e.camera = camera.New()
	}
	if e.locks == nil {
		e.locks = controller.NewLockSet()
	}

	if e.book == nil {
		if e.library == nil {
			lib, err := scene.Builtin()
			if err != nil {
				return nil, fmt.Errorf("failed to load built-in books: %w", err)
			}
			e.library = lib
		}
		book, err := e.library.Get(editor)
		if err != nil {
			return nil, err
		}
		e.book = book
	} else if e.Name == "" {
		e.Name = e.book.Editor
	}

	if err := e.book.Validate(e.registry); err != nil {
		return nil, fmt.Errorf("invalid book %q: %w", e.book.Editor, err)
	}

	e.store = store.New(store.WithLogger(e.logger))
	e.engine = dataflow.NewEngine(e.registry, e.store,
		dataflow.WithLogger(e.logger),
		dataflow.WithLifecycleHooks(e.hooks),
	)
	e.detach = append(e.detach, e.engine.Attach())
	for _, obs := range e.observers {
		e.detach = append(e.detach, e.store.Subscribe(obs))
	}

	ctx := context.Background()
	refs, err := controller.Populate(ctx, e.book, e.registry, e.store)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to populate %q: %w", e.book.Editor, err)
	}

	mode := controller.ModeQueue
	if e.reject {
		mode = controller.ModeReject
	}
	ctrlOpts := []controller.Option{
		controller.WithCamera(e.camera),
		controller.WithLockSet(e.locks),
		controller.WithMode(mode),
		controller.WithLifecycleHooks(e.hooks),
		controller.WithLogger(e.logger),
	}
	if e.locker != nil {
		ctrlOpts = append(ctrlOpts, controller.WithLocker(e.locker))
	}
	if e.lockTTL > 0 {
		ctrlOpts = append(ctrlOpts, controller.WithLockTTL(e.lockTTL))
	}
	e.ctrl = controller.New(e.book, e.store, refs, ctrlOpts...)

	if _, err := e.engine.Process(ctx); err != nil {
		e.logger.Warn("Initial evaluation failed", "err", err)
	}

	if e.initialScene > 0 {
		if _, err := e.ctrl.LoadScene(ctx, e.initialScene); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

// Close detaches the evaluator and every observer registered through options.
func (e *Editor) Close() {
	e.closeOnce.Do(func() {
		for _, fn := range e.detach {
			fn()
		}
	})
}

// Book returns the scene book of the editor.
func (e *Editor) Book() *scene.Book {
	return e.book
}

// Scenes lists the presets in index order.
func (e *Editor) Scenes() []domain.ScenePreset {
	return e.book.Scenes
}

// Registry returns the node catalog.
func (e *Editor) Registry() *catalog.Registry {
	return e.registry
}

// Camera returns the camera collaborator.
func (e *Editor) Camera() ports.Camera {
	return e.camera
}

// LoadScene transitions the graph to scene n.
func (e *Editor) LoadScene(ctx context.Context, n int) (*domain.SceneResult, error) {
	return e.ctrl.LoadScene(ctx, n)
}

// ActiveScene returns the active scene index, 0 before the first load.
func (e *Editor) ActiveScene() int {
	return e.ctrl.ActiveScene()
}

// State names the current scene, or "uninitialized".
func (e *Editor) State() string {
	return e.ctrl.State()
}

// NodeID resolves a book ref to the live node id.
func (e *Editor) NodeID(ref string) (string, bool) {
	return e.ctrl.NodeID(ref)
}

// Refs maps live node ids back to the refs the book declared them under.
func (e *Editor) Refs() map[string]string {
	out := make(map[string]string, len(e.book.Nodes))
	for _, decl := range e.book.Nodes {
		if id, ok := e.NodeID(decl.Ref); ok {
			out[id] = decl.Ref
		}
	}
	return out
}

// CreateNode instantiates a node from the catalog and adds it to the graph.
func (e *Editor) CreateNode(ctx context.Context, kind domain.NodeKind, params map[string]any) (*domain.NodeInstance, error) {
	node, err := e.registry.CreateNode(kind, params)
	if err != nil {
		return nil, err
	}
	if err := e.store.AddNode(ctx, node); err != nil {
		return nil, err
	}
	return node.Clone(), nil
}

// CreateFromMenu instantiates the node behind a context menu label.
func (e *Editor) CreateFromMenu(ctx context.Context, label string) (*domain.NodeInstance, error) {
	item, ok := catalog.FindMenuItem(label)
	if !ok {
		return nil, fmt.Errorf("unknown menu item %q", label)
	}
	return e.CreateNode(ctx, item.Kind, item.Params)
}

// RemoveNode deletes a node and every connection touching it. Nodes declared
// by the scene book are refused with ErrNodeDeclared, since scene loads
// resolve them by ref.
func (e *Editor) RemoveNode(ctx context.Context, id string) error {
	if ref, ok := e.ctrl.Declares(id); ok {
		return fmt.Errorf("%w: %s (%s)", domain.ErrNodeDeclared, ref, id)
	}
	return e.store.RemoveNode(ctx, id)
}

// Connect adds a connection and returns its id.
func (e *Editor) Connect(ctx context.Context, spec domain.ConnectionSpec) (string, error) {
	return e.store.AddConnection(ctx, spec)
}

// Disconnect removes a connection. It reports whether one was removed.
func (e *Editor) Disconnect(ctx context.Context, id string) bool {
	return e.store.RemoveConnection(ctx, id)
}

// Snapshot returns a consistent copy of the graph.
func (e *Editor) Snapshot() *domain.GraphSnapshot {
	return e.store.Snapshot()
}

// Subscribe registers an observer of graph events.
func (e *Editor) Subscribe(obs store.Observer) (unsubscribe func()) {
	return e.store.Subscribe(obs)
}

// Store exposes the underlying graph store.
func (e *Editor) Store() *store.Store {
	return e.store
}

// Outputs returns the last evaluated outputs of a node.
func (e *Editor) Outputs(nodeID string) (map[string]any, bool) {
	return e.engine.Outputs(nodeID)
}

// Evaluation returns the last evaluation result and its error.
func (e *Editor) Evaluation() (dataflow.Result, error) {
	return e.engine.Result()
}

// Evaluate forces a fresh evaluation pass.
func (e *Editor) Evaluate(ctx context.Context) (dataflow.Result, error) {
	return e.engine.Process(ctx)
}
