package catalog

import (
	"fmt"
	"sync"

	"github.com/aretw0/agentscene/pkg/domain"
)

// DefaultSocket is the only compatibility tag in use today.
const DefaultSocket domain.Socket = "socket"

// Rule computes a node's outputs from the values arriving on its input ports.
// Rules must be pure and total.
type Rule func(node *domain.NodeInstance, inputs map[string][]any) map[string]any

// Decoder turns creation params into typed controls and a display name.
type Decoder func(params map[string]any) (domain.Controls, string, error)

// KindSpec is the catalog entry for one node kind.
type KindSpec struct {
	Kind    domain.NodeKind
	Title   string
	Inputs  []domain.PortSpec
	Outputs []domain.PortSpec
	Decode  Decoder
	Rule    Rule
}

// Ports returns every port of the kind, inputs first.
func (s *KindSpec) Ports() []domain.PortSpec {
	out := make([]domain.PortSpec, 0, len(s.Inputs)+len(s.Outputs))
	out = append(out, s.Inputs...)
	return append(out, s.Outputs...)
}

// Registry manages the available node kinds and sockets.
type Registry struct {
	mu      sync.RWMutex
	kinds   map[domain.NodeKind]*KindSpec
	order   []domain.NodeKind
	sockets map[domain.Socket]struct{}
	newID   func() string
}

// NewRegistry creates an empty registry that knows only DefaultSocket.
// Most callers want New, which also registers the built-in kinds.
func NewRegistry() *Registry {
	return &Registry{
		kinds:   make(map[domain.NodeKind]*KindSpec),
		sockets: map[domain.Socket]struct{}{DefaultSocket: {}},
		newID:   newNodeID,
	}
}

// RegisterSocket declares an additional compatibility tag.
func (r *Registry) RegisterSocket(s domain.Socket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sockets[s] = struct{}{}
}

// Register adds a kind to the registry.
// If a kind with the same name exists, it is overwritten.
func (r *Registry) Register(spec KindSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range spec.Ports() {
		if _, ok := r.sockets[p.Socket]; !ok {
			return fmt.Errorf("kind %s: port %s uses unregistered socket %q", spec.Kind, p.Name, p.Socket)
		}
	}
	if _, exists := r.kinds[spec.Kind]; !exists {
		r.order = append(r.order, spec.Kind)
	}
	s := spec
	r.kinds[spec.Kind] = &s
	return nil
}

// Spec looks up a kind. Unknown kinds yield *domain.InvalidKindError.
func (r *Registry) Spec(kind domain.NodeKind) (*KindSpec, error) {
	r.mu.RLock()
	spec, ok := r.kinds[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.InvalidKindError{Kind: string(kind)}
	}
	return spec, nil
}

// Kinds lists registered kinds in registration order.
func (r *Registry) Kinds() []domain.NodeKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.NodeKind(nil), r.order...)
}

// Compatible reports whether an output carrying a may feed an input carrying b.
func Compatible(a, b domain.Socket) bool {
	return a == b
}
