package store

import (
	"fmt"

	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
)

// Tx is a handle on the store valid only inside Update.
type Tx struct {
	store  *Store
	events []domain.GraphEvent
	done   bool
}

func (tx *Tx) check() {
	if tx.done {
		panic("store: transaction used after Update returned")
	}
}

func (tx *Tx) emit(evt domain.GraphEvent) {
	evt.Timestamp = tx.store.now()
	tx.events = append(tx.events, evt)
}

// AddNode registers a node. The store keeps its own copy.
func (tx *Tx) AddNode(node *domain.NodeInstance) error {
	tx.check()
	s := tx.store
	if _, exists := s.nodes[node.ID]; exists {
		return &domain.DuplicateIDError{ID: node.ID}
	}

	n := node.Clone()
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	tx.emit(domain.GraphEvent{Type: domain.EventNodeCreated, Node: n.Clone()})
	return nil
}

// RemoveNode removes the node after removing every connection that references it.
func (tx *Tx) RemoveNode(id string) error {
	tx.check()
	s := tx.store
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}

	kept := s.conns[:0]
	for _, c := range s.conns {
		if c.Touches(id) {
			removed := c
			tx.emit(domain.GraphEvent{Type: domain.EventConnectionRemoved, Connection: &removed})
			continue
		}
		kept = append(kept, c)
	}
	s.conns = kept

	delete(s.nodes, id)
	for i, nid := range s.order {
		if nid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	tx.emit(domain.GraphEvent{Type: domain.EventNodeRemoved, Node: n.Clone()})
	return nil
}

// AddConnection checks that the source is an output and the target an input
// with compatible sockets, then stores the link under a fresh id.
func (tx *Tx) AddConnection(spec domain.ConnectionSpec) (string, error) {
	tx.check()
	if err := tx.validate(spec); err != nil {
		return "", err
	}

	c := domain.Connection{ID: tx.store.newID(), ConnectionSpec: spec}
	tx.store.conns = append(tx.store.conns, c)
	tx.emit(domain.GraphEvent{Type: domain.EventConnectionCreated, Connection: &c})
	return c.ID, nil
}

func (tx *Tx) validate(spec domain.ConnectionSpec) error {
	s := tx.store
	invalid := func(format string, args ...any) error {
		return &domain.InvalidConnectionError{Spec: spec, Reason: fmt.Sprintf(format, args...)}
	}

	src, ok := s.nodes[spec.SourceNodeID]
	if !ok {
		return invalid("unknown source node")
	}
	dst, ok := s.nodes[spec.TargetNodeID]
	if !ok {
		return invalid("unknown target node")
	}

	out, ok := src.Port(spec.SourcePort, domain.DirectionOut)
	if !ok {
		if src.HasPort(spec.SourcePort) {
			return invalid("source port %q of %s is an input", spec.SourcePort, src.Kind)
		}
		return invalid("%s has no port %q", src.Kind, spec.SourcePort)
	}
	inp, ok := dst.Port(spec.TargetPort, domain.DirectionIn)
	if !ok {
		if dst.HasPort(spec.TargetPort) {
			return invalid("target port %q of %s is an output", spec.TargetPort, dst.Kind)
		}
		return invalid("%s has no port %q", dst.Kind, spec.TargetPort)
	}

	if !catalog.Compatible(out.Socket, inp.Socket) {
		return invalid("socket %q cannot feed socket %q", out.Socket, inp.Socket)
	}
	return nil
}

// RemoveConnection deletes one connection. It reports false when the id is unknown.
func (tx *Tx) RemoveConnection(id string) bool {
	tx.check()
	s := tx.store
	for i, c := range s.conns {
		if c.ID == id {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			tx.emit(domain.GraphEvent{Type: domain.EventConnectionRemoved, Connection: &c})
			return true
		}
	}
	return false
}

// ClearConnections removes every connection.
func (tx *Tx) ClearConnections() int {
	tx.check()
	s := tx.store
	n := len(s.conns)
	for i := range s.conns {
		c := s.conns[i]
		tx.emit(domain.GraphEvent{Type: domain.EventConnectionRemoved, Connection: &c})
	}
	s.conns = nil
	return n
}

// SetPosition assigns a coordinate. No bounds are checked.
func (tx *Tx) SetPosition(id string, pos domain.Vec3) error {
	tx.check()
	n, ok := tx.store.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if n.Position == pos {
		return nil
	}
	n.Position = pos
	tx.emit(domain.GraphEvent{Type: domain.EventNodeMoved, Node: n.Clone()})
	return nil
}

// SetVisible shows or hides a node. Hidden nodes stay fully connectable.
func (tx *Tx) SetVisible(id string, visible bool) error {
	tx.check()
	n, ok := tx.store.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if n.Visible == visible {
		return nil
	}
	n.Visible = visible
	tx.emit(domain.GraphEvent{Type: domain.EventNodeVisibility, Node: n.Clone()})
	return nil
}

// SetActiveScene records the scene the graph now shows.
func (tx *Tx) SetActiveScene(index int) {
	tx.check()
	tx.store.active = index
	tx.emit(domain.GraphEvent{Type: domain.EventSceneActivated, Scene: index})
}

// ActiveScene returns the scene recorded so far.
func (tx *Tx) ActiveScene() int {
	tx.check()
	return tx.store.active
}

// Snapshot copies the graph as this transaction sees it.
func (tx *Tx) Snapshot() *domain.GraphSnapshot {
	tx.check()
	return tx.store.snapshot()
}

// Node returns a copy of the node.
func (tx *Tx) Node(id string) (*domain.NodeInstance, bool) {
	tx.check()
	n, ok := tx.store.nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// VisibleNodes returns copies of the shown nodes in insertion order.
func (tx *Tx) VisibleNodes() []*domain.NodeInstance {
	tx.check()
	var out []*domain.NodeInstance
	for _, id := range tx.store.order {
		if n := tx.store.nodes[id]; n.Visible {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Connections copies the connection set as it stands inside the transaction.
func (tx *Tx) Connections() []domain.Connection {
	tx.check()
	return append([]domain.Connection{}, tx.store.conns...)
}
