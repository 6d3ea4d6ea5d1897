package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeKind is the category of a node. It fixes the node's ports and evaluation rule.
type NodeKind string

const (
	KindToolSource      NodeKind = "tool_source"
	KindKnowledgeSource NodeKind = "knowledge_source"
	KindMemorySource    NodeKind = "memory_source"
	KindModel           NodeKind = "model"
	KindAgent           NodeKind = "agent"
	KindDocument        NodeKind = "document"
)

// Kinds lists every node kind in catalog order.
var Kinds = []NodeKind{
	KindToolSource,
	KindKnowledgeSource,
	KindMemorySource,
	KindModel,
	KindAgent,
	KindDocument,
}

// ParseKind resolves a wire name into a NodeKind.
func ParseKind(s string) (NodeKind, error) {
	k := NodeKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", &InvalidKindError{Kind: s}
}

// Direction tells whether a port receives or emits values.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Socket is a compatibility tag. Two ports connect only when their sockets match.
type Socket string

// PortSpec declares one port of a node kind.
type PortSpec struct {
	Name      string    `json:"name" yaml:"name"`
	Direction Direction `json:"direction" yaml:"direction"`
	Label     string    `json:"label" yaml:"label"`
	Socket    Socket    `json:"socket" yaml:"socket"`
}

// Vec3 is a position in canvas space. Z is zero on a flat canvas.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// NodeInstance is a live node owned by a graph store.
type NodeInstance struct {
	ID          string   `json:"id"`
	Kind        NodeKind `json:"kind"`
	DisplayName string   `json:"display_name"`
	Controls    Controls `json:"controls"`

	// Inputs and Outputs are copied from the kind's PortSpec at creation.
	Inputs  []PortSpec `json:"inputs"`
	Outputs []PortSpec `json:"outputs"`

	Position Vec3 `json:"position"`
	Visible  bool `json:"visible"`
}

// UnmarshalJSON decodes the controls into the concrete type of the node's kind.
func (n *NodeInstance) UnmarshalJSON(data []byte) error {
	type plain NodeInstance
	aux := struct {
		*plain
		Controls json.RawMessage `json:"controls"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var c Controls
	switch n.Kind {
	case KindToolSource:
		var tc ToolControls
		c = &tc
	case KindModel:
		var mc ModelControls
		c = &mc
	case KindDocument:
		var dc DocumentControls
		c = &dc
	default:
		n.Controls = NoControls{}
		return nil
	}
	if len(aux.Controls) > 0 && string(aux.Controls) != "null" {
		if err := json.Unmarshal(aux.Controls, c); err != nil {
			return fmt.Errorf("decode %s controls: %w", n.Kind, err)
		}
	}
	switch v := c.(type) {
	case *ToolControls:
		n.Controls = *v
	case *ModelControls:
		n.Controls = *v
	case *DocumentControls:
		n.Controls = *v
	}
	return nil
}

// Port looks up a port by name in the given direction.
func (n *NodeInstance) Port(name string, dir Direction) (PortSpec, bool) {
	ports := n.Inputs
	if dir == DirectionOut {
		ports = n.Outputs
	}
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// HasPort reports whether the node declares a port with that name in either direction.
func (n *NodeInstance) HasPort(name string) bool {
	if _, ok := n.Port(name, DirectionIn); ok {
		return true
	}
	_, ok := n.Port(name, DirectionOut)
	return ok
}

// Clone returns a copy that shares no slices with n.
func (n *NodeInstance) Clone() *NodeInstance {
	c := *n
	c.Inputs = append([]PortSpec(nil), n.Inputs...)
	c.Outputs = append([]PortSpec(nil), n.Outputs...)
	return &c
}

// ConnectionSpec is a connection request before the store assigns an id.
type ConnectionSpec struct {
	SourceNodeID string `json:"source_node_id"`
	SourcePort   string `json:"source_port"`
	TargetNodeID string `json:"target_node_id"`
	TargetPort   string `json:"target_port"`
}

func (s ConnectionSpec) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", s.SourceNodeID, s.SourcePort, s.TargetNodeID, s.TargetPort)
}

// Connection is a directed link from an output port to an input port.
type Connection struct {
	ID string `json:"id"`
	ConnectionSpec
}

// Touches reports whether the connection references the node on either end.
func (c Connection) Touches(nodeID string) bool {
	return c.SourceNodeID == nodeID || c.TargetNodeID == nodeID
}
