package domain

import (
	"context"
	"time"
)

// EventType names a graph mutation.
type EventType string

const (
	EventNodeCreated       EventType = "node_created"
	EventNodeRemoved       EventType = "node_removed"
	EventConnectionCreated EventType = "connection_created"
	EventConnectionRemoved EventType = "connection_removed"
	EventNodeMoved         EventType = "node_moved"
	EventNodeVisibility    EventType = "node_visibility"
	EventSceneActivated    EventType = "scene_activated"
)

// GraphEvent is the change notification emitted by the store for every mutation.
type GraphEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Type       EventType     `json:"type"`
	Node       *NodeInstance `json:"node,omitempty"`
	Connection *Connection   `json:"connection,omitempty"`
	Scene      int           `json:"scene,omitempty"`
}

// Topology reports whether the event changed the connection set.
func (e GraphEvent) Topology() bool {
	return e.Type == EventConnectionCreated || e.Type == EventConnectionRemoved
}

// SceneEvent describes a finished scene transition.
type SceneEvent struct {
	Editor      string        `json:"editor"`
	Scene       int           `json:"scene"`
	Name        string        `json:"name"`
	Connections int           `json:"connections"`
	Duration    time.Duration `json:"duration"`
	Err         error         `json:"-"`
}

// EvaluationEvent describes one evaluation pass.
type EvaluationEvent struct {
	Nodes    int           `json:"nodes"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnSceneEnter  func(context.Context, *SceneEvent)
	OnSceneFailed func(context.Context, *SceneEvent)
	OnEvaluate    func(context.Context, *EvaluationEvent)
}
