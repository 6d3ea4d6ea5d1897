package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNodeNotFound is returned when a node id is not present in the store.
	ErrNodeNotFound = errors.New("node not found")

	// ErrSceneNotFound is returned when a scene index is not defined by the book.
	ErrSceneNotFound = errors.New("scene not found")

	// ErrTransitionInFlight is returned in reject mode when another scene load holds the editor.
	ErrTransitionInFlight = errors.New("scene transition already in flight")

	// ErrNodeDeclared is returned when removing a node the scene book declares.
	ErrNodeDeclared = errors.New("node is declared by the scene book")

	// ErrUnknownEditor is returned when no book is registered under the requested editor name.
	ErrUnknownEditor = errors.New("unknown editor")
)

// InvalidKindError reports an unrecognized node kind.
type InvalidKindError struct {
	Kind string
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid node kind %q", e.Kind)
}

// DuplicateIDError reports a node id collision in the store.
// Ids are generated, so this indicates a programming error.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate node id %q", e.ID)
}

// InvalidConnectionError reports a connection that breaks port or direction rules.
type InvalidConnectionError struct {
	Spec   ConnectionSpec
	Reason string
}

func (e *InvalidConnectionError) Error() string {
	return fmt.Sprintf("invalid connection %s: %s", e.Spec, e.Reason)
}

// SceneLoadError reports a failed scene transition. Steps already applied are kept.
type SceneLoadError struct {
	Editor string
	Scene  int
	Step   string
	Err    error
}

func (e *SceneLoadError) Error() string {
	return fmt.Sprintf("load scene %d of %q failed at %s: %v", e.Scene, e.Editor, e.Step, e.Err)
}

func (e *SceneLoadError) Unwrap() error {
	return e.Err
}

// CyclicGraphError reports nodes that could not be ordered because they depend on each other.
type CyclicGraphError struct {
	Nodes []string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("graph contains a cycle through %s", strings.Join(e.Nodes, ", "))
}
