package agentscene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/agentscene/pkg/controller"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/scene"
)

// Workspace holds one Editor per book of a library.
// Editors share one in-process lock set.
type Workspace struct {
	mu      sync.RWMutex
	editors map[string]*Editor
	names   []string
}

// NewWorkspace creates an editor for every book in lib. opts apply to each of them.
func NewWorkspace(lib *scene.Library, opts ...Option) (*Workspace, error) {
	w := &Workspace{editors: make(map[string]*Editor)}
	locks := controller.NewLockSet()

	for _, name := range lib.Editors() {
		editorOpts := append([]Option{WithLibrary(lib), WithLockSet(locks)}, opts...)
		ed, err := New(name, editorOpts...)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("editor %q: %w", name, err)
		}
		w.editors[name] = ed
		w.names = append(w.names, name)
	}
	sort.Strings(w.names)
	return w, nil
}

// NewWorkspaceOf groups already built editors.
func NewWorkspaceOf(editors ...*Editor) (*Workspace, error) {
	w := &Workspace{editors: make(map[string]*Editor)}
	for _, ed := range editors {
		if _, dup := w.editors[ed.Name]; dup {
			return nil, errors.New("duplicate editor " + ed.Name)
		}
		w.editors[ed.Name] = ed
		w.names = append(w.names, ed.Name)
	}
	sort.Strings(w.names)
	return w, nil
}

// Editor returns the named editor.
func (w *Workspace) Editor(name string) (*Editor, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ed, ok := w.editors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEditor, name)
	}
	return ed, nil
}

// Names lists the editors in lexical order.
func (w *Workspace) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.names...)
}

// Close closes every editor.
func (w *Workspace) Close() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, ed := range w.editors {
		ed.Close()
	}
}
