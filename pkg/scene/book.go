package scene

import (
	"fmt"
	"sort"

	"github.com/aretw0/agentscene/pkg/domain"
)

// NodeDecl declares one node of the editor under a ref.
type NodeDecl struct {
	Ref    string          `json:"ref"`
	Kind   domain.NodeKind `json:"kind"`
	Params map[string]any  `json:"params,omitempty"`
}

// Book is the static scene configuration of one editor.
type Book struct {
	Editor      string               `json:"editor"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Nodes       []NodeDecl           `json:"nodes"`
	Scenes      []domain.ScenePreset `json:"scenes"`
}

// Scene returns the preset with the given index.
func (b *Book) Scene(index int) (*domain.ScenePreset, error) {
	for i := range b.Scenes {
		if b.Scenes[i].Index == index {
			return &b.Scenes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d in %q", domain.ErrSceneNotFound, index, b.Editor)
}

// Indices lists the defined scene indices in ascending order.
func (b *Book) Indices() []int {
	out := make([]int, 0, len(b.Scenes))
	for _, s := range b.Scenes {
		out = append(out, s.Index)
	}
	sort.Ints(out)
	return out
}

// Decl returns the declaration of a ref.
func (b *Book) Decl(ref string) (NodeDecl, bool) {
	for _, n := range b.Nodes {
		if n.Ref == ref {
			return n, true
		}
	}
	return NodeDecl{}, false
}
