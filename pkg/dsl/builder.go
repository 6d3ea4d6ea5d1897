package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/scene"
)

// Params are the creation parameters of a node.
type Params map[string]any

// Builder assembles a scene book.
type Builder struct {
	book   scene.Book
	scenes []*SceneBuilder
	errs   []error
}

// New creates a builder for the named editor.
func New(editor string) *Builder {
	return &Builder{
		book: scene.Book{Editor: editor},
	}
}

// Title sets the human title of the editor.
func (b *Builder) Title(title string) *Builder {
	b.book.Title = title
	return b
}

// Describe sets the editor description.
func (b *Builder) Describe(text string) *Builder {
	b.book.Description = text
	return b
}

// Scene starts a new scene. Scenes are kept in the order they are declared.
func (b *Builder) Scene(index int, name string) *SceneBuilder {
	sb := newSceneBuilder(b, index, name)
	b.scenes = append(b.scenes, sb)
	return sb
}

// Build validates and returns the book. A nil registry validates against the built-in catalog.
func (b *Builder) Build(reg *catalog.Registry) (*scene.Book, error) {
	if reg == nil {
		reg = catalog.New()
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("failed to build book %q: %w", b.book.Editor, errors.Join(b.errs...))
	}

	book := b.book
	book.Nodes = append([]scene.NodeDecl(nil), b.book.Nodes...)
	book.Scenes = nil
	for _, sb := range b.scenes {
		book.Scenes = append(book.Scenes, sb.build())
	}

	if err := book.Validate(reg); err != nil {
		return nil, fmt.Errorf("failed to build book %q: %w", b.book.Editor, err)
	}
	return &book, nil
}

// MustBuild is Build for static definitions; it panics on error.
func (b *Builder) MustBuild(reg *catalog.Registry) *scene.Book {
	book, err := b.Build(reg)
	if err != nil {
		panic(err)
	}
	return book
}
