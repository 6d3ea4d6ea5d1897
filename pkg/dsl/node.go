package dsl

import (
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/scene"
)

// Node declares a node under ref. Declaring the same ref again replaces it.
func (b *Builder) Node(ref string, kind domain.NodeKind, params Params) *Builder {
	decl := scene.NodeDecl{Ref: ref, Kind: kind, Params: params}
	for i, n := range b.book.Nodes {
		if n.Ref == ref {
			b.book.Nodes[i] = decl
			return b
		}
	}
	b.book.Nodes = append(b.book.Nodes, decl)
	return b
}

// Tool declares a tool source of the given flavor.
func (b *Builder) Tool(ref string, flavor domain.ToolFlavor, name string) *Builder {
	return b.Node(ref, domain.KindToolSource, Params{"flavor": string(flavor), "tool_name": name})
}

// Model declares a model node.
func (b *Builder) Model(ref, modelName string) *Builder {
	return b.Node(ref, domain.KindModel, Params{"model_name": modelName})
}

// Document declares a document node.
func (b *Builder) Document(ref, title string) *Builder {
	return b.Node(ref, domain.KindDocument, Params{"title": title})
}
