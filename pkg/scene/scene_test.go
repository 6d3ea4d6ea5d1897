package scene_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_BooksValidate(t *testing.T) {
	lib, err := scene.Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{scene.EditorArchitecture, scene.EditorPluggedIn}, lib.Editors())

	reg := catalog.New()
	for _, name := range lib.Editors() {
		book, err := lib.Get(name)
		require.NoError(t, err)
		assert.NoError(t, book.Validate(reg), name)
	}
}

func TestBuiltin_ArchitectureScenes(t *testing.T) {
	lib, err := scene.Builtin()
	require.NoError(t, err)
	book, err := lib.Get(scene.EditorArchitecture)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, book.Indices())
	assert.Len(t, book.Nodes, 7)

	want := map[int]struct {
		name  string
		links int
	}{
		1: {"Full Architecture", 12},
		2: {"Data Flow", 3},
		3: {"Model Integration", 3},
		4: {"Complete Pipeline", 7},
	}
	for idx, w := range want {
		s, err := book.Scene(idx)
		require.NoError(t, err)
		assert.Equal(t, w.name, s.Name)
		assert.Len(t, s.Connections, w.links)
		assert.Len(t, s.Positions, 7)
		assert.Nil(t, s.Camera)
	}

	s1, _ := book.Scene(1)
	assert.Equal(t, domain.Vec3{X: -600, Y: -300}, s1.Positions["mcp_tool"])
}

func TestBuiltin_BeforePluggedIn(t *testing.T) {
	lib, err := scene.Builtin()
	require.NoError(t, err)
	book, err := lib.Get(scene.EditorPluggedIn)
	require.NoError(t, err)

	s, err := book.Scene(1)
	require.NoError(t, err)
	assert.Equal(t, "Before Plugged.in", s.Name)
	assert.Len(t, s.Connections, 7)

	reserved := map[domain.NodeKind]bool{
		domain.KindAgent:           true,
		domain.KindKnowledgeSource: true,
		domain.KindMemorySource:    true,
	}
	for _, c := range s.Connections {
		for _, ref := range []string{c.FromNode, c.ToNode} {
			decl, ok := book.Decl(ref)
			require.True(t, ok, ref)
			assert.False(t, reserved[decl.Kind], "%s touches a reserved node", ref)
		}
	}

	s3, err := book.Scene(3)
	require.NoError(t, err)
	require.NotNil(t, s3.Camera)
	assert.Equal(t, domain.Vec3{Z: 1400}, s3.Camera.Position)
}

func TestScene_Unknown(t *testing.T) {
	lib, err := scene.Builtin()
	require.NoError(t, err)
	book, _ := lib.Get(scene.EditorArchitecture)

	_, err = book.Scene(9)
	assert.ErrorIs(t, err, domain.ErrSceneNotFound)

	_, err = lib.Get("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownEditor)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad endpoint", "editor: e\nscenes:\n  - index: 1\n    name: s\n    connections:\n      - {from: rag, to: agent.rag}\n"},
		{"bad coordinate", "editor: e\nscenes:\n  - index: 1\n    name: s\n    positions:\n      rag: [1]\n"},
		{"unknown field", "editor: e\nscenez: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scene.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	book, err := scene.Parse([]byte(`
editor: broken
nodes:
  - {ref: doc, kind: document}
  - {ref: agent, kind: agent}
  - {ref: ghost, kind: spaceship}
scenes:
  - index: 2
    name: ""
    connections:
      - {from: doc.content, to: agent.rag}
      - {from: agent.action, to: nobody.content}
    positions:
      stranger: [0, 0]
    hidden: [phantom]
`))
	require.NoError(t, err)

	err = book.Validate(catalog.New())
	require.Error(t, err)

	msg := err.Error()
	for _, fragment := range []string{
		`invalid node kind "spaceship"`,
		"scene indices must run",
		"scene name is required",
		"doc.content is not an output",
		`undeclared node "nobody"`,
		`position for undeclared node "stranger"`,
		`hidden node "phantom"`,
	} {
		assert.Contains(t, msg, fragment)
	}

	var problem *scene.Problem
	require.True(t, errors.As(err, &problem))
	assert.Equal(t, "broken", problem.Editor)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	book := "editor: tiny\ntitle: Tiny\nnodes:\n  - {ref: m, kind: model}\nscenes:\n  - index: 1\n    name: Only\n    positions:\n      m: [1, 2, 3]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yml"), []byte(book), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	lib, err := scene.LoadDir(dir)
	require.NoError(t, err)
	b, err := lib.Get("tiny")
	require.NoError(t, err)
	s, _ := b.Scene(1)
	assert.Equal(t, domain.Vec3{X: 1, Y: 2, Z: 3}, s.Positions["m"])
}
