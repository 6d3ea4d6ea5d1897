package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/agentscene/internal/validator"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/dsl"
	"github.com/aretw0/agentscene/pkg/scene"
)

func TestValidateLibrary_Builtin(t *testing.T) {
	lib, err := scene.Builtin()
	require.NoError(t, err)

	reports, err := validator.ValidateLibrary(lib, nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "architecture", reports[0].Editor)
	assert.Equal(t, "pluggedin", reports[1].Editor)
	for _, r := range reports {
		assert.True(t, r.OK(), "%s: %v", r.Editor, r.Err())
	}
}

func TestValidateBook_Cycle(t *testing.T) {
	book := dsl.New("loop").
		Model("a", "Claude").
		Model("b", "Llama").
		Scene(1, "Loop").
		Connect("a.response", "b.tools").
		Connect("b.response", "a.tools").
		Done().
		MustBuild(nil)

	r := validator.ValidateBook(book, nil)
	require.False(t, r.OK())
	require.Len(t, r.Errors, 1)

	var cyc *domain.CyclicGraphError
	require.ErrorAs(t, r.Errors[0], &cyc)
	assert.Equal(t, []string{"a", "b"}, cyc.Nodes)
	assert.Contains(t, r.Err().Error(), "found 1 errors")
}

func TestValidateBook_Warnings(t *testing.T) {
	book := dsl.New("lint").
		Model("claude", "Claude").
		Document("out", "Answer").
		Document("spare", "Unused").
		Scene(1, "Only").
		Connect("claude.response", "out.content").
		Hide("out").
		Done().
		MustBuild(nil)

	r := validator.ValidateBook(book, nil)
	assert.True(t, r.OK())
	assert.Len(t, r.Warnings, 2)
	assert.Contains(t, r.Warnings[0], "hidden node")
	assert.Contains(t, r.Warnings[1], `"spare"`)
}

func TestValidateBook_StructuralErrors(t *testing.T) {
	book := &scene.Book{
		Editor: "broken",
		Nodes: []scene.NodeDecl{
			{Ref: "m", Kind: domain.KindModel},
		},
		Scenes: []domain.ScenePreset{
			{Index: 1, Name: "Bad", Connections: []domain.ConnectionRef{
				{FromNode: "ghost", FromPort: "response", ToNode: "m", ToPort: "tools"},
				{FromNode: "m", FromPort: "nope", ToNode: "m", ToPort: "tools"},
			}},
		},
	}

	r := validator.ValidateBook(book, nil)
	require.Len(t, r.Errors, 2)
	assert.Contains(t, r.Errors[0].Error(), "undeclared node")
	assert.Contains(t, r.Errors[1].Error(), "is not an output")
	assert.Empty(t, r.Warnings)

	lib, err := scene.NewLibrary(book)
	require.NoError(t, err)
	reports, err := validator.ValidateLibrary(lib, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, reports, 1)
}
