/*
Package dsl provides a fluent Go builder for scene books.

It is the programmatic counterpart of the YAML books in package scene: useful for
tests, generated editors, and IDE type-checking.

Example usage:

	book, err := dsl.New("demo").
		Title("Demo").
		Node("claude", domain.KindModel, dsl.Params{"model_name": "Claude"}).
		Node("out", domain.KindDocument, nil).
		Scene(1, "Answer").
		Connect("claude.response", "out.content").
		At("claude", -300, 0).
		At("out", 300, 0).
		Done().
		Build(catalog.New())
*/
package dsl
