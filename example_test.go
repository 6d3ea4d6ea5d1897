package agentscene_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/dsl"
)

// ExampleNew loads the scenes of the built-in architecture editor in turn.
func ExampleNew() {
	ed, err := agentscene.New("architecture")
	if err != nil {
		log.Fatal(err)
	}
	defer ed.Close()

	ctx := context.Background()
	for _, s := range ed.Scenes() {
		res, err := ed.LoadScene(ctx, s.Index)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%d. %s: %d connections\n", res.Scene, res.Name, len(res.Connections))
	}
	// Output:
	// 1. Full Architecture: 12 connections
	// 2. Data Flow: 3 connections
	// 3. Model Integration: 3 connections
	// 4. Complete Pipeline: 7 connections
}

// ExampleNew_dsl builds an editor from a book defined in Go.
func ExampleNew_dsl() {
	book := dsl.New("research").
		Tool("search", domain.FlavorNative, "Web Search").
		Model("claude", "Claude").
		Document("brief", "Brief").
		Scene(1, "Search and write").
		Connect("search.tool_out", "claude.tools").
		Connect("claude.response", "brief.content").
		Done().
		MustBuild(nil)

	ed, err := agentscene.New("", agentscene.WithBook(book), agentscene.WithInitialScene(1))
	if err != nil {
		log.Fatal(err)
	}
	defer ed.Close()

	claudeID, _ := ed.NodeID("claude")
	outs, _ := ed.Outputs(claudeID)
	fmt.Println(ed.State())
	fmt.Println(outs["response"])
	// Output:
	// Search and write
	// Claude_response
}
