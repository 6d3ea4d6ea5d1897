package catalog

import "github.com/aretw0/agentscene/pkg/domain"

// MenuItem is a ready-made "create node" entry for a context menu.
type MenuItem struct {
	Label  string          `json:"label"`
	Kind   domain.NodeKind `json:"kind"`
	Params map[string]any  `json:"params,omitempty"`
}

// MenuItems returns the context menu entries in display order.
func MenuItems() []MenuItem {
	return []MenuItem{
		{Label: "MCP Tool", Kind: domain.KindToolSource, Params: map[string]any{"flavor": "mcp", "tool_name": "Tool Name"}},
		{Label: "Native Tool", Kind: domain.KindToolSource, Params: map[string]any{"flavor": "native"}},
		{Label: "Knowledge (RAG)", Kind: domain.KindKnowledgeSource},
		{Label: "Memory", Kind: domain.KindMemorySource},
		{Label: "Model: ChatGPT", Kind: domain.KindModel, Params: map[string]any{"model_name": "ChatGPT"}},
		{Label: "Model: Claude", Kind: domain.KindModel, Params: map[string]any{"model_name": "Claude"}},
		{Label: "Model: Llama", Kind: domain.KindModel, Params: map[string]any{"model_name": "Llama"}},
		{Label: "AI Agent", Kind: domain.KindAgent},
		{Label: "Document", Kind: domain.KindDocument},
	}
}

// FindMenuItem looks up an entry by its label.
func FindMenuItem(label string) (MenuItem, bool) {
	for _, item := range MenuItems() {
		if item.Label == label {
			return item, true
		}
	}
	return MenuItem{}, false
}
