package catalog

import (
	"fmt"

	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Sentinel output values of the constant sources.
const (
	KnowledgeContext = "knowledge_context"
	MemoryState      = "memory_state"
	AgentAction      = "agent_action"
)

// Default names used when params leave them unset.
const (
	DefaultMCPToolName    = "MCP Tool"
	DefaultNativeToolName = "Native Tool"
	DefaultModelName      = "Model"
	DefaultDocumentTitle  = "Document"
)

func in(name, label string) domain.PortSpec {
	return domain.PortSpec{Name: name, Direction: domain.DirectionIn, Label: label, Socket: DefaultSocket}
}

func out(name, label string) domain.PortSpec {
	return domain.PortSpec{Name: name, Direction: domain.DirectionOut, Label: label, Socket: DefaultSocket}
}

// New returns a registry holding the six built-in kinds.
func New() *Registry {
	r := NewRegistry()
	for _, spec := range builtins() {
		if err := r.Register(spec); err != nil {
			panic(err) // built-ins only use DefaultSocket
		}
	}
	return r
}

func builtins() []KindSpec {
	return []KindSpec{
		{
			Kind:    domain.KindToolSource,
			Title:   DefaultMCPToolName,
			Outputs: []domain.PortSpec{out("tool_out", "Tool Output")},
			Decode:  decodeTool,
			Rule: func(n *domain.NodeInstance, _ map[string][]any) map[string]any {
				c, _ := n.Controls.(domain.ToolControls)
				return map[string]any{"tool_out": toolName(c)}
			},
		},
		{
			Kind:    domain.KindKnowledgeSource,
			Title:   "Knowledge (RAG)",
			Outputs: []domain.PortSpec{out("context", "Context")},
			Decode:  decodeNone("Knowledge (RAG)"),
			Rule:    constant("context", KnowledgeContext),
		},
		{
			Kind:    domain.KindMemorySource,
			Title:   "Memory",
			Outputs: []domain.PortSpec{out("state", "State")},
			Decode:  decodeNone("Memory"),
			Rule:    constant("state", MemoryState),
		},
		{
			Kind:  domain.KindModel,
			Title: DefaultModelName,
			Inputs: []domain.PortSpec{
				in("rag", "RAG"),
				in("memory", "Memory"),
				in("tools", "Tools"),
			},
			Outputs: []domain.PortSpec{out("response", "Response")},
			Decode:  decodeModel,
			Rule: func(n *domain.NodeInstance, _ map[string][]any) map[string]any {
				return map[string]any{"response": n.DisplayName + "_response"}
			},
		},
		{
			Kind:  domain.KindAgent,
			Title: "AI Agent",
			Inputs: []domain.PortSpec{
				in("chatgpt", "ChatGPT"),
				in("claude", "Claude"),
				in("llama", "Llama"),
				in("mcp_tool", "MCP Tool"),
				in("rag", "RAG"),
				in("memory", "Memory"),
			},
			Outputs: []domain.PortSpec{out("action", "Action")},
			Decode:  decodeNone("AI Agent"),
			Rule:    constant("action", AgentAction),
		},
		{
			Kind:   domain.KindDocument,
			Title:  DefaultDocumentTitle,
			Inputs: []domain.PortSpec{in("content", "Content")},
			Decode: decodeDocument,
			Rule: func(*domain.NodeInstance, map[string][]any) map[string]any {
				return map[string]any{}
			},
		},
	}
}

func constant(port string, value any) Rule {
	return func(*domain.NodeInstance, map[string][]any) map[string]any {
		return map[string]any{port: value}
	}
}

func toolName(c domain.ToolControls) string {
	if c.ToolName != "" {
		return c.ToolName
	}
	if c.Flavor == domain.FlavorNative {
		return DefaultNativeToolName
	}
	return DefaultMCPToolName
}

// commonParams are accepted by every kind.
type commonParams struct {
	Name string `mapstructure:"name"`
}

func decode(params map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(params)
}

func displayName(params map[string]any, fallback string) (string, error) {
	var common commonParams
	if err := decode(params, &common); err != nil {
		return "", fmt.Errorf("decode params: %w", err)
	}
	if common.Name != "" {
		return common.Name, nil
	}
	return fallback, nil
}

func decodeNone(title string) Decoder {
	return func(params map[string]any) (domain.Controls, string, error) {
		name, err := displayName(params, title)
		return domain.NoControls{}, name, err
	}
}

func decodeTool(params map[string]any) (domain.Controls, string, error) {
	var c domain.ToolControls
	if err := decode(params, &c); err != nil {
		return nil, "", fmt.Errorf("decode tool params: %w", err)
	}
	switch c.Flavor {
	case "":
		c.Flavor = domain.FlavorMCP
	case domain.FlavorMCP, domain.FlavorNative:
	default:
		return nil, "", fmt.Errorf("unknown tool flavor %q", c.Flavor)
	}
	c.ToolName = toolName(c)

	title := DefaultMCPToolName
	if c.Flavor == domain.FlavorNative {
		title = DefaultNativeToolName
	}
	name, err := displayName(params, title)
	return c, name, err
}

func decodeModel(params map[string]any) (domain.Controls, string, error) {
	var c domain.ModelControls
	if err := decode(params, &c); err != nil {
		return nil, "", fmt.Errorf("decode model params: %w", err)
	}
	name, err := displayName(params, c.ModelName)
	if err != nil {
		return nil, "", err
	}
	if c.ModelName == "" {
		c.ModelName = name
	}
	if c.ModelName == "" {
		c.ModelName = DefaultModelName
	}
	if name == "" {
		name = c.ModelName
	}
	return c, name, nil
}

func decodeDocument(params map[string]any) (domain.Controls, string, error) {
	var c domain.DocumentControls
	if err := decode(params, &c); err != nil {
		return nil, "", fmt.Errorf("decode document params: %w", err)
	}
	if c.Title == "" {
		c.Title = DefaultDocumentTitle
	}
	name, err := displayName(params, c.Title)
	return c, name, err
}
