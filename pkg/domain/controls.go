package domain

// Controls holds the user-editable values of a node. Each kind has its own
// concrete type so values are plain fields instead of string lookups.
type Controls interface {
	// ControlValues renders the controls as name/value pairs for presentation.
	ControlValues() map[string]string
	controls()
}

// ToolFlavor distinguishes MCP tools from tools built into a model runtime.
type ToolFlavor string

const (
	FlavorMCP    ToolFlavor = "mcp"
	FlavorNative ToolFlavor = "native"
)

// ToolControls configures a ToolSource node.
type ToolControls struct {
	Flavor   ToolFlavor `json:"flavor" mapstructure:"flavor"`
	ToolName string     `json:"tool_name" mapstructure:"tool_name"`
}

func (c ToolControls) ControlValues() map[string]string {
	return map[string]string{"toolName": c.ToolName}
}

func (ToolControls) controls() {}

// ModelControls configures a Model node.
type ModelControls struct {
	ModelName string `json:"model_name" mapstructure:"model_name"`
}

func (c ModelControls) ControlValues() map[string]string {
	return map[string]string{"modelName": c.ModelName}
}

func (ModelControls) controls() {}

// DocumentControls configures a Document node.
type DocumentControls struct {
	Title string `json:"title" mapstructure:"title"`
}

func (c DocumentControls) ControlValues() map[string]string {
	return map[string]string{"title": c.Title}
}

func (DocumentControls) controls() {}

// NoControls is used by kinds without editable values.
type NoControls struct{}

func (NoControls) ControlValues() map[string]string { return map[string]string{} }

func (NoControls) controls() {}
