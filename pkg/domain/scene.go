package domain

// ConnectionRef is a preset connection expressed with node refs instead of live ids.
type ConnectionRef struct {
	FromNode string `json:"from_node"`
	FromPort string `json:"from_port"`
	ToNode   string `json:"to_node"`
	ToPort   string `json:"to_port"`
}

// CameraPlacement is an explicit camera position and look-at target.
type CameraPlacement struct {
	Position Vec3 `json:"position"`
	Target   Vec3 `json:"target"`
}

// ScenePreset is a static, named layout. It is never mutated after loading.
type ScenePreset struct {
	Index       int              `json:"index"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Connections []ConnectionRef  `json:"connections"`
	Positions   map[string]Vec3  `json:"positions"`
	Hidden      []string         `json:"hidden,omitempty"`
	Camera      *CameraPlacement `json:"camera,omitempty"`
}

// IsHidden reports whether the node ref is hidden in this scene.
func (p *ScenePreset) IsHidden(ref string) bool {
	for _, h := range p.Hidden {
		if h == ref {
			return true
		}
	}
	return false
}

// SceneResult is returned by a successful scene load.
type SceneResult struct {
	Editor      string          `json:"editor"`
	Scene       int             `json:"scene"`
	Name        string          `json:"name"`
	Connections []Connection    `json:"connections"`
	Camera      CameraPlacement `json:"camera"`
	Fitted      bool            `json:"fitted"`

	// Diff is nil when the scene was already in place.
	Diff *GraphDiff `json:"diff,omitempty"`
}
