package domain

// GraphSnapshot is a point-in-time copy of a graph. Readers may keep it freely.
type GraphSnapshot struct {
	Nodes       []*NodeInstance `json:"nodes"`
	Connections []Connection    `json:"connections"`

	// ActiveScene is 0 until the first scene load completes.
	ActiveScene int `json:"active_scene"`
}

// Node returns the node with the given id, or nil.
func (s *GraphSnapshot) Node(id string) *NodeInstance {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// VisibleNodes returns the nodes that are currently shown.
func (s *GraphSnapshot) VisibleNodes() []*NodeInstance {
	var out []*NodeInstance
	for _, n := range s.Nodes {
		if n.Visible {
			out = append(out, n)
		}
	}
	return out
}

// ConnectionsTouching returns every connection with the node on either end.
func (s *GraphSnapshot) ConnectionsTouching(id string) []Connection {
	var out []Connection
	for _, c := range s.Connections {
		if c.Touches(id) {
			out = append(out, c)
		}
	}
	return out
}
