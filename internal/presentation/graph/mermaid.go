package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/agentscene/pkg/domain"
)

// GraphOverlay contains presentation data to add on top of a snapshot.
type GraphOverlay struct {
	// Title is written as a comment line above the chart.
	Title string
	// Refs maps node ids to the short refs used as Mermaid ids. Unlisted nodes use their id.
	Refs map[string]string
	// Highlight lists node ids to emphasize.
	Highlight []string
	// ShowHidden keeps hidden nodes in the chart, styled as hidden.
	ShowHidden bool
}

// GenerateMermaid produces a Mermaid flowchart from a graph snapshot.
// It applies shapes by node kind:
// - Tool source: [[Subroutine]]
// - Knowledge and memory sources: [(Database)]
// - Model: ([Stadium])
// - Agent: {{Hexagon}}
// - Document: [/Parallelogram/]
// Edges are labelled "sourcePort → targetPort".
func GenerateMermaid(snap *domain.GraphSnapshot, overlay *GraphOverlay) string {
	if overlay == nil {
		overlay = &GraphOverlay{}
	}

	var sb strings.Builder
	if overlay.Title != "" {
		fmt.Fprintf(&sb, "%%%% %s\n", overlay.Title)
	}
	sb.WriteString("graph LR\n")

	shown := make(map[string]bool, len(snap.Nodes))
	var hidden []string
	for _, n := range snap.Nodes {
		if !n.Visible && !overlay.ShowHidden {
			continue
		}
		shown[n.ID] = true
		id := mermaidID(n.ID, overlay.Refs)
		opener, closer := shape(n.Kind)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(n.DisplayName), closer)
		if !n.Visible {
			hidden = append(hidden, id)
		}
	}

	for _, c := range snap.Connections {
		if !shown[c.SourceNodeID] || !shown[c.TargetNodeID] {
			continue
		}
		fmt.Fprintf(&sb, "    %s -- \"%s → %s\" --> %s\n",
			mermaidID(c.SourceNodeID, overlay.Refs),
			escape(c.SourcePort), escape(c.TargetPort),
			mermaidID(c.TargetNodeID, overlay.Refs),
		)
	}

	if len(hidden) > 0 || len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef hidden fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4 4,color:#757575;\n")
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range hidden {
			fmt.Fprintf(&sb, "    class %s hidden;\n", id)
		}
		seen := make(map[string]bool)
		for _, nodeID := range overlay.Highlight {
			if !shown[nodeID] {
				continue
			}
			id := mermaidID(nodeID, overlay.Refs)
			if !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s highlight;\n", id)
			}
		}
	}

	return sb.String()
}

func shape(kind domain.NodeKind) (string, string) {
	switch kind {
	case domain.KindToolSource:
		return "[[", "]]"
	case domain.KindKnowledgeSource, domain.KindMemorySource:
		return "[(", ")]"
	case domain.KindModel:
		return "([", "])"
	case domain.KindAgent:
		return "{{", "}}"
	case domain.KindDocument:
		return "[/", "/]"
	}
	return "[", "]"
}

func mermaidID(id string, refs map[string]string) string {
	if ref, ok := refs[id]; ok && ref != "" {
		id = ref
	}
	return sanitizeMermaidID(id)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "n" + s
	}
	return s
}
