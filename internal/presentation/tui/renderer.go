package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// When the renderer cannot be built the markdown is returned unchanged.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SceneMarkdown describes a preset as markdown.
func SceneMarkdown(p *domain.ScenePreset, refName func(domain.ConnectionRef) string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %d. %s\n\n", p.Index, p.Name)
	if p.Description != "" {
		sb.WriteString(p.Description)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "**%d connections**\n\n", len(p.Connections))
	for _, c := range p.Connections {
		if refName != nil {
			fmt.Fprintf(&sb, "- %s\n", refName(c))
			continue
		}
		fmt.Fprintf(&sb, "- `%s.%s` → `%s.%s`\n", c.FromNode, c.FromPort, c.ToNode, c.ToPort)
	}
	if len(p.Hidden) > 0 {
		fmt.Fprintf(&sb, "\nHidden: %s\n", strings.Join(p.Hidden, ", "))
	}
	if p.Camera != nil {
		fmt.Fprintf(&sb, "\nCamera at %s looking at %s\n", p.Camera.Position, p.Camera.Target)
	}
	return sb.String()
}

// PrintScenes writes a numbered scene list, marking the active one.
func PrintScenes(w io.Writer, scenes []domain.ScenePreset, active int) {
	out := termenv.NewOutput(w)
	for _, s := range scenes {
		line := fmt.Sprintf("  %d. %s (%d connections)", s.Index, s.Name, len(s.Connections))
		if s.Index == active {
			fmt.Fprintln(w, out.String("* "+strings.TrimLeft(line, " ")).Bold().Foreground(out.Color("#a78bfa")))
			continue
		}
		fmt.Fprintln(w, line)
	}
}
