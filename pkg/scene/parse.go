package scene

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/agentscene/pkg/domain"
	"gopkg.in/yaml.v3"
)

type bookFile struct {
	Editor      string      `yaml:"editor"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Nodes       []nodeFile  `yaml:"nodes"`
	Scenes      []sceneFile `yaml:"scenes"`
}

type nodeFile struct {
	Ref    string         `yaml:"ref"`
	Kind   string         `yaml:"kind"`
	Params map[string]any `yaml:"params"`
}

type sceneFile struct {
	Index       int              `yaml:"index"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Connections []linkFile       `yaml:"connections"`
	Positions   map[string]coord `yaml:"positions"`
	Hidden      []string         `yaml:"hidden"`
	Camera      *cameraFile      `yaml:"camera"`
}

type linkFile struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type cameraFile struct {
	Position coord `yaml:"position"`
	Target   coord `yaml:"target"`
}

// coord accepts [x, y] or [x, y, z].
type coord domain.Vec3

func (c *coord) UnmarshalYAML(node *yaml.Node) error {
	var xs []float64
	if err := node.Decode(&xs); err != nil {
		return fmt.Errorf("line %d: coordinate must be a list of numbers: %w", node.Line, err)
	}
	switch len(xs) {
	case 2:
		*c = coord{X: xs[0], Y: xs[1]}
	case 3:
		*c = coord{X: xs[0], Y: xs[1], Z: xs[2]}
	default:
		return fmt.Errorf("line %d: coordinate needs 2 or 3 values, got %d", node.Line, len(xs))
	}
	return nil
}

// Parse decodes a YAML book. It checks syntax only; call Validate for semantics.
func Parse(data []byte) (*Book, error) {
	var raw bookFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse book: %w", err)
	}

	book := &Book{
		Editor:      raw.Editor,
		Title:       raw.Title,
		Description: strings.TrimSpace(raw.Description),
	}
	for _, n := range raw.Nodes {
		book.Nodes = append(book.Nodes, NodeDecl{Ref: n.Ref, Kind: domain.NodeKind(n.Kind), Params: n.Params})
	}

	for _, s := range raw.Scenes {
		preset, err := s.preset()
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", s.Index, err)
		}
		book.Scenes = append(book.Scenes, preset)
	}
	sort.SliceStable(book.Scenes, func(i, j int) bool {
		return book.Scenes[i].Index < book.Scenes[j].Index
	})
	return book, nil
}

func (s sceneFile) preset() (domain.ScenePreset, error) {
	p := domain.ScenePreset{
		Index:       s.Index,
		Name:        s.Name,
		Description: strings.TrimSpace(s.Description),
		Positions:   make(map[string]domain.Vec3, len(s.Positions)),
		Hidden:      s.Hidden,
	}
	for _, l := range s.Connections {
		ref, err := parseLink(l)
		if err != nil {
			return p, err
		}
		p.Connections = append(p.Connections, ref)
	}
	for ref, c := range s.Positions {
		p.Positions[ref] = domain.Vec3(c)
	}
	if s.Camera != nil {
		p.Camera = &domain.CameraPlacement{
			Position: domain.Vec3(s.Camera.Position),
			Target:   domain.Vec3(s.Camera.Target),
		}
	}
	return p, nil
}

func parseLink(l linkFile) (domain.ConnectionRef, error) {
	fromNode, fromPort, err := ParseEndpoint(l.From)
	if err != nil {
		return domain.ConnectionRef{}, err
	}
	toNode, toPort, err := ParseEndpoint(l.To)
	if err != nil {
		return domain.ConnectionRef{}, err
	}
	return domain.ConnectionRef{FromNode: fromNode, FromPort: fromPort, ToNode: toNode, ToPort: toPort}, nil
}

// ParseEndpoint splits "ref.port".
func ParseEndpoint(s string) (ref, port string, err error) {
	ref, port, ok := strings.Cut(s, ".")
	if !ok || ref == "" || port == "" {
		return "", "", fmt.Errorf("endpoint %q must look like ref.port", s)
	}
	return ref, port, nil
}
