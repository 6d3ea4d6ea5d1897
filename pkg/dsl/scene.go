package dsl

import (
	"fmt"

	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/scene"
)

// SceneBuilder provides a fluent API for configuring a scene preset.
type SceneBuilder struct {
	preset  domain.ScenePreset
	builder *Builder
}

func newSceneBuilder(b *Builder, index int, name string) *SceneBuilder {
	return &SceneBuilder{
		preset: domain.ScenePreset{
			Index:     index,
			Name:      name,
			Positions: make(map[string]domain.Vec3),
		},
		builder: b,
	}
}

// Describe sets the scene description.
func (s *SceneBuilder) Describe(text string) *SceneBuilder {
	s.preset.Description = text
	return s
}

// Connect adds a connection between two "ref.port" endpoints.
func (s *SceneBuilder) Connect(from, to string) *SceneBuilder {
	fromNode, fromPort, err := scene.ParseEndpoint(from)
	if err != nil {
		s.fail(err)
		return s
	}
	toNode, toPort, err := scene.ParseEndpoint(to)
	if err != nil {
		s.fail(err)
		return s
	}
	s.preset.Connections = append(s.preset.Connections, domain.ConnectionRef{
		FromNode: fromNode,
		FromPort: fromPort,
		ToNode:   toNode,
		ToPort:   toPort,
	})
	return s
}

// At places a node on the flat canvas.
func (s *SceneBuilder) At(ref string, x, y float64) *SceneBuilder {
	s.preset.Positions[ref] = domain.Vec3{X: x, Y: y}
	return s
}

// At3 places a node in space.
func (s *SceneBuilder) At3(ref string, pos domain.Vec3) *SceneBuilder {
	s.preset.Positions[ref] = pos
	return s
}

// Hide keeps the nodes out of view in this scene.
func (s *SceneBuilder) Hide(refs ...string) *SceneBuilder {
	s.preset.Hidden = append(s.preset.Hidden, refs...)
	return s
}

// Camera fixes the camera instead of fitting the visible nodes.
func (s *SceneBuilder) Camera(position, target domain.Vec3) *SceneBuilder {
	s.preset.Camera = &domain.CameraPlacement{Position: position, Target: target}
	return s
}

// Scene closes this scene and starts the next one.
func (s *SceneBuilder) Scene(index int, name string) *SceneBuilder {
	return s.builder.Scene(index, name)
}

// Done returns to the book builder.
func (s *SceneBuilder) Done() *Builder {
	return s.builder
}

func (s *SceneBuilder) fail(err error) {
	s.builder.errs = append(s.builder.errs, fmt.Errorf("scene %d: %w", s.preset.Index, err))
}

func (s *SceneBuilder) build() domain.ScenePreset {
	p := s.preset
	p.Connections = append([]domain.ConnectionRef(nil), s.preset.Connections...)
	p.Hidden = append([]string(nil), s.preset.Hidden...)
	p.Positions = make(map[string]domain.Vec3, len(s.preset.Positions))
	for k, v := range s.preset.Positions {
		p.Positions[k] = v
	}
	return p
}
