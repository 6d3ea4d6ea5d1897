// Package camera provides an in-process camera that keeps the current placement
// and frames node sets with a bounding-box fit.
package camera

import (
	"context"
	"math"
	"sync"

	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/ports"
)

var _ ports.Camera = (*Rig)(nil)

// Rig is a perspective camera looking down the Z axis.
type Rig struct {
	mu      sync.RWMutex
	current domain.CameraPlacement

	fov      float64 // vertical field of view, radians
	padding  float64
	nodeSize domain.Vec3
	minDist  float64
}

// Option configures the Rig.
type Option func(*Rig)

// WithFieldOfView sets the vertical field of view in degrees.
func WithFieldOfView(degrees float64) Option {
	return func(r *Rig) {
		r.fov = degrees * math.Pi / 180
	}
}

// WithPadding scales the framed box; 1 frames it edge to edge.
func WithPadding(p float64) Option {
	return func(r *Rig) {
		r.padding = p
	}
}

// New creates a camera at a default distance from the origin.
func New(opts ...Option) *Rig {
	r := &Rig{
		fov:      50 * math.Pi / 180,
		padding:  1.2,
		nodeSize: domain.Vec3{X: 240, Y: 160},
		minDist:  500,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current = domain.CameraPlacement{Position: domain.Vec3{Z: r.minDist}}
	return r
}

// Place moves the camera.
func (r *Rig) Place(_ context.Context, placement domain.CameraPlacement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = placement
	return nil
}

// FitAll centers the camera on the nodes' bounding box and backs off until the box fits.
func (r *Rig) FitAll(ctx context.Context, nodes []*domain.NodeInstance) (domain.CameraPlacement, error) {
	placement := r.fit(nodes)
	return placement, r.Place(ctx, placement)
}

func (r *Rig) fit(nodes []*domain.NodeInstance) domain.CameraPlacement {
	if len(nodes) == 0 {
		return domain.CameraPlacement{Position: domain.Vec3{Z: r.minDist}}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var sumZ float64
	for _, n := range nodes {
		p := n.Position
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X+r.nodeSize.X)
		maxY = math.Max(maxY, p.Y+r.nodeSize.Y)
		sumZ += p.Z
	}

	center := domain.Vec3{
		X: (minX + maxX) / 2,
		Y: (minY + maxY) / 2,
		Z: sumZ / float64(len(nodes)),
	}
	extent := math.Max(maxX-minX, maxY-minY) * r.padding
	dist := math.Max(r.minDist, extent/2/math.Tan(r.fov/2))

	return domain.CameraPlacement{
		Position: domain.Vec3{X: center.X, Y: center.Y, Z: center.Z + dist},
		Target:   center,
	}
}

// Current returns the last placement applied.
func (r *Rig) Current() domain.CameraPlacement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
