package ports

import (
	"context"

	"github.com/aretw0/agentscene/pkg/domain"
)

// Camera is the camera collaborator of a scene transition.
type Camera interface {
	// Place moves the camera to an explicit placement.
	Place(ctx context.Context, placement domain.CameraPlacement) error

	// FitAll frames the given nodes and returns the placement it chose.
	// An empty node list is valid and frames the origin.
	FitAll(ctx context.Context, nodes []*domain.NodeInstance) (domain.CameraPlacement, error)
}
