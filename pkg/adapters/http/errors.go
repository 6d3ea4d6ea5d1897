package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/agentscene/pkg/domain"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		loadErr  *domain.SceneLoadError
		kindErr  *domain.InvalidKindError
		connErr  *domain.InvalidConnectionError
		cycleErr *domain.CyclicGraphError
		reqErr   *requestError
	)
	switch {
	case errors.Is(err, domain.ErrUnknownEditor), errors.Is(err, domain.ErrSceneNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransitionInFlight), errors.Is(err, domain.ErrNodeDeclared):
		return http.StatusConflict
	case errors.As(err, &loadErr), errors.As(err, &cycleErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.As(err, &kindErr), errors.As(err, &connErr), errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
