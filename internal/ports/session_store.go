package ports

import (
	"context"
	"errors"
	"traffic-forecast-service/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// Port: persistence boundary for per-user workflow state.
type SessionStore interface {
	Load(ctx context.Context, id string) (*domain.SessionState, error)
	Save(ctx context.Context, state *domain.SessionState) error
	Delete(ctx context.Context, id string) error
}
