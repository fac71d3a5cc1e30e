package ports

import (
	"context"
	"traffic-forecast-service/internal/domain"
)

// Optional collaborator reporting live conditions at a point.
type ConditionsProvider interface {
	Current(ctx context.Context, at domain.Coordinates) (*domain.Conditions, error)
}
