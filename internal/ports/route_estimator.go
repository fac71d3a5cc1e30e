package ports

import (
	"context"
	"errors"
	"traffic-forecast-service/internal/domain"
)

// ErrNoRoute is reported by a RouteEstimator when no viable path exists.
var ErrNoRoute = errors.New("no viable route")

// Contract for retrieving travel estimates between two points.
type RouteEstimator interface {
	// Return one ModeEstimate per mode, in the order given.
	Estimate(
		ctx context.Context,
		from domain.Coordinates,
		to domain.Coordinates,
		modes []domain.TransportMode,
	) (*domain.RouteEstimate, error)
}
