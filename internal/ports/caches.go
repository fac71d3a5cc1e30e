package ports

import (
	"context"
	"traffic-forecast-service/internal/domain"
)

// Cache of geocoder answers keyed by normalized query text.
type GeocodeCache interface {
	Get(ctx context.Context, query string) ([]domain.LocationCandidate, bool, error)
	Put(ctx context.Context, query string, candidates []domain.LocationCandidate) error
}

// RouteLeg is one cached directions result for a routing profile.
type RouteLeg struct {
	DistanceMeters  int
	DurationSeconds int
	Congestion      string
	Path            []domain.Coordinates
}

// Cache of directions results keyed by profile and endpoints.
type RouteCache interface {
	Get(ctx context.Context, profile string, from, to domain.Coordinates) (*RouteLeg, bool, error)
	Put(ctx context.Context, profile string, from, to domain.Coordinates, leg *RouteLeg) error
}
