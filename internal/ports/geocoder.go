package ports

import (
	"context"
	"traffic-forecast-service/internal/domain"
)

// Contract for resolving free text to candidate locations.
type Geocoder interface {
	// Return candidates for the query, best first. An empty slice means no match.
	Geocode(ctx context.Context, query string) ([]domain.LocationCandidate, error)
}
