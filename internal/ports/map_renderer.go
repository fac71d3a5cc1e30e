package ports

import "traffic-forecast-service/internal/domain"

// Contract for producing the map overlay shown with a forecast.
type MapRenderer interface {
	Render(start, end domain.Coordinates, path []domain.Coordinates) (*domain.MapView, error)
}
