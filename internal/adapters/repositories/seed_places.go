package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"traffic-forecast-service/internal/domain"
)

// PlaceSeed is one well-known landmark. Aliases are extra query texts that
// should resolve to the same place.
type PlaceSeed struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Lon     float64  `json:"lon"`
	Lat     float64  `json:"lat"`
	Aliases []string `json:"aliases"`
}

// Writer for seeded geocode entries; satisfied by cache.SQLGeocodeCache.
type GeocodeSeedWriter interface {
	PutMany(ctx context.Context, results map[string][]domain.LocationCandidate) error
}

// LoadPlaces reads landmark seeds from a JSON file and validates them.
func LoadPlaces(jsonPath string) ([]PlaceSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed places: parse json: %w", err)
	}

	for i, item := range data {
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("seed places: item at index %d: name cannot be empty", i+1)
		}
		c := domain.Coordinates{Lon: item.Lon, Lat: item.Lat}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("seed places: item %q: %w", item.Name, err)
		}
	}

	return data, nil
}

// PlaceCacheEntries maps every name and alias (normalized the way the
// geocoder normalizes queries) to the single landmark candidate.
func PlaceCacheEntries(places []PlaceSeed) map[string][]domain.LocationCandidate {
	out := make(map[string][]domain.LocationCandidate, len(places))
	for _, p := range places {
		label := strings.TrimSpace(p.Label)
		if label == "" {
			label = p.Name
		}
		cand := domain.LocationCandidate{
			Name:        strings.TrimSpace(p.Name),
			Label:       label,
			Coordinates: domain.Coordinates{Lon: p.Lon, Lat: p.Lat},
		}

		keys := append([]string{p.Name}, p.Aliases...)
		for _, k := range keys {
			norm := strings.ToLower(strings.Join(strings.Fields(k), " "))
			if norm == "" {
				continue
			}
			out[norm] = []domain.LocationCandidate{cand}
		}
	}
	return out
}

// SeedPlacesFromJSON populates the geocode cache with landmark candidates.
func SeedPlacesFromJSON(ctx context.Context, w GeocodeSeedWriter, jsonPath string) (int, error) {
	places, err := LoadPlaces(jsonPath)
	if err != nil {
		return 0, err
	}

	entries := PlaceCacheEntries(places)
	if err := w.PutMany(ctx, entries); err != nil {
		return 0, fmt.Errorf("seed places: %w", err)
	}

	return len(entries), nil
}
