package mock

import (
	"context"
	"strings"
	"sync/atomic"
	"traffic-forecast-service/internal/domain"
)

// Geocoder answers from a fixed query table. Unknown queries yield no
// candidates; queries listed in Fail return that error.
type Geocoder struct {
	m     map[string][]domain.LocationCandidate
	Fail  map[string]error
	calls atomic.Int64
}

func NewGeocoder(table map[string][]domain.LocationCandidate) *Geocoder {
	m := make(map[string][]domain.LocationCandidate, len(table))
	for q, c := range table {
		m[strings.ToLower(strings.TrimSpace(q))] = c
	}
	return &Geocoder{m: m, Fail: map[string]error{}}
}

func (g *Geocoder) Geocode(ctx context.Context, query string) ([]domain.LocationCandidate, error) {
	g.calls.Add(1)

	key := strings.ToLower(strings.TrimSpace(query))
	if err, ok := g.Fail[key]; ok {
		return nil, err
	}

	c := g.m[key]
	out := make([]domain.LocationCandidate, len(c))
	copy(out, c)
	return out, nil
}

// Calls returns how many lookups were made.
func (g *Geocoder) Calls() int { return int(g.calls.Load()) }
