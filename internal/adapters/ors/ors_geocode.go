package ors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/platform/obs"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// Geocode resolves free text to candidate locations using
// OpenRouteService (/geocode/search), biased toward the configured city.
// An empty result is not an error.
func (o *ORSProvider) Geocode(
	ctx context.Context,
	query string,
) (_ []domain.LocationCandidate, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := o.normalize(query)
	if norm == "" {
		return nil, errors.New("geocode: query must be non-empty")
	}

	key := strings.ToLower(norm)

	// Check persistent geocode cache before issuing external API calls.
	if o.geocodeCache != nil {
		hit, ok, err := o.geocodeCache.Get(ctx, key)
		if err != nil {
			o.log.Warn("geocode cache read failed", zap.String("query", key), zap.Error(err))
		} else if ok {
			return hit, nil
		}
	}

	candidates, err := o.searchCandidates(ctx, o.withCity(norm))
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", norm, err)
	}

	if o.geocodeCache != nil && len(candidates) > 0 {
		if err := o.geocodeCache.Put(ctx, key, candidates); err != nil {
			o.log.Warn("geocode cache write failed", zap.String("query", key), zap.Error(err))
		}
	}

	return candidates, nil
}

// withCity appends the city name unless the text already mentions it.
func (o *ORSProvider) withCity(text string) string {
	if strings.Contains(strings.ToLower(text), strings.ToLower(o.city.Name)) {
		return text
	}
	return text + ", " + o.city.Name
}

func (o *ORSProvider) searchCandidates(ctx context.Context, text string) ([]domain.LocationCandidate, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", text)
		q.Set("size", strconv.Itoa(o.maxCandidates))
		q.Set("focus.point.lat", strconv.FormatFloat(o.city.Center.Lat, 'f', -1, 64))
		q.Set("focus.point.lon", strconv.FormatFloat(o.city.Center.Lon, 'f', -1, 64))
		if o.city.Country != "" {
			q.Set("boundary.country", o.city.Country)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read geocode response: %w", err)
	}

	return parseCandidates(endpoint, body)
}

// parseCandidates converts a Pelias GeoJSON response into typed candidates.
func parseCandidates(endpoint string, body []byte) ([]domain.LocationCandidate, error) {
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, &ResponseError{Endpoint: endpoint, Reason: err.Error()}
	}

	out := make([]domain.LocationCandidate, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, &ResponseError{
				Endpoint: endpoint,
				Reason:   fmt.Sprintf("feature %d: expected Point geometry, got %T", i, f.Geometry),
			}
		}

		coords := domain.Coordinates{Lon: pt.Lon(), Lat: pt.Lat()}
		if err := coords.Validate(); err != nil {
			return nil, &ResponseError{Endpoint: endpoint, Reason: fmt.Sprintf("feature %d: %v", i, err)}
		}

		name := strings.TrimSpace(f.Properties.MustString("name", ""))
		label := strings.TrimSpace(f.Properties.MustString("label", name))
		if name == "" {
			name = label
		}
		if name == "" {
			return nil, &ResponseError{Endpoint: endpoint, Reason: fmt.Sprintf("feature %d: no name or label", i)}
		}

		out = append(out, domain.LocationCandidate{
			Name:        name,
			Label:       label,
			Coordinates: coords,
		})
	}

	return out, nil
}
