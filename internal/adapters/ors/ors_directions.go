package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/platform/obs"
	"traffic-forecast-service/internal/ports"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type directionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Instructions bool        `json:"instructions"`
}

// Estimate fetches one directions result per mode, in order. The path of
// the first mode is returned for map rendering. Any mode without a viable
// route fails the whole estimate with ports.ErrNoRoute.
func (o *ORSProvider) Estimate(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	modes []domain.TransportMode,
) (_ *domain.RouteEstimate, err error) {
	defer obs.Time(ctx, "ors.Estimate")(&err)

	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("estimate: origin: %w", err)
	}
	if err := to.Validate(); err != nil {
		return nil, fmt.Errorf("estimate: destination: %w", err)
	}
	if len(modes) == 0 {
		return nil, errors.New("estimate: at least one transport mode is required")
	}

	est := &domain.RouteEstimate{
		Modes:      make([]domain.ModeEstimate, 0, len(modes)),
		ComputedAt: o.now().UTC(),
	}

	for i, m := range modes {
		profile, ok := o.profiles[m]
		if !ok {
			return nil, fmt.Errorf("estimate: no ORS profile for mode %q", m)
		}

		leg, err := o.leg(ctx, profile, from, to)
		if err != nil {
			return nil, fmt.Errorf("estimate %s (%s): %w", m, profile, err)
		}

		est.Modes = append(est.Modes, domain.ModeEstimate{
			Mode:            m,
			DurationSeconds: leg.DurationSeconds,
			DistanceMeters:  leg.DistanceMeters,
			Congestion:      leg.Congestion,
		})

		if i == 0 {
			est.Path = leg.Path
		}
	}

	return est, nil
}

// leg returns the directions result for one profile, via the cache when possible.
func (o *ORSProvider) leg(
	ctx context.Context,
	profile string,
	from domain.Coordinates,
	to domain.Coordinates,
) (*ports.RouteLeg, error) {
	if o.routeCache != nil {
		hit, ok, err := o.routeCache.Get(ctx, profile, from, to)
		if err != nil {
			o.log.Warn("route cache read failed", zap.String("profile", profile), zap.Error(err))
		} else if ok {
			return hit, nil
		}
	}

	leg, err := o.fetchDirections(ctx, profile, from, to)
	if err != nil {
		return nil, err
	}

	if o.routeCache != nil {
		if err := o.routeCache.Put(ctx, profile, from, to, leg); err != nil {
			o.log.Warn("route cache write failed", zap.String("profile", profile), zap.Error(err))
		}
	}

	return leg, nil
}

// fetchDirections retrieves a single route using the OpenRouteService
// directions endpoint (GeoJSON flavour).
func (o *ORSProvider) fetchDirections(
	ctx context.Context,
	profile string,
	from domain.Coordinates,
	to domain.Coordinates,
) (*ports.RouteLeg, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		if isNoRoute(err) {
			return nil, fmt.Errorf("%w: %v", ports.ErrNoRoute, err)
		}
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read directions response: %w", err)
	}

	return parseDirections(endpoint, body)
}

// parseDirections converts a directions FeatureCollection into a RouteLeg.
func parseDirections(endpoint string, body []byte) (*ports.RouteLeg, error) {
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, &ResponseError{Endpoint: endpoint, Reason: err.Error()}
	}

	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: empty directions result", ports.ErrNoRoute)
	}

	f := fc.Features[0]

	line, ok := f.Geometry.(orb.LineString)
	if !ok {
		return nil, &ResponseError{
			Endpoint: endpoint,
			Reason:   fmt.Sprintf("expected LineString geometry, got %T", f.Geometry),
		}
	}

	path := make([]domain.Coordinates, 0, len(line))
	for _, p := range line {
		path = append(path, domain.Coordinates{Lon: p.Lon(), Lat: p.Lat()})
	}

	var meters, seconds float64
	if raw, ok := f.Properties["summary"]; ok {
		summary, ok := raw.(map[string]interface{})
		if !ok {
			return nil, &ResponseError{Endpoint: endpoint, Reason: "summary is not an object"}
		}
		// ORS omits distance/duration for zero-length routes.
		meters, _ = summary["distance"].(float64)
		seconds, _ = summary["duration"].(float64)
	} else {
		return nil, &ResponseError{Endpoint: endpoint, Reason: "missing summary"}
	}

	if meters < 0 || seconds < 0 || math.IsNaN(meters) || math.IsNaN(seconds) {
		return nil, &ResponseError{Endpoint: endpoint, Reason: "negative or NaN summary metrics"}
	}

	// ORS carries no live traffic; a label is only passed through when present.
	congestion := f.Properties.MustString("congestion", domain.CongestionUnreported)

	// ORS returns float metrics; round to nearest integer for domain consistency.
	return &ports.RouteLeg{
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: int(math.Round(seconds)),
		Congestion:      congestion,
		Path:            path,
	}, nil
}
