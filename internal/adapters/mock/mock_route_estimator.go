package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/ports"
)

// Leg is a canned per-mode result.
type Leg struct {
	Meters     int
	Seconds    int
	Congestion string
}

// RouteEstimator returns canned legs per mode. Err, when set, is returned
// for every call.
type RouteEstimator struct {
	Legs  map[domain.TransportMode]Leg
	Err   error
	Now   time.Time
	calls atomic.Int64
}

func NewRouteEstimator(legs map[domain.TransportMode]Leg) *RouteEstimator {
	return &RouteEstimator{Legs: legs, Now: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
}

// NewUnroutable returns an estimator that always reports ports.ErrNoRoute.
func NewUnroutable() *RouteEstimator {
	return &RouteEstimator{Err: ports.ErrNoRoute}
}

func (r *RouteEstimator) Estimate(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	modes []domain.TransportMode,
) (*domain.RouteEstimate, error) {
	r.calls.Add(1)

	if r.Err != nil {
		return nil, r.Err
	}

	est := &domain.RouteEstimate{
		Modes:      make([]domain.ModeEstimate, 0, len(modes)),
		Path:       []domain.Coordinates{from, to},
		ComputedAt: r.Now,
	}
	for _, m := range modes {
		leg, ok := r.Legs[m]
		if !ok {
			return nil, fmt.Errorf("missing leg for mode %q", m)
		}
		congestion := leg.Congestion
		if congestion == "" {
			congestion = domain.CongestionUnreported
		}
		est.Modes = append(est.Modes, domain.ModeEstimate{
			Mode:            m,
			DurationSeconds: leg.Seconds,
			DistanceMeters:  leg.Meters,
			Congestion:      congestion,
		})
	}

	return est, nil
}

// Calls returns how many estimates were requested.
func (r *RouteEstimator) Calls() int { return int(r.calls.Load()) }
