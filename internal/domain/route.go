package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransportMode is a travel method a separate estimate is requested for.
type TransportMode string

const (
	ModeCar        TransportMode = "car"
	ModeTwoWheeler TransportMode = "two_wheeler"
	ModeWalking    TransportMode = "walking"
)

// CongestionUnreported is surfaced when the routing collaborator gives no
// congestion label for a leg.
const CongestionUnreported = "Not reported"

// DefaultModes returns every supported mode in display order.
func DefaultModes() []TransportMode {
	return []TransportMode{ModeCar, ModeTwoWheeler, ModeWalking}
}

// ParseTransportMode accepts the canonical names plus a few form aliases.
func ParseTransportMode(s string) (TransportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "car", "driving":
		return ModeCar, nil
	case "two_wheeler", "two-wheeler", "twowheeler", "bike", "scooter":
		return ModeTwoWheeler, nil
	case "walking", "walk", "foot":
		return ModeWalking, nil
	}
	return "", ValidationError{Field: "modes", Reason: fmt.Sprintf("unknown transport mode %q", s)}
}

// NormalizeModes parses and deduplicates modes, keeping request order.
// An empty list means all modes.
func NormalizeModes(raw []string) ([]TransportMode, error) {
	if len(raw) == 0 {
		return DefaultModes(), nil
	}

	seen := make(map[TransportMode]struct{}, len(raw))
	out := make([]TransportMode, 0, len(raw))
	for _, r := range raw {
		m, err := ParseTransportMode(r)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

// ModeEstimate is the travel time for one transport mode.
// Congestion is the routing collaborator's label, passed through verbatim.
type ModeEstimate struct {
	Mode            TransportMode `json:"mode"`
	DurationSeconds int           `json:"duration_seconds"`
	DistanceMeters  int           `json:"distance_meters"`
	Congestion      string        `json:"congestion"`
}

// RouteEstimate holds one entry per requested mode, in request order, and
// the path geometry used for map rendering.
type RouteEstimate struct {
	Modes      []ModeEstimate `json:"modes"`
	Path       []Coordinates  `json:"path"`
	ComputedAt time.Time      `json:"computed_at"`
}

// ForMode returns the estimate for m, if present.
func (r *RouteEstimate) ForMode(m TransportMode) (ModeEstimate, bool) {
	if r == nil {
		return ModeEstimate{}, false
	}
	for _, e := range r.Modes {
		if e.Mode == m {
			return e, true
		}
	}
	return ModeEstimate{}, false
}
