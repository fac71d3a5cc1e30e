package ors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/ports"

	"go.uber.org/zap"
)

// CityBias steers geocoding toward a single city.
type CityBias struct {
	Name    string
	Country string
	Center  domain.Coordinates
}

// Options configures an ORSProvider. Caches are optional.
type Options struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	City          CityBias
	MaxCandidates int
	Profiles      map[domain.TransportMode]string
	GeocodeCache  ports.GeocodeCache
	RouteCache    ports.RouteCache
	Logger        *zap.Logger
}

// ORSProvider implements Geocoder and RouteEstimator using OpenRouteService.
//
// It coordinates:
//   - Query normalization and city bias
//   - Persistent geocode and directions caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	city          CityBias
	maxCandidates int
	profiles      map[domain.TransportMode]string
	geocodeCache  ports.GeocodeCache
	routeCache    ports.RouteCache
	log           *zap.Logger
	backoff       time.Duration
	now           func() time.Time
}

// DefaultProfiles maps transport modes to ORS routing profiles.
// ORS has no motorcycle profile; e-bike routing is the closest two-wheeler.
func DefaultProfiles() map[domain.TransportMode]string {
	return map[domain.TransportMode]string{
		domain.ModeCar:        "driving-car",
		domain.ModeTwoWheeler: "cycling-electric",
		domain.ModeWalking:    "foot-walking",
	}
}

func NewORSProvider(opts Options) (*ORSProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	if opts.City.Name == "" {
		return nil, errors.New("ORS city bias name is empty")
	}

	if err := opts.City.Center.Validate(); err != nil {
		return nil, fmt.Errorf("ORS city bias center: %w", err)
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	maxCandidates := opts.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 5
	}

	profiles := DefaultProfiles()
	for m, p := range opts.Profiles {
		if strings.TrimSpace(p) != "" {
			profiles[m] = strings.TrimSpace(p)
		}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	provider := &ORSProvider{
		session:       &http.Client{Timeout: timeout},
		apiKey:        opts.APIKey,
		baseURL:       baseURL,
		city:          opts.City,
		maxCandidates: maxCandidates,
		profiles:      profiles,
		geocodeCache:  opts.GeocodeCache,
		routeCache:    opts.RouteCache,
		log:           log.Named("ors"),
		backoff:       200 * time.Millisecond,
		now:           time.Now,
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
