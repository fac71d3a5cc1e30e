package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// City is the single city searches are biased toward.
type City struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

// ORSConfig configures the OpenRouteService geocoder and directions client.
type ORSConfig struct {
	APIKey        string
	BaseURL       string
	MaxCandidates int
	Profiles      map[string]string
	RouteCacheTTL time.Duration
}

// WeatherConfig configures the optional live-conditions provider.
type WeatherConfig struct {
	APIKey  string
	BaseURL string
}

// ServiceConfig holds all configuration for the forecast service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DatabaseURL string
	RedisURL    string
	SessionTTL  time.Duration
	SeedPath    string
	City        City
	ORS         ORSConfig
	Weather     WeatherConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("SEED_PATH", "data/seeds/places.json")

	v.SetDefault("CITY_NAME", "Gwalior")
	v.SetDefault("CITY_COUNTRY", "IN")
	v.SetDefault("CITY_LAT", 26.2183)
	v.SetDefault("CITY_LON", 78.1828)

	v.SetDefault("ORS_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("GEOCODE_MAX_CANDIDATES", 5)
	v.SetDefault("ORS_PROFILE_CAR", "driving-car")
	v.SetDefault("ORS_PROFILE_TWO_WHEELER", "cycling-electric")
	v.SetDefault("ORS_PROFILE_WALKING", "foot-walking")
	v.SetDefault("ROUTE_CACHE_TTL", "15m")

	v.SetDefault("WEATHER_BASE_URL", "https://api.openweathermap.org")
}

// Load reads configuration from a .env file (if any) and the environment.
func Load() (*ServiceConfig, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	sessionTTL, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("config: SESSION_TTL: %w", err)
	}

	routeTTL, err := time.ParseDuration(v.GetString("ROUTE_CACHE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("config: ROUTE_CACHE_TTL: %w", err)
	}

	maxCandidates := v.GetInt("GEOCODE_MAX_CANDIDATES")
	if maxCandidates < 1 || maxCandidates > 20 {
		return nil, fmt.Errorf("config: GEOCODE_MAX_CANDIDATES must be between 1 and 20, got %d", maxCandidates)
	}

	port := strings.TrimPrefix(strings.TrimSpace(v.GetString("PORT")), ":")

	cfg := &ServiceConfig{
		Port:        ":" + port,
		AppEnv:      v.GetString("APP_ENV"),
		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(v.GetString("REDIS_URL")),
		SessionTTL:  sessionTTL,
		SeedPath:    v.GetString("SEED_PATH"),
		City: City{
			Name:    v.GetString("CITY_NAME"),
			Country: v.GetString("CITY_COUNTRY"),
			Lat:     v.GetFloat64("CITY_LAT"),
			Lon:     v.GetFloat64("CITY_LON"),
		},
		ORS: ORSConfig{
			APIKey:        strings.TrimSpace(v.GetString("ORS_API_KEY")),
			BaseURL:       strings.TrimRight(v.GetString("ORS_BASE_URL"), "/"),
			MaxCandidates: maxCandidates,
			Profiles: map[string]string{
				"car":         v.GetString("ORS_PROFILE_CAR"),
				"two_wheeler": v.GetString("ORS_PROFILE_TWO_WHEELER"),
				"walking":     v.GetString("ORS_PROFILE_WALKING"),
			},
			RouteCacheTTL: routeTTL,
		},
		Weather: WeatherConfig{
			APIKey:  strings.TrimSpace(v.GetString("WEATHER_API_KEY")),
			BaseURL: strings.TrimRight(v.GetString("WEATHER_BASE_URL"), "/"),
		},
	}

	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *ServiceConfig) Validate() error {
	if c.ORS.APIKey == "" {
		return fmt.Errorf("config: ORS_API_KEY is required")
	}
	if c.City.Name == "" {
		return fmt.Errorf("config: CITY_NAME is required")
	}
	return nil
}

// Get returns the environment value for key or the fallback.
func Get(key, fallback string) string {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(key, fallback)
	return v.GetString(key)
}
