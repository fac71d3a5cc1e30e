package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"traffic-forecast-service/internal/adapters/cache"
	"traffic-forecast-service/internal/adapters/mapview"
	"traffic-forecast-service/internal/adapters/ors"
	"traffic-forecast-service/internal/adapters/session"
	"traffic-forecast-service/internal/adapters/weather"
	"traffic-forecast-service/internal/api"
	"traffic-forecast-service/internal/config"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/platform/db"
	"traffic-forecast-service/internal/platform/logger"
	"traffic-forecast-service/internal/platform/obs"
	"traffic-forecast-service/internal/ports"
	"traffic-forecast-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var indiaStandardTime = time.FixedZone("IST", 5*3600+30*60)

// main is the application composition root.
// It wires concrete adapters (ORS, Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "traffic-forecast")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	obs.SetLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		geocodeCache ports.GeocodeCache
		routeCache   ports.RouteCache
	)
	if cfg.DatabaseURL != "" {
		pg, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database unavailable", zap.Error(err))
		}
		defer pg.Close()

		geocodeCache, routeCache = sqlCaches(pg, cfg.ORS.RouteCacheTTL)
		log.Info("postgres caches enabled")
	} else {
		log.Warn("DATABASE_URL not set, ORS responses are not cached")
	}

	// ORS provider uses persistent Postgres caches to avoid repeated geocode/directions calls.
	provider, err := ors.NewORSProvider(ors.Options{
		APIKey:  cfg.ORS.APIKey,
		BaseURL: cfg.ORS.BaseURL,
		City: ors.CityBias{
			Name:    cfg.City.Name,
			Country: cfg.City.Country,
			Center:  domain.Coordinates{Lon: cfg.City.Lon, Lat: cfg.City.Lat},
		},
		MaxCandidates: cfg.ORS.MaxCandidates,
		Profiles:      profiles(cfg.ORS.Profiles),
		GeocodeCache:  geocodeCache,
		RouteCache:    routeCache,
		Logger:        log,
	})
	if err != nil {
		log.Fatal("ors provider", zap.Error(err))
	}

	store, closeStore := sessionStore(ctx, cfg, log)
	defer closeStore()

	deps := services.Deps{
		Geocoder: provider,
		Router:   provider,
		Renderer: mapview.NewGeoJSONRenderer(),
		Store:    store,
		Logger:   log,
	}
	if cfg.Weather.APIKey != "" {
		w, err := weather.NewOpenWeatherMap(cfg.Weather.APIKey, cfg.Weather.BaseURL, indiaStandardTime, log)
		if err != nil {
			log.Fatal("weather provider", zap.Error(err))
		}
		deps.Conditions = w
	}

	wf, err := services.NewWorkflow(deps)
	if err != nil {
		log.Fatal("workflow", zap.Error(err))
	}

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(wf, cfg.SessionTTL, log)

	// Timeouts are tuned for cold-cache forecasts (three sequential directions calls).
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server forced shutdown", zap.Error(err))
	}
}

func sqlCaches(pg *sql.DB, routeTTL time.Duration) (ports.GeocodeCache, ports.RouteCache) {
	return cache.NewSQLGeocodeCache(pg), cache.NewSQLRouteCache(pg, routeTTL)
}

// sessionStore prefers Redis and falls back to process memory.
func sessionStore(ctx context.Context, cfg *config.ServiceConfig, log *zap.Logger) (ports.SessionStore, func()) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, sessions are kept in memory")
		return session.NewMemoryStore(cfg.SessionTTL), func() {}
	}

	client, err := session.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("redis unavailable", zap.Error(err))
	}
	log.Info("redis sessions enabled")
	return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }
}

func profiles(raw map[string]string) map[domain.TransportMode]string {
	out := ors.DefaultProfiles()
	for mode, profile := range raw {
		if profile != "" {
			out[domain.TransportMode(mode)] = profile
		}
	}
	return out
}
