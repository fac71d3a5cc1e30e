//go:build integration

package cache_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"
	"traffic-forecast-service/internal/adapters/cache"
	"traffic-forecast-service/internal/adapters/repositories"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/ports"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container and returns a migrated *sql.DB.
func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_forecast",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/test_forecast?sslmode=disable", host, port.Port())

	var db *sql.DB
	require.Eventually(t, func() bool {
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return false
		}
		return db.PingContext(ctx) == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repositories.InitSchema(ctx, db))
	return db
}

func TestSQLCaches(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	t.Run("geocode round trip", func(t *testing.T) {
		c := cache.NewSQLGeocodeCache(db)

		_, ok, err := c.Get(ctx, "gwalior fort")
		require.NoError(t, err)
		assert.False(t, ok)

		want := []domain.LocationCandidate{{
			Name:        "Gwalior Fort",
			Label:       "Gwalior Fort, Gwalior",
			Coordinates: domain.Coordinates{Lon: 78.1691, Lat: 26.2303},
		}}
		require.NoError(t, c.Put(ctx, "gwalior fort", want))

		got, ok, err := c.Get(ctx, "gwalior fort")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("route freshness", func(t *testing.T) {
		c := cache.NewSQLRouteCache(db, 10*time.Minute)
		from := domain.Coordinates{Lon: 78.1691, Lat: 26.2303}
		to := domain.Coordinates{Lon: 78.1980, Lat: 26.2110}

		leg := &ports.RouteLeg{
			DistanceMeters:  4210,
			DurationSeconds: 612,
			Congestion:      domain.CongestionUnreported,
			Path:            []domain.Coordinates{from, to},
		}
		require.NoError(t, c.Put(ctx, "driving-car", from, to, leg))

		got, ok, err := c.Get(ctx, "driving-car", from, to)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, leg, got)

		_, ok, err = c.Get(ctx, "foot-walking", from, to)
		require.NoError(t, err)
		assert.False(t, ok)

		stale := cache.NewSQLRouteCache(db, -time.Minute)
		_, ok, err = stale.Get(ctx, "driving-car", from, to)
		require.NoError(t, err)
		assert.False(t, ok, "rows older than TTL are misses")

		n, err := stale.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("seed landmarks", func(t *testing.T) {
		c := cache.NewSQLGeocodeCache(db)
		n, err := repositories.SeedPlacesFromJSON(ctx, c, "../../../data/seeds/places.json")
		require.NoError(t, err)
		assert.Greater(t, n, 0)

		got, ok, err := c.Get(ctx, "iiitm")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "ABV-IIITM", got[0].Name)
	})
}
