package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/platform/obs"
	"traffic-forecast-service/internal/ports"
)

// SQLRouteCache is a SQL-backed cache for profile/origin->destination
// directions results. Rows older than TTL are treated as misses.
type SQLRouteCache struct {
	DB  *sql.DB
	TTL time.Duration
	now func() time.Time
}

func NewSQLRouteCache(db *sql.DB, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl, now: time.Now}
}

// pointKey renders coordinates at ~10cm precision so equal points share a key.
func pointKey(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lat, 'f', 6, 64)
}

// Fetch a fresh cached leg.
func (s *SQLRouteCache) Get(
	ctx context.Context,
	profile string,
	from, to domain.Coordinates,
) (_ *ports.RouteLeg, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(profile) == "" {
		return nil, false, errors.New("get route cache: profile must not be empty")
	}

	q := `
	SELECT distance_meters, duration_seconds, congestion, path
    FROM route_cache
    WHERE profile = $1
        AND origin = $2
        AND destination = $3
        AND fetched_at >= $4;
	`

	cutoff := s.now().Add(-s.TTL)

	var (
		leg ports.RouteLeg
		raw []byte
	)
	err = s.DB.QueryRowContext(ctx, q, profile, pointKey(from), pointKey(to), cutoff).
		Scan(&leg.DistanceMeters, &leg.DurationSeconds, &leg.Congestion, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if err := json.Unmarshal(raw, &leg.Path); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode path: %w", err)
	}

	return &leg, true, nil
}

// Store one leg, replacing any previous entry for the same key.
func (s *SQLRouteCache) Put(
	ctx context.Context,
	profile string,
	from, to domain.Coordinates,
	leg *ports.RouteLeg,
) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(profile) == "" {
		return errors.New("insert route cache: profile must not be empty")
	}

	if leg == nil {
		return errors.New("insert route cache: leg must not be nil")
	}

	raw, err := json.Marshal(leg.Path)
	if err != nil {
		return fmt.Errorf("insert route cache: encode path: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (profile, origin, destination, distance_meters, duration_seconds, congestion, path, fetched_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (profile, origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		congestion = EXCLUDED.congestion,
		path = EXCLUDED.path,
		fetched_at = EXCLUDED.fetched_at;
	`, profile, pointKey(from), pointKey(to), leg.DistanceMeters, leg.DurationSeconds, leg.Congestion, raw, s.now())
	if err != nil {
		return fmt.Errorf("insert route cache profile=%q: %w", profile, err)
	}

	return nil
}

// PurgeExpired deletes rows older than TTL and returns how many were removed.
func (s *SQLRouteCache) PurgeExpired(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("route cache: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM route_cache WHERE fetched_at < $1;`, s.now().Add(-s.TTL))
	if err != nil {
		return 0, fmt.Errorf("purge route cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge route cache: rows affected: %w", err)
	}

	return n, nil
}
