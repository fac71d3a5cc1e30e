package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/platform/obs"
)

// SQLGeocodeCache is a SQL-backed cache mapping normalized query text to
// geocoder candidates. Keys are expected to be normalized by the caller.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch cached candidates for a query.
func (s *SQLGeocodeCache) Get(
	ctx context.Context,
	query string,
) (_ []domain.LocationCandidate, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, errors.New("get geocode cache: query must not be empty")
	}

	q := `
	SELECT candidates
    FROM geocode_cache
    WHERE query = $1;
	`

	var raw []byte
	if err := s.DB.QueryRowContext(ctx, q, query).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	var out []domain.LocationCandidate
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("get geocode cache: decode candidates for %q: %w", query, err)
	}

	if len(out) == 0 {
		return nil, false, nil
	}

	return out, true, nil
}

// Store query -> candidates in the cache.
func (s *SQLGeocodeCache) Put(ctx context.Context, query string, candidates []domain.LocationCandidate) error {
	return s.PutMany(ctx, map[string][]domain.LocationCandidate{query: candidates})
}

// Store many query -> candidates mappings in one transaction.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string][]domain.LocationCandidate) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (query, candidates, created_at)
    VALUES ($1, $2, now())
	ON CONFLICT (query) DO UPDATE
	SET candidates = EXCLUDED.candidates,
		created_at = EXCLUDED.created_at;
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for query, cands := range results {
		if strings.TrimSpace(query) == "" {
			return fmt.Errorf("insert geocode cache: empty query key")
		}

		if len(cands) == 0 {
			continue
		}

		raw, err := json.Marshal(cands)
		if err != nil {
			return fmt.Errorf("insert geocode cache query=%q: encode: %w", query, err)
		}

		if _, err := stmt.ExecContext(ctx, query, raw); err != nil {
			return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}
