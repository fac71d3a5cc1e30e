package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/platform/obs"
	"traffic-forecast-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "forecast:session:"

// RedisStore keeps each session as a JSON value with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return client, nil
}

func key(id string) string { return keyPrefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (_ *domain.SessionState, err error) {
	defer obs.Time(ctx, "session.redis.Load")(&err)

	if strings.TrimSpace(id) == "" {
		return nil, errors.New("load session: id must not be empty")
	}

	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session %q: %w", id, err)
	}

	var st domain.SessionState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("load session %q: decode: %w", id, err)
	}

	return &st, nil
}

func (s *RedisStore) Save(ctx context.Context, state *domain.SessionState) (err error) {
	defer obs.Time(ctx, "session.redis.Save")(&err)

	if state == nil || strings.TrimSpace(state.ID) == "" {
		return errors.New("save session: state must have an id")
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("save session %q: encode: %w", state.ID, err)
	}

	if err := s.client.Set(ctx, key(state.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %q: %w", state.ID, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %q: %w", id, err)
	}
	return nil
}
