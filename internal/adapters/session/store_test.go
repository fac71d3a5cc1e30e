package session

import (
	"context"
	"errors"
	"testing"
	"time"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmState(id string) *domain.SessionState {
	st := domain.NewSessionState(id)
	st.Stage = domain.StageConfirm
	st.StartQuery = "Fort"
	st.EndQuery = "Morar"
	st.Modes = domain.DefaultModes()
	st.StartCandidates = []domain.LocationCandidate{{Name: "Gwalior Fort", Coordinates: domain.Coordinates{Lon: 78.1691, Lat: 26.2303}}}
	st.EndCandidates = []domain.LocationCandidate{{Name: "Morar", Coordinates: domain.Coordinates{Lon: 78.2258, Lat: 26.2312}}}
	return st
}

func exerciseStore(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.True(t, errors.Is(err, ports.ErrSessionNotFound))

	want := confirmState("abc")
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Loaded values are copies.
	got.Stage = domain.StageSearch
	again, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.StageConfirm, again.Stage)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.True(t, errors.Is(err, ports.ErrSessionNotFound))

	assert.Error(t, store.Save(ctx, &domain.SessionState{}))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(context.Background(), confirmState("abc")))

	now = now.Add(2 * time.Minute)
	_, err := s.Load(context.Background(), "abc")
	assert.True(t, errors.Is(err, ports.ErrSessionNotFound))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, time.Hour)
	exerciseStore(t, store)

	require.NoError(t, store.Save(context.Background(), confirmState("ttl")))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"ttl"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(context.Background(), "ttl")
	assert.True(t, errors.Is(err, ports.ErrSessionNotFound))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
