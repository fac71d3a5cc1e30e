package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/ports"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore is a process-local store used when no Redis is configured.
// States are stored as JSON copies so callers never share mutable state.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil, ports.ErrSessionNotFound
	}

	var st domain.SessionState
	if err := json.Unmarshal(e.raw, &st); err != nil {
		return nil, fmt.Errorf("load session %q: decode: %w", id, err)
	}
	return &st, nil
}

func (s *MemoryStore) Save(_ context.Context, state *domain.SessionState) error {
	if state == nil || strings.TrimSpace(state.ID) == "" {
		return errors.New("save session: state must have an id")
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("save session %q: encode: %w", state.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.entries[state.ID] = memoryEntry{raw: raw, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
