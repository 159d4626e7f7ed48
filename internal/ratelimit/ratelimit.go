// Package ratelimit counts requests per key in fixed windows. The store is
// injected into the HTTP layer so handlers never share package-level state.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store decides whether one more request for key fits in the current window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Key builds the counter key for a client and action.
func Key(client, action string) string {
	return "ratelimit:" + strings.ToLower(action) + ":" + client
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a fixed-window counter held in process.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window), now: time.Now}
}

// Allow implements Store.
func (s *MemoryStore) Allow(ctx context.Context, key string, limit int, win time.Duration) (bool, error) {
	if limit <= 0 || win <= 0 {
		return false, fmt.Errorf("invalid rate limit %d per %s", limit, win)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(win)}
		s.windows[key] = w
		s.sweep(now)
	}
	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// sweep drops expired windows so idle clients do not accumulate.
func (s *MemoryStore) sweep(now time.Time) {
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
		}
	}
}
