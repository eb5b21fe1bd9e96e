// Package staging keeps short-lived per-session checkout state in memory.
package staging

import (
	"sync"
	"time"
)

type item[T any] struct {
	value     T
	expiresAt time.Time
}

// Store is a keyed, TTL-bounded map. Values are consumed with TakeOnce, which removes
// the entry atomically so a staged value can be handed out at most once.
type Store[T any] struct {
	mu    sync.Mutex
	items map[string]item[T]
	ttl   time.Duration
	now   func() time.Time
}

func NewStore[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		items: make(map[string]item[T]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Stage stores value under key, replacing anything staged before and restarting the TTL.
func (s *Store[T]) Stage(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = item[T]{value: value, expiresAt: s.now().Add(s.ttl)}
}

// TakeOnce returns and removes the live value under key.
func (s *Store[T]) TakeOnce(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(s.items, key)
	if !s.now().Before(it.expiresAt) {
		var zero T
		return zero, false
	}
	return it.value, true
}

// Peek returns the live value under key without consuming it.
func (s *Store[T]) Peek(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if !ok || !s.now().Before(it.expiresAt) {
		var zero T
		return zero, false
	}
	return it.value, true
}

func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Sweep drops expired entries and returns how many were removed.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, it := range s.items {
		if !now.Before(it.expiresAt) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
