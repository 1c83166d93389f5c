package prefs

import (
	"context"
	"sync"
)

// memoryStore keeps preferences in-process only. Used by tests and for
// running the daemon without a database file.
type memoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemory() Store {
	return &memoryStore{m: map[string]string{}}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memoryStore) Put(ctx context.Context, key, value string) error {
	_ = ctx
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memoryStore) Close() error { return nil }
