package idempotency

import (
	"context"
	"sync"
	"time"
)

// InMemory keeps records in process memory. Expired records are swept
// lazily on Claim.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]*CachedResponse
	now     func() time.Time
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]*CachedResponse), now: time.Now}
}

func (s *InMemory) Get(_ context.Context, key string) (*CachedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.ExpiresAt) {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (s *InMemory) Claim(_ context.Context, key, requestHash string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if now.After(e.ExpiresAt) {
			delete(s.entries, k)
		}
	}
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = &CachedResponse{RequestHash: requestHash, ExpiresAt: now.Add(ttl)}
	return true, nil
}

func (s *InMemory) Save(_ context.Context, key string, response *CachedResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *response
	cp.ExpiresAt = s.now().Add(ttl)
	s.entries[key] = &cp
	return nil
}

func (s *InMemory) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
