package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"aurum/internal/compliance/models"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
)

// InMemory keeps the blacklist in a map keyed by address.
type InMemory struct {
	mu      sync.RWMutex
	entries map[id.Address]models.Entry
}

// NewInMemory creates an empty blacklist.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[id.Address]models.Entry)}
}

func (s *InMemory) Add(ctx context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.Address]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.entries[entry.Address] = *entry
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.entries, entry.Address)
	})
	return nil
}

func (s *InMemory) Remove(ctx context.Context, addr id.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.entries[addr]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, addr)
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.entries[addr] = prev
	})
	return nil
}

func (s *InMemory) Contains(_ context.Context, addr id.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[addr]
	return ok, nil
}

// List returns entries ordered by address.
func (s *InMemory) List(_ context.Context) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := slices.SortedFunc(maps.Keys(s.entries), func(a, b id.Address) int {
		return slices.Compare(a[:], b[:])
	})
	out := make([]*models.Entry, 0, len(keys))
	for _, k := range keys {
		e := s.entries[k]
		out = append(out, &e)
	}
	return out, nil
}
