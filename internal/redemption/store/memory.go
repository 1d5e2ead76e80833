package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"aurum/internal/redemption/models"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
)

// InMemory keeps requests in a map keyed by (user, request id).
type InMemory struct {
	mu       sync.RWMutex
	requests map[models.Key]models.Request
}

func NewInMemory() *InMemory {
	return &InMemory{requests: make(map[models.Key]models.Request)}
}

func (s *InMemory) Create(ctx context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.Key()
	if _, ok := s.requests[key]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.requests[key] = *r
	tx.OnRollback(ctx, func() { s.restore(key, nil) })
	return nil
}

func (s *InMemory) FindByKey(_ context.Context, key models.Key) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemory) FindOpenByUser(ctx context.Context, user id.Address) (*models.Request, error) {
	open, err := s.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, r := range open {
		if !r.Status.IsTerminal() {
			return r, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(ctx context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.Key()
	prev, ok := s.requests[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.requests[key] = *r
	tx.OnRollback(ctx, func() { s.restore(key, &prev) })
	return nil
}

func (s *InMemory) Delete(ctx context.Context, key models.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.requests[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.requests, key)
	tx.OnRollback(ctx, func() { s.restore(key, &prev) })
	return nil
}

// ListByUser returns the user's requests ordered by request id.
func (s *InMemory) ListByUser(_ context.Context, user id.Address) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Request
	for key, r := range s.requests {
		if key.User == user {
			r := r
			out = append(out, &r)
		}
	}
	slices.SortFunc(out, func(a, b *models.Request) int { return cmp.Compare(a.RequestID, b.RequestID) })
	return out, nil
}

func (s *InMemory) restore(key models.Key, prev *models.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.requests, key)
		return
	}
	s.requests[key] = *prev
}
