package store

import (
	"context"
	"sync"

	"aurum/internal/registry/models"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
)

// InMemory keeps configuration records in a map.
type InMemory struct {
	mu      sync.RWMutex
	configs map[id.Address]*models.Config
}

// NewInMemory creates an empty configuration store.
func NewInMemory() *InMemory {
	return &InMemory{configs: make(map[id.Address]*models.Config)}
}

func (s *InMemory) Create(ctx context.Context, cfg *models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[cfg.Program]; ok {
		return sentinel.ErrAlreadyExists
	}
	cp := *cfg
	s.configs[cfg.Program] = &cp
	tx.OnRollback(ctx, func() { s.restore(cfg.Program, nil) })
	return nil
}

func (s *InMemory) Get(_ context.Context, program id.Address) (*models.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[program]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (s *InMemory) Update(ctx context.Context, cfg *models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.configs[cfg.Program]
	if !ok {
		return sentinel.ErrNotFound
	}
	cp := *cfg
	cp.RedemptionRequestCounter = prev.RedemptionRequestCounter // moves only through AdvanceCounter
	s.configs[cfg.Program] = &cp
	tx.OnRollback(ctx, func() { s.restore(cfg.Program, prev) })
	return nil
}

func (s *InMemory) AdvanceCounter(ctx context.Context, program id.Address, expected, next uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.configs[program]
	if !ok {
		return sentinel.ErrNotFound
	}
	if prev.RedemptionRequestCounter != expected {
		return sentinel.ErrStale
	}
	cp := *prev
	cp.RedemptionRequestCounter = next
	s.configs[program] = &cp
	tx.OnRollback(ctx, func() { s.restore(program, prev) })
	return nil
}

func (s *InMemory) restore(program id.Address, prev *models.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.configs, program)
		return
	}
	s.configs[program] = prev
}
