package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"aurum/internal/ledger/models"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
)

// InMemory keeps ledger state in maps. Values are copied in and out so
// callers never alias stored state.
type InMemory struct {
	mu       sync.RWMutex
	mints    map[id.Address]*models.Mint
	accounts map[id.Address]*models.Account
}

// NewInMemory creates an empty ledger store.
func NewInMemory() *InMemory {
	return &InMemory{
		mints:    make(map[id.Address]*models.Mint),
		accounts: make(map[id.Address]*models.Account),
	}
}

func (s *InMemory) CreateMint(ctx context.Context, mint *models.Mint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mints[mint.Address]; ok {
		return sentinel.ErrAlreadyExists
	}
	cp := *mint
	s.mints[mint.Address] = &cp
	tx.OnRollback(ctx, func() { s.restoreMint(mint.Address, nil) })
	return nil
}

func (s *InMemory) FindMint(_ context.Context, addr id.Address) (*models.Mint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mints[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *InMemory) UpdateMint(ctx context.Context, mint *models.Mint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.mints[mint.Address]
	if !ok {
		return sentinel.ErrNotFound
	}
	cp := *mint
	s.mints[mint.Address] = &cp
	tx.OnRollback(ctx, func() { s.restoreMint(mint.Address, prev) })
	return nil
}

func (s *InMemory) restoreMint(addr id.Address, prev *models.Mint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.mints, addr)
		return
	}
	s.mints[addr] = prev
}

func (s *InMemory) CreateAccount(ctx context.Context, acct *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acct.Address]; ok {
		return sentinel.ErrAlreadyExists
	}
	cp := *acct
	s.accounts[acct.Address] = &cp
	tx.OnRollback(ctx, func() { s.restoreAccount(acct.Address, nil) })
	return nil
}

func (s *InMemory) FindAccount(_ context.Context, addr id.Address) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) UpdateAccount(ctx context.Context, acct *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.accounts[acct.Address]
	if !ok {
		return sentinel.ErrNotFound
	}
	cp := *acct
	s.accounts[acct.Address] = &cp
	tx.OnRollback(ctx, func() { s.restoreAccount(acct.Address, prev) })
	return nil
}

func (s *InMemory) restoreAccount(addr id.Address, prev *models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.accounts, addr)
		return
	}
	s.accounts[addr] = prev
}

func (s *InMemory) ListAccounts(_ context.Context, mint id.Address) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Account
	for _, key := range slices.SortedFunc(maps.Keys(s.accounts), compareAddress) {
		if a := s.accounts[key]; a.Mint == mint {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func compareAddress(a, b id.Address) int {
	return slices.Compare(a[:], b[:])
}
