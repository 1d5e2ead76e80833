// Package service implements the token ledger: mints, token accounts,
// delegations, burns, fee withholding, and the transfer path that consults
// the mint's transfer hook before any balance moves.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"aurum/internal/ledger/metrics"
	"aurum/internal/ledger/models"
	"aurum/internal/platform/tracer"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
)

// Store is the persistence port the ledger needs.
type Store interface {
	CreateMint(ctx context.Context, mint *models.Mint) error
	FindMint(ctx context.Context, addr id.Address) (*models.Mint, error)
	UpdateMint(ctx context.Context, mint *models.Mint) error
	CreateAccount(ctx context.Context, acct *models.Account) error
	FindAccount(ctx context.Context, addr id.Address) (*models.Account, error)
	UpdateAccount(ctx context.Context, acct *models.Account) error
	ListAccounts(ctx context.Context, mint id.Address) ([]*models.Account, error)
}

// TransferHook approves or denies a transfer. It runs synchronously on the
// transfer path before any write and must not call back into the ledger.
// An error aborts the transfer with that error; a deny decision aborts it
// with AddressBlacklisted.
type TransferHook interface {
	Evaluate(ctx context.Context, transfer models.Transfer) (models.Decision, error)
}

// Service is the token ledger.
type Service struct {
	store   Store
	tx      tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer

	hooksMu sync.RWMutex
	hooks   map[id.Address]TransferHook
}

// Option configures the ledger.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// New creates a ledger. Every operation runs inside runner, joining the
// caller's transaction when ctx already carries one.
func New(store Store, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tx:     runner,
		logger: slog.New(slog.DiscardHandler),
		tracer: tracer.NewNoop(),
		hooks:  make(map[id.Address]TransferHook),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterHook installs the implementation invoked for mints whose hook
// program is program.
func (s *Service) RegisterHook(program id.Address, hook TransferHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks[program] = hook
}

func (s *Service) hookFor(program id.Address) (TransferHook, bool) {
	s.hooksMu.RLock()
	defer s.hooksMu.RUnlock()
	h, ok := s.hooks[program]
	return h, ok
}

func (s *Service) loadMint(ctx context.Context, addr id.Address) (*models.Mint, error) {
	m, err := s.store.FindMint(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "mint not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load mint")
	}
	return m, nil
}

func (s *Service) loadAccount(ctx context.Context, addr id.Address) (*models.Account, error) {
	a, err := s.store.FindAccount(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "token account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token account")
	}
	return a, nil
}

func (s *Service) saveMint(ctx context.Context, m *models.Mint) error {
	if err := s.store.UpdateMint(ctx, m); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save mint")
	}
	return nil
}

func (s *Service) saveAccount(ctx context.Context, a *models.Account) error {
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save token account")
	}
	return nil
}
