// Package service manages the blacklist and the forced burn of blacklisted
// holdings. Neither is affected by the pause flag.
package service

import (
	"context"
	"errors"
	"log/slog"

	"aurum/internal/compliance/metrics"
	"aurum/internal/compliance/models"
	ledgermodels "aurum/internal/ledger/models"
	registrymodels "aurum/internal/registry/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/audit"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
	"aurum/pkg/requestcontext"
)

type Blacklist interface {
	Add(ctx context.Context, entry *models.Entry) error
	Remove(ctx context.Context, addr id.Address) error
	Contains(ctx context.Context, addr id.Address) (bool, error)
	List(ctx context.Context) ([]*models.Entry, error)
}

// Registry authorizes role holders.
type Registry interface {
	Authorize(ctx context.Context, signer id.Address, role registrymodels.Role) (*registrymodels.Config, error)
}

// Ledger is the part of the token ledger blacklist edits and wipes need.
type Ledger interface {
	Mint(ctx context.Context, addr id.Address) (*ledgermodels.Mint, error)
	AccountOf(ctx context.Context, mint, owner id.Address) (*ledgermodels.Account, error)
	Burn(ctx context.Context, account id.Address, authority id.Authority, amount uint64) error
}

type Service struct {
	blacklist Blacklist
	registry  Registry
	ledger    Ledger
	tx        tx.Runner
	audit     *audit.Logger
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAudit(a *audit.Logger) Option {
	return func(s *Service) { s.audit = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(blacklist Blacklist, registry Registry, l Ledger, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		blacklist: blacklist,
		registry:  registry,
		ledger:    l,
		tx:        runner,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorizeListing checks that signer is the asset-protection officer and
// that the mint's transfer hook is still administered by that officer.
func (s *Service) authorizeListing(ctx context.Context, signer id.Address) error {
	cfg, err := s.registry.Authorize(ctx, signer, registrymodels.RoleAssetProtection)
	if err != nil {
		return err
	}
	mint, err := s.ledger.Mint(ctx, cfg.Mint)
	if err != nil {
		return err
	}
	if mint.HookAuthority != signer {
		s.logger.WarnContext(ctx, "transfer hook authority out of sync with asset protection",
			"mint", cfg.Mint.String(),
			"hook_authority", mint.HookAuthority.String(),
		)
		return dErrors.Unauthorized()
	}
	return nil
}

// AddToBlacklist lists addr. Only the asset-protection officer may list.
// Listing an already listed address is a conflict.
func (s *Service) AddToBlacklist(ctx context.Context, signer, addr id.Address) (*models.Entry, error) {
	if addr.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "address required")
	}
	entry := &models.Entry{Address: addr, CreatedAt: requestcontext.Now(ctx)}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.authorizeListing(ctx, signer); err != nil {
			return err
		}
		if err := s.blacklist.Add(ctx, entry); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeConflict, "address already blacklisted")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add blacklist entry")
		}
		return s.audit.Record(ctx, models.AddressBlacklisted{Address: addr, Authority: signer}, "address", addr.String())
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncBlacklistSize()
	}
	return entry, nil
}

// RemoveFromBlacklist delists addr. Only the asset-protection officer may
// delist; an unlisted address fails with AddressNotBlacklisted.
func (s *Service) RemoveFromBlacklist(ctx context.Context, signer, addr id.Address) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.authorizeListing(ctx, signer); err != nil {
			return err
		}
		if err := s.blacklist.Remove(ctx, addr); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.AddressNotBlacklisted()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove blacklist entry")
		}
		return s.audit.Record(ctx, models.AddressUnblacklisted{Address: addr, Authority: signer}, "address", addr.String())
	})
	if err == nil && s.metrics != nil {
		s.metrics.DecBlacklistSize()
	}
	return err
}

// IsBlacklisted reports whether addr is listed.
func (s *Service) IsBlacklisted(ctx context.Context, addr id.Address) (bool, error) {
	listed, err := s.blacklist.Contains(ctx, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check blacklist")
	}
	return listed, nil
}

// List returns every listed address.
func (s *Service) List(ctx context.Context) ([]*models.Entry, error) {
	entries, err := s.blacklist.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blacklist")
	}
	return entries, nil
}

// SyncMetrics sets the blacklist size gauge from storage.
func (s *Service) SyncMetrics(ctx context.Context) error {
	if s.metrics == nil {
		return nil
	}
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}
	s.metrics.SetBlacklistSize(len(entries))
	return nil
}

// WipeBlacklistedAddress burns amount from addr's account using the mint's
// permanent delegate. Only the asset-protection officer may wipe, and only
// a listed address.
func (s *Service) WipeBlacklistedAddress(ctx context.Context, signer, addr id.Address, amount uint64) (*models.TokensWiped, error) {
	var event *models.TokensWiped
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.registry.Authorize(ctx, signer, registrymodels.RoleAssetProtection)
		if err != nil {
			return err
		}
		if amount == 0 {
			return dErrors.InvalidAmount()
		}
		listed, err := s.blacklist.Contains(ctx, addr)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check blacklist")
		}
		if !listed {
			return dErrors.AddressNotBlacklisted()
		}

		acct, err := s.ledger.AccountOf(ctx, cfg.Mint, addr)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return dErrors.InsufficientBalance()
			}
			return err
		}
		if err := s.ledger.Burn(ctx, acct.Address, id.SeizureAuthority(cfg.AssetProtection), amount); err != nil {
			return err
		}
		event = &models.TokensWiped{Address: addr, Account: acct.Address, Amount: amount, Authority: signer}
		return s.audit.Record(ctx, *event, "address", addr.String(), "amount", amount)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AddWiped(amount)
	}
	return event, nil
}
