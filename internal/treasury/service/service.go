// Package service implements the supply controller and fee controller
// operations of the token, plus holder transfers and balance reads.
// Minting and every fee operation stop while the token is paused;
// transfers do not.
package service

import (
	"context"
	"log/slog"

	ledgermodels "aurum/internal/ledger/models"
	ledger "aurum/internal/ledger/service"
	registrymodels "aurum/internal/registry/models"
	"aurum/internal/treasury/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/audit"
	"aurum/pkg/platform/tx"
)

type Registry interface {
	Program() id.Address
	Get(ctx context.Context) (*registrymodels.Config, error)
	Authorize(ctx context.Context, signer id.Address, role registrymodels.Role) (*registrymodels.Config, error)
}

type Ledger interface {
	OpenAccount(ctx context.Context, mint, owner id.Address) (*ledgermodels.Account, error)
	AccountOf(ctx context.Context, mint, owner id.Address) (*ledgermodels.Account, error)
	Mint(ctx context.Context, addr id.Address) (*ledgermodels.Mint, error)
	MintTo(ctx context.Context, account, authority id.Address, amount uint64) error
	SetTransferFee(ctx context.Context, mint, authority id.Address, fee ledgermodels.FeeConfig) error
	WithdrawWithheldFromMint(ctx context.Context, mint, authority, destination id.Address) (uint64, error)
	WithdrawWithheldFromAccounts(ctx context.Context, mint, authority, destination id.Address, sources []id.Address) (uint64, error)
	HarvestToMint(ctx context.Context, mint id.Address, sources []id.Address) (uint64, error)
	Transfer(ctx context.Context, p ledger.TransferParams) (*ledger.TransferResult, error)
}

type Service struct {
	registry Registry
	ledger   Ledger
	tx       tx.Runner
	audit    *audit.Logger
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAudit(a *audit.Logger) Option {
	return func(s *Service) { s.audit = a }
}

func New(registry Registry, l Ledger, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		ledger:   l,
		tx:       runner,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MintTokens issues amount new tokens to recipient, opening the recipient's
// token account when it does not exist yet.
func (s *Service) MintTokens(ctx context.Context, signer, recipient id.Address, amount uint64) (*models.TokensMinted, error) {
	var event *models.TokensMinted
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.registry.Authorize(ctx, signer, registrymodels.RoleSupplyController)
		if err != nil {
			return err
		}
		if amount == 0 {
			return dErrors.InvalidAmount()
		}
		if err := cfg.EnsureActive(); err != nil {
			return err
		}
		if recipient.IsZero() {
			return dErrors.New(dErrors.CodeInvalidInput, "recipient required")
		}
		acct, err := s.ledger.OpenAccount(ctx, cfg.Mint, recipient)
		if err != nil {
			return err
		}
		if err := s.ledger.MintTo(ctx, acct.Address, id.MintAuthority(s.registry.Program()), amount); err != nil {
			return err
		}
		event = &models.TokensMinted{
			Mint:      cfg.Mint,
			To:        acct.Address,
			Amount:    amount,
			Authority: signer,
			Recipient: recipient,
		}
		return s.audit.Record(ctx, *event, "recipient", recipient.String(), "amount", amount)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "tokens minted", "recipient", recipient.String(), "amount", amount)
	return event, nil
}

// SetTransferFee replaces the transfer fee schedule.
func (s *Service) SetTransferFee(ctx context.Context, signer id.Address, fee ledgermodels.FeeConfig) (*models.TransferFeeUpdated, error) {
	var event *models.TransferFeeUpdated
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.feeController(ctx, signer)
		if err != nil {
			return err
		}
		if err := s.ledger.SetTransferFee(ctx, cfg.Mint, signer, fee); err != nil {
			return err
		}
		event = &models.TransferFeeUpdated{
			Mint:        cfg.Mint,
			BasisPoints: fee.BasisPoints,
			MaximumFee:  fee.MaximumFee,
			Authority:   signer,
		}
		return s.audit.Record(ctx, *event, "basis_points", fee.BasisPoints, "maximum_fee", fee.MaximumFee)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// WithdrawWithheldFromMint moves the fees harvested to the mint into
// destination, a token account of the mint.
func (s *Service) WithdrawWithheldFromMint(ctx context.Context, signer, destination id.Address) (*models.WithheldTokensWithdrawn, error) {
	var event *models.WithheldTokensWithdrawn
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.feeController(ctx, signer)
		if err != nil {
			return err
		}
		amount, err := s.ledger.WithdrawWithheldFromMint(ctx, cfg.Mint, signer, destination)
		if err != nil {
			return err
		}
		event = &models.WithheldTokensWithdrawn{
			Mint:        cfg.Mint,
			Destination: destination,
			Amount:      amount,
			Authority:   signer,
		}
		return s.audit.Record(ctx, *event, "destination", destination.String(), "amount", amount)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// WithdrawWithheldFromAccounts harvests the fees withheld in sources into
// destination.
func (s *Service) WithdrawWithheldFromAccounts(ctx context.Context, signer, destination id.Address, sources []id.Address) (*models.WithheldTokensWithdrawnFromAccounts, error) {
	var event *models.WithheldTokensWithdrawnFromAccounts
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.feeController(ctx, signer)
		if err != nil {
			return err
		}
		amount, err := s.ledger.WithdrawWithheldFromAccounts(ctx, cfg.Mint, signer, destination, sources)
		if err != nil {
			return err
		}
		event = &models.WithheldTokensWithdrawnFromAccounts{
			Mint:           cfg.Mint,
			Destination:    destination,
			SourceAccounts: sources,
			Amount:         amount,
			Authority:      signer,
		}
		return s.audit.Record(ctx, *event, "destination", destination.String(), "sources", len(sources), "amount", amount)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// HarvestWithheld moves the fees withheld in sources onto the mint. It needs
// no role and is not affected by the pause flag.
func (s *Service) HarvestWithheld(ctx context.Context, sources []id.Address) (uint64, error) {
	cfg, err := s.registry.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.ledger.HarvestToMint(ctx, cfg.Mint, sources)
}

func (s *Service) feeController(ctx context.Context, signer id.Address) (*registrymodels.Config, error) {
	cfg, err := s.registry.Authorize(ctx, signer, registrymodels.RoleFeeController)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureActive(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Transfer moves amount from the signer's token account to the recipient's.
// The gatekeeper decides whether it may happen; pausing does not stop it.
func (s *Service) Transfer(ctx context.Context, signer, recipient id.Address, amount uint64) (*ledger.TransferResult, error) {
	if amount == 0 {
		return nil, dErrors.InvalidAmount()
	}
	var result *ledger.TransferResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.registry.Get(ctx)
		if err != nil {
			return err
		}
		src, err := s.ledger.AccountOf(ctx, cfg.Mint, signer)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return dErrors.InsufficientBalance()
			}
			return err
		}
		dst, err := s.ledger.AccountOf(ctx, cfg.Mint, recipient)
		if err != nil {
			return err
		}
		result, err = s.ledger.Transfer(ctx, ledger.TransferParams{
			Source:      src.Address,
			Destination: dst.Address,
			Authority:   id.OwnerAuthority(signer),
			Amount:      amount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AccountOf returns owner's token account of the controlled mint.
func (s *Service) AccountOf(ctx context.Context, owner id.Address) (*ledgermodels.Account, error) {
	cfg, err := s.registry.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.AccountOf(ctx, cfg.Mint, owner)
}

// Mint returns the controlled mint.
func (s *Service) Mint(ctx context.Context) (*ledgermodels.Mint, error) {
	cfg, err := s.registry.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.Mint(ctx, cfg.Mint)
}
