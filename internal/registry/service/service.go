// Package service is the role registry: it creates the token, holds its
// role assignments and pause flag, and allocates redemption request ids.
package service

import (
	"context"
	"errors"
	"log/slog"

	ledgermodels "aurum/internal/ledger/models"
	ledger "aurum/internal/ledger/service"
	"aurum/internal/registry/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/audit"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
	"aurum/pkg/requestcontext"
)

// Store persists the configuration record.
type Store interface {
	Create(ctx context.Context, cfg *models.Config) error
	Get(ctx context.Context, program id.Address) (*models.Config, error)
	Update(ctx context.Context, cfg *models.Config) error
	AdvanceCounter(ctx context.Context, program id.Address, expected, next uint64) error
}

// Ledger is the part of the token ledger the registry drives.
type Ledger interface {
	CreateMint(ctx context.Context, p ledger.MintParams) (*ledgermodels.Mint, error)
	SetAuthority(ctx context.Context, mint id.Address, which ledger.MintAuthorityType, current, next id.Address) error
}

// Service manages the configuration record of one deployed token.
type Service struct {
	store          Store
	ledger         Ledger
	tx             tx.Runner
	program        id.Address
	gatekeeper     id.Address
	bootstrapAdmin id.Address
	audit          *audit.Logger
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAudit(a *audit.Logger) Option {
	return func(s *Service) { s.audit = a }
}

// WithBootstrapAdmin restricts Initialize to one signer. Without it the
// first caller initializes the token.
func WithBootstrapAdmin(addr id.Address) Option {
	return func(s *Service) { s.bootstrapAdmin = addr }
}

// New creates a registry for program whose transfers are gated by gatekeeper.
func New(store Store, l Ledger, runner tx.Runner, program, gatekeeper id.Address, opts ...Option) *Service {
	s := &Service{
		store:      store,
		ledger:     l,
		tx:         runner,
		program:    program,
		gatekeeper: gatekeeper,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Program returns the program this registry configures.
func (s *Service) Program() id.Address { return s.program }

// InitParams assigns the initial role holders and fee schedule.
type InitParams struct {
	Admin            id.Address
	SupplyController id.Address
	AssetProtection  id.Address
	FeeController    id.Address
	Fee              ledgermodels.FeeConfig
}

// Initialize creates the mint with the asset-protection identity as its
// permanent delegate and hook authority, then writes the configuration.
// It succeeds once per program.
func (s *Service) Initialize(ctx context.Context, signer id.Address, p InitParams) (*models.Config, error) {
	if !s.bootstrapAdmin.IsZero() && signer != s.bootstrapAdmin {
		return nil, dErrors.Unauthorized()
	}
	if p.Admin.IsZero() || p.SupplyController.IsZero() || p.AssetProtection.IsZero() || p.FeeController.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "every role holder is required")
	}
	if err := p.Fee.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	cfg := &models.Config{
		Program:          s.program,
		Admin:            p.Admin,
		SupplyController: p.SupplyController,
		AssetProtection:  p.AssetProtection,
		FeeController:    p.FeeController,
		Mint:             id.MintAddress(s.program),
		Gatekeeper:       s.gatekeeper,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Get(ctx, s.program); err == nil {
			return dErrors.New(dErrors.CodeConflict, "token already initialized")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token config")
		}

		if _, err := s.ledger.CreateMint(ctx, ledger.MintParams{
			Address:           cfg.Mint,
			Decimals:          ledger.DefaultDecimals,
			MintAuthority:     id.MintAuthority(s.program),
			PermanentDelegate: p.AssetProtection,
			HookProgram:       s.gatekeeper,
			HookAuthority:     p.AssetProtection,
			Fee:               p.Fee,
			FeeAuthority:      p.FeeController,
		}); err != nil {
			return err
		}
		if err := s.store.Create(ctx, cfg); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeConflict, "token already initialized")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create token config")
		}
		return s.audit.Record(ctx, models.TokenInitialized{
			Mint:             cfg.Mint,
			Admin:            cfg.Admin,
			SupplyController: cfg.SupplyController,
			AssetProtection:  cfg.AssetProtection,
			FeeController:    cfg.FeeController,
			Gatekeeper:       cfg.Gatekeeper,
			Decimals:         ledger.DefaultDecimals,
			Fee:              p.Fee,
		}, "mint", cfg.Mint.String())
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Get returns the configuration record.
func (s *Service) Get(ctx context.Context) (*models.Config, error) {
	cfg, err := s.store.Get(ctx, s.program)
	if err != nil {
		return nil, wrapConfigErr(err)
	}
	return cfg, nil
}

// Authorize loads the configuration and checks that signer holds role.
// Inside a transaction the record stays locked until commit.
func (s *Service) Authorize(ctx context.Context, signer id.Address, role models.Role) (*models.Config, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Authorize(role, signer); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateRole hands role to holder. Only the administrator may change roles.
// Moving asset protection also moves the mint's permanent delegate and hook
// authority; moving the fee controller also moves the fee authority.
func (s *Service) UpdateRole(ctx context.Context, signer id.Address, role models.Role, holder id.Address) (*models.Config, error) {
	if holder.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "new role holder required")
	}
	var cfg *models.Config
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		cfg, err = s.Authorize(ctx, signer, models.RoleAdmin)
		if err != nil {
			return err
		}
		old, err := cfg.Assign(role, holder)
		if err != nil {
			return err
		}
		if err := s.rotateLedgerAuthorities(ctx, cfg.Mint, role, old, holder); err != nil {
			return err
		}
		cfg.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update token config")
		}
		return s.audit.Record(ctx, models.RoleUpdated{Mint: cfg.Mint, Role: role, Previous: old, Current: holder},
			"role", string(role), "old", old.String(), "new", holder.String())
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Service) rotateLedgerAuthorities(ctx context.Context, mint id.Address, role models.Role, old, holder id.Address) error {
	var slots []ledger.MintAuthorityType
	switch role {
	case models.RoleAssetProtection:
		slots = []ledger.MintAuthorityType{ledger.PermanentDelegate, ledger.HookAuthority}
	case models.RoleFeeController:
		slots = []ledger.MintAuthorityType{ledger.FeeAuthority}
	}
	for _, slot := range slots {
		if err := s.ledger.SetAuthority(ctx, mint, slot, old, holder); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) UpdateAdmin(ctx context.Context, signer, holder id.Address) (*models.Config, error) {
	return s.UpdateRole(ctx, signer, models.RoleAdmin, holder)
}

func (s *Service) UpdateSupplyController(ctx context.Context, signer, holder id.Address) (*models.Config, error) {
	return s.UpdateRole(ctx, signer, models.RoleSupplyController, holder)
}

func (s *Service) UpdateAssetProtection(ctx context.Context, signer, holder id.Address) (*models.Config, error) {
	return s.UpdateRole(ctx, signer, models.RoleAssetProtection, holder)
}

func (s *Service) UpdateFeeController(ctx context.Context, signer, holder id.Address) (*models.Config, error) {
	return s.UpdateRole(ctx, signer, models.RoleFeeController, holder)
}

// TogglePause flips the pause flag. Only the administrator may pause.
func (s *Service) TogglePause(ctx context.Context, signer id.Address) (*models.Config, error) {
	var cfg *models.Config
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		cfg, err = s.Authorize(ctx, signer, models.RoleAdmin)
		if err != nil {
			return err
		}
		cfg.IsPaused = !cfg.IsPaused
		cfg.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update token config")
		}
		return s.audit.Record(ctx, models.PauseToggled{Mint: cfg.Mint, IsPaused: cfg.IsPaused, Authority: signer},
			"is_paused", cfg.IsPaused)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// NextRequestID allocates the next redemption request id. Call it inside
// the transaction that creates the request so a failed creation releases
// the id.
func (s *Service) NextRequestID(ctx context.Context) (id.RequestID, error) {
	var next id.RequestID
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.Get(ctx)
		if err != nil {
			return err
		}
		next, err = cfg.NextRequestID()
		if err != nil {
			return err
		}
		if err := s.store.AdvanceCounter(ctx, s.program, cfg.RedemptionRequestCounter, uint64(next)); err != nil {
			if errors.Is(err, sentinel.ErrStale) {
				return dErrors.New(dErrors.CodeConflict, "redemption counter moved concurrently")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to advance redemption counter")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func wrapConfigErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "token not initialized")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token config")
}
