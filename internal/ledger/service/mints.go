package service

import (
	"context"
	"errors"

	"aurum/internal/ledger/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/requestcontext"
)

// DefaultDecimals is the precision of newly created mints.
const DefaultDecimals = 9

// MintParams describes a new mint and the authorities installed on it.
type MintParams struct {
	Address           id.Address
	Decimals          uint8
	MintAuthority     id.Address
	PermanentDelegate id.Address
	HookProgram       id.Address
	HookAuthority     id.Address
	Fee               models.FeeConfig
	FeeAuthority      id.Address
}

// MintAuthorityType names a rotatable authority on a mint.
type MintAuthorityType string

const (
	PermanentDelegate MintAuthorityType = "permanent_delegate"
	HookAuthority     MintAuthorityType = "transfer_hook_authority"
	FeeAuthority      MintAuthorityType = "transfer_fee_config_authority"
)

// CreateMint creates a mint with zero supply.
func (s *Service) CreateMint(ctx context.Context, p MintParams) (*models.Mint, error) {
	if p.Address.IsZero() || p.MintAuthority.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "mint address and mint authority required")
	}
	if err := p.Fee.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	mint := &models.Mint{
		Address:           p.Address,
		Decimals:          p.Decimals,
		MintAuthority:     p.MintAuthority,
		PermanentDelegate: p.PermanentDelegate,
		HookProgram:       p.HookProgram,
		HookAuthority:     p.HookAuthority,
		Fee:               p.Fee,
		FeeAuthority:      p.FeeAuthority,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateMint(ctx, mint); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeConflict, "mint already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create mint")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "mint created", "mint", mint.Address.String(), "decimals", mint.Decimals)
	return mint, nil
}

// MintTo issues amount new tokens into the account. authority must be the
// mint's mint authority.
func (s *Service) MintTo(ctx context.Context, account, authority id.Address, amount uint64) error {
	if amount == 0 {
		return dErrors.InvalidAmount()
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		acct, err := s.loadAccount(ctx, account)
		if err != nil {
			return err
		}
		mint, err := s.loadMint(ctx, acct.Mint)
		if err != nil {
			return err
		}
		if authority != mint.MintAuthority {
			return dErrors.Unauthorized()
		}
		if err := mint.IssueSupply(amount); err != nil {
			return err
		}
		if err := acct.Credit(amount); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		acct.UpdatedAt, mint.UpdatedAt = now, now
		if err := s.saveMint(ctx, mint); err != nil {
			return err
		}
		return s.saveAccount(ctx, acct)
	})
	if err == nil && s.metrics != nil {
		s.metrics.AddMinted(amount)
	}
	return err
}

// SetTransferFee replaces the mint's fee schedule. authority must be the
// mint's fee authority.
func (s *Service) SetTransferFee(ctx context.Context, mintAddr, authority id.Address, fee models.FeeConfig) error {
	if err := fee.Validate(); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		mint, err := s.loadMint(ctx, mintAddr)
		if err != nil {
			return err
		}
		if mint.FeeAuthority.IsZero() || authority != mint.FeeAuthority {
			return dErrors.Unauthorized()
		}
		mint.Fee = fee
		mint.UpdatedAt = requestcontext.Now(ctx)
		return s.saveMint(ctx, mint)
	})
}

// SetAuthority rotates one of the mint's standing authorities from current
// to next. current must match the installed authority.
func (s *Service) SetAuthority(ctx context.Context, mintAddr id.Address, which MintAuthorityType, current, next id.Address) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		mint, err := s.loadMint(ctx, mintAddr)
		if err != nil {
			return err
		}
		var slot *id.Address
		switch which {
		case PermanentDelegate:
			slot = &mint.PermanentDelegate
		case HookAuthority:
			slot = &mint.HookAuthority
		case FeeAuthority:
			slot = &mint.FeeAuthority
		default:
			return dErrors.New(dErrors.CodeInvalidInput, "unknown mint authority type")
		}
		if slot.IsZero() || *slot != current {
			return dErrors.Unauthorized()
		}
		*slot = next
		mint.UpdatedAt = requestcontext.Now(ctx)
		if err := s.saveMint(ctx, mint); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "mint authority rotated",
			"mint", mintAddr.String(),
			"authority_type", string(which),
			"old", current.String(),
			"new", next.String(),
		)
		return nil
	})
}

// WithdrawWithheldFromMint moves the fees harvested to the mint into the
// destination account and returns the amount moved.
func (s *Service) WithdrawWithheldFromMint(ctx context.Context, mintAddr, authority, destination id.Address) (uint64, error) {
	var withdrawn uint64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		mint, err := s.loadMint(ctx, mintAddr)
		if err != nil {
			return err
		}
		if mint.FeeAuthority.IsZero() || authority != mint.FeeAuthority {
			return dErrors.Unauthorized()
		}
		dest, err := s.accountOfMint(ctx, destination, mintAddr)
		if err != nil {
			return err
		}
		withdrawn = mint.WithheldAmount
		if withdrawn == 0 {
			return nil
		}
		if err := dest.Credit(withdrawn); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		mint.WithheldAmount = 0
		mint.UpdatedAt, dest.UpdatedAt = now, now
		if err := s.saveMint(ctx, mint); err != nil {
			return err
		}
		return s.saveAccount(ctx, dest)
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.AddWithdrawn(withdrawn)
	}
	return withdrawn, nil
}

// WithdrawWithheldFromAccounts harvests the fees withheld in each source
// account into the destination account and returns the total moved.
func (s *Service) WithdrawWithheldFromAccounts(ctx context.Context, mintAddr, authority, destination id.Address, sources []id.Address) (uint64, error) {
	if len(sources) == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "at least one source account required")
	}
	var total uint64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		mint, err := s.loadMint(ctx, mintAddr)
		if err != nil {
			return err
		}
		if mint.FeeAuthority.IsZero() || authority != mint.FeeAuthority {
			return dErrors.Unauthorized()
		}
		dest, err := s.accountOfMint(ctx, destination, mintAddr)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		seen := make(map[id.Address]struct{}, len(sources))
		for _, addr := range sources {
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}

			// The destination may be one of its own sources.
			src := dest
			if addr != destination {
				if src, err = s.accountOfMint(ctx, addr, mintAddr); err != nil {
					return err
				}
			}
			if src.WithheldAmount == 0 {
				continue
			}
			harvested := src.WithheldAmount
			src.WithheldAmount = 0
			if err := dest.Credit(harvested); err != nil {
				return err
			}
			total += harvested
			if src != dest {
				src.UpdatedAt = now
				if err := s.saveAccount(ctx, src); err != nil {
					return err
				}
			}
		}
		dest.UpdatedAt = now
		return s.saveAccount(ctx, dest)
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.AddWithdrawn(total)
	}
	return total, nil
}

// HarvestToMint moves the fees withheld in sources onto the mint, where the
// fee authority can withdraw them later. Anyone may harvest.
func (s *Service) HarvestToMint(ctx context.Context, mintAddr id.Address, sources []id.Address) (uint64, error) {
	var total uint64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		mint, err := s.loadMint(ctx, mintAddr)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		seen := make(map[id.Address]struct{}, len(sources))
		for _, addr := range sources {
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			src, err := s.accountOfMint(ctx, addr, mintAddr)
			if err != nil {
				return err
			}
			if src.WithheldAmount == 0 {
				continue
			}
			if err := mint.Withhold(src.WithheldAmount); err != nil {
				return err
			}
			total += src.WithheldAmount
			src.WithheldAmount = 0
			src.UpdatedAt = now
			if err := s.saveAccount(ctx, src); err != nil {
				return err
			}
		}
		if total == 0 {
			return nil
		}
		mint.UpdatedAt = now
		return s.saveMint(ctx, mint)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) accountOfMint(ctx context.Context, addr, mint id.Address) (*models.Account, error) {
	acct, err := s.loadAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acct.Mint != mint {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "account belongs to a different mint")
	}
	return acct, nil
}
