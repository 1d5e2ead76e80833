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

// OpenAccount returns owner's associated account for mint, creating it when
// it does not exist yet.
func (s *Service) OpenAccount(ctx context.Context, mint, owner id.Address) (*models.Account, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "account owner required")
	}
	var acct *models.Account
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.loadMint(ctx, mint); err != nil {
			return err
		}
		addr := id.AssociatedAccount(owner, mint)
		existing, err := s.store.FindAccount(ctx, addr)
		if err == nil {
			acct = existing
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token account")
		}

		now := requestcontext.Now(ctx)
		acct = &models.Account{Address: addr, Mint: mint, Owner: owner, CreatedAt: now, UpdatedAt: now}
		if err := s.store.CreateAccount(ctx, acct); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create token account")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// Account returns a token account by address.
func (s *Service) Account(ctx context.Context, addr id.Address) (*models.Account, error) {
	return s.loadAccount(ctx, addr)
}

// AccountOf returns owner's associated account for mint.
func (s *Service) AccountOf(ctx context.Context, mint, owner id.Address) (*models.Account, error) {
	return s.loadAccount(ctx, id.AssociatedAccount(owner, mint))
}

// Accounts lists every account of mint.
func (s *Service) Accounts(ctx context.Context, mint id.Address) ([]*models.Account, error) {
	accts, err := s.store.ListAccounts(ctx, mint)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list token accounts")
	}
	return accts, nil
}

// Mint returns a mint by address.
func (s *Service) Mint(ctx context.Context, addr id.Address) (*models.Mint, error) {
	return s.loadMint(ctx, addr)
}

// Approve lets delegate move up to amount from the account, replacing any
// earlier delegation. Only the account owner may approve.
func (s *Service) Approve(ctx context.Context, account, owner, delegate id.Address, amount uint64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		acct, err := s.loadAccount(ctx, account)
		if err != nil {
			return err
		}
		if acct.Owner != owner {
			return dErrors.Unauthorized()
		}
		acct.Approve(delegate, amount)
		acct.UpdatedAt = requestcontext.Now(ctx)
		return s.saveAccount(ctx, acct)
	})
}

// Revoke clears the account's delegation. Only the account owner may revoke.
func (s *Service) Revoke(ctx context.Context, account, owner id.Address) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		acct, err := s.loadAccount(ctx, account)
		if err != nil {
			return err
		}
		if acct.Owner != owner {
			return dErrors.Unauthorized()
		}
		acct.Revoke()
		acct.UpdatedAt = requestcontext.Now(ctx)
		return s.saveAccount(ctx, acct)
	})
}

// Burn destroys amount from the account. The authority must be the owner,
// the active delegate within its allowance, or the mint's permanent delegate.
func (s *Service) Burn(ctx context.Context, account id.Address, authority id.Authority, amount uint64) error {
	if amount == 0 {
		return dErrors.InvalidAmount()
	}
	ctx, span := s.tracer.Start(ctx, "ledger.burn")
	var err error
	defer func() { span.End(err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		acct, err := s.loadAccount(ctx, account)
		if err != nil {
			return err
		}
		mint, err := s.loadMint(ctx, acct.Mint)
		if err != nil {
			return err
		}
		if err := authorizeDebit(mint, acct, authority); err != nil {
			return err
		}
		if err := acct.Debit(amount); err != nil {
			return err
		}
		if authority.Kind == id.AuthorityDelegate {
			if err := acct.ConsumeAllowance(amount); err != nil {
				return err
			}
		}
		if err := mint.RetireSupply(amount); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		acct.UpdatedAt, mint.UpdatedAt = now, now
		if err := s.saveAccount(ctx, acct); err != nil {
			return err
		}
		return s.saveMint(ctx, mint)
	})
	if err == nil && s.metrics != nil {
		s.metrics.AddBurned(string(authority.Kind), amount)
	}
	return err
}

// authorizeDebit checks that authority may move tokens out of acct.
func authorizeDebit(mint *models.Mint, acct *models.Account, authority id.Authority) error {
	if authority.Address.IsZero() {
		return dErrors.Unauthorized()
	}
	switch authority.Kind {
	case id.AuthorityOwner:
		if authority.Address == acct.Owner {
			return nil
		}
	case id.AuthorityDelegate:
		if acct.HasDelegate() && authority.Address == acct.Delegate {
			return nil
		}
	case id.AuthorityPermanentDelegate:
		if !mint.PermanentDelegate.IsZero() && authority.Address == mint.PermanentDelegate {
			return nil
		}
	}
	return dErrors.Unauthorized()
}
