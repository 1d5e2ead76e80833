package service

import (
	"context"
	"time"

	"aurum/internal/ledger/models"
	"aurum/internal/platform/tracer"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/requestcontext"
)

// TransferParams moves Amount from Source to Destination under Authority.
type TransferParams struct {
	Source      id.Address
	Destination id.Address
	Authority   id.Authority
	Amount      uint64
}

// TransferResult reports how a completed transfer was split.
type TransferResult struct {
	Mint        id.Address `json:"mint"`
	Amount      uint64     `json:"amount"`
	Fee         uint64     `json:"fee"`
	NetReceived uint64     `json:"net_received"`
}

const (
	outcomeCompleted = "completed"
	outcomeDenied    = "denied"
	outcomeFailed    = "failed"
)

// Transfer moves tokens between two accounts of the same mint. The mint's
// transfer hook runs after the authority and balance checks and before any
// write; a denial aborts the whole transfer and no fee is withheld. The fee
// is withheld in the destination account.
func (s *Service) Transfer(ctx context.Context, p TransferParams) (*TransferResult, error) {
	if p.Amount == 0 {
		return nil, dErrors.InvalidAmount()
	}
	ctx, span := s.tracer.Start(ctx, "ledger.transfer", tracer.Uint64("amount", p.Amount))
	var (
		result *TransferResult
		err    error
	)
	defer func() { span.End(err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		src, err := s.loadAccount(ctx, p.Source)
		if err != nil {
			return err
		}
		dst := src
		if p.Destination != p.Source {
			if dst, err = s.accountOfMint(ctx, p.Destination, src.Mint); err != nil {
				return err
			}
		}
		mint, err := s.loadMint(ctx, src.Mint)
		if err != nil {
			return err
		}
		if err := authorizeDebit(mint, src, p.Authority); err != nil {
			return err
		}
		if src.Amount < p.Amount {
			return dErrors.InsufficientBalance()
		}
		if p.Authority.Kind == id.AuthorityDelegate && src.DelegatedAmount < p.Amount {
			return dErrors.InsufficientBalance()
		}

		if err := s.runHook(ctx, mint, models.Transfer{
			Mint:             mint.Address,
			Source:           src.Address,
			SourceOwner:      src.Owner,
			Destination:      dst.Address,
			DestinationOwner: dst.Owner,
			Owner:            p.Authority.Address,
			Amount:           p.Amount,
		}); err != nil {
			return err
		}

		fee := mint.Fee.Calculate(p.Amount)
		if err := src.Debit(p.Amount); err != nil {
			return err
		}
		if p.Authority.Kind == id.AuthorityDelegate {
			if err := src.ConsumeAllowance(p.Amount); err != nil {
				return err
			}
		}
		if err := dst.Credit(p.Amount - fee); err != nil {
			return err
		}
		if err := dst.Withhold(fee); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		src.UpdatedAt, dst.UpdatedAt = now, now
		if err := s.saveAccount(ctx, src); err != nil {
			return err
		}
		if dst != src {
			if err := s.saveAccount(ctx, dst); err != nil {
				return err
			}
		}
		result = &TransferResult{Mint: mint.Address, Amount: p.Amount, Fee: fee, NetReceived: p.Amount - fee}
		return nil
	})
	s.recordTransfer(err, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) runHook(ctx context.Context, mint *models.Mint, t models.Transfer) error {
	if mint.HookProgram.IsZero() {
		return nil
	}
	hook, ok := s.hookFor(mint.HookProgram)
	if !ok {
		// A configured hook that cannot be reached blocks the transfer.
		return dErrors.New(dErrors.CodeInternal, "transfer hook not registered")
	}
	start := time.Now()
	decision, err := hook.Evaluate(ctx, t)
	if s.metrics != nil {
		s.metrics.ObserveHook(time.Since(start).Seconds())
	}
	if err != nil {
		return err
	}
	if !decision.Allowed {
		s.logger.WarnContext(ctx, "transfer denied by hook",
			"mint", t.Mint.String(),
			"source_owner", t.SourceOwner.String(),
			"destination_owner", t.DestinationOwner.String(),
			"reason", decision.Reason,
		)
		return dErrors.AddressBlacklisted()
	}
	return nil
}

func (s *Service) recordTransfer(err error, result *TransferResult) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.IncTransfer(outcomeCompleted)
		s.metrics.AddWithheld(result.Fee)
	case dErrors.HasCode(err, dErrors.CodeAddressBlacklisted):
		s.metrics.IncTransfer(outcomeDenied)
	default:
		s.metrics.IncTransfer(outcomeFailed)
	}
}
