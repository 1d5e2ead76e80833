// Package service runs the redemption lifecycle. A request locks the
// user's tokens with a delegated hold in favour of a per-request custody
// delegate; fulfilment burns exactly the held amount through that
// delegate and cancellation releases it.
package service

import (
	"context"
	"errors"
	"log/slog"

	ledgermodels "aurum/internal/ledger/models"
	"aurum/internal/platform/tracer"
	"aurum/internal/redemption/metrics"
	"aurum/internal/redemption/models"
	registrymodels "aurum/internal/registry/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/audit"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
	"aurum/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, r *models.Request) error
	FindByKey(ctx context.Context, key models.Key) (*models.Request, error)
	FindOpenByUser(ctx context.Context, user id.Address) (*models.Request, error)
	Update(ctx context.Context, r *models.Request) error
	Delete(ctx context.Context, key models.Key) error
	ListByUser(ctx context.Context, user id.Address) ([]*models.Request, error)
}

// Registry supplies the configuration, role checks and request ids.
type Registry interface {
	Program() id.Address
	Get(ctx context.Context) (*registrymodels.Config, error)
	Authorize(ctx context.Context, signer id.Address, role registrymodels.Role) (*registrymodels.Config, error)
	NextRequestID(ctx context.Context) (id.RequestID, error)
}

// Ledger is the part of the token ledger the lifecycle moves tokens with.
type Ledger interface {
	AccountOf(ctx context.Context, mint, owner id.Address) (*ledgermodels.Account, error)
	Approve(ctx context.Context, account, owner, delegate id.Address, amount uint64) error
	Revoke(ctx context.Context, account, owner id.Address) error
	Burn(ctx context.Context, account id.Address, authority id.Authority, amount uint64) error
}

type Service struct {
	store    Store
	registry Registry
	ledger   Ledger
	tx       tx.Runner
	audit    *audit.Logger
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
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

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(store Store, registry Registry, l Ledger, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: registry,
		ledger:   l,
		tx:       runner,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestRedemption opens a Pending request for amount and places a hold of
// exactly amount on the user's account. A user has at most one open
// request; the account carries a single delegation.
func (s *Service) RequestRedemption(ctx context.Context, user id.Address, amount uint64) (*models.Request, error) {
	ctx, span := s.tracer.Start(ctx, "redemption.request")
	var req *models.Request
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if user.IsZero() {
			return dErrors.Unauthorized()
		}
		if amount == 0 {
			return dErrors.InvalidAmount()
		}
		cfg, err := s.registry.Get(ctx)
		if err != nil {
			return err
		}
		if err := cfg.EnsureActive(); err != nil {
			return err
		}
		acct, err := s.ledger.AccountOf(ctx, cfg.Mint, user)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return dErrors.InsufficientBalance()
			}
			return err
		}
		if acct.Amount < amount {
			return dErrors.InsufficientBalance()
		}
		if open, err := s.store.FindOpenByUser(ctx, user); err == nil {
			return dErrors.New(dErrors.CodeConflict, "redemption request "+open.RequestID.String()+" is still open")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up open redemption")
		}

		requestID, err := s.registry.NextRequestID(ctx)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		req, err = models.NewRequest(s.registry.Program(), user, requestID, amount, now)
		if err != nil {
			return err
		}
		if err := s.store.Create(ctx, req); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeConflict, "redemption request already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create redemption request")
		}
		if err := s.ledger.Approve(ctx, acct.Address, user, req.Delegate, amount); err != nil {
			return err
		}
		return s.audit.Record(ctx, models.RedemptionRequested{
			User:      user,
			RequestID: requestID,
			Amount:    amount,
			Delegate:  req.Delegate,
			Timestamp: now,
		}, "user", user.String(), "request_id", requestID.String(), "amount", amount)
	})
	span.End(err)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Requested()
	}
	s.logger.InfoContext(ctx, "redemption requested",
		"user", user.String(), "request_id", req.RequestID.String(), "amount", amount)
	return req, nil
}

// SetProcessing marks a Pending request as being worked on off-system.
// Only the supply controller may do this; no tokens move.
func (s *Service) SetProcessing(ctx context.Context, signer id.Address, key models.Key) (*models.Request, error) {
	var req *models.Request
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.registry.Authorize(ctx, signer, registrymodels.RoleSupplyController); err != nil {
			return err
		}
		var err error
		req, err = s.load(ctx, key)
		if err != nil {
			return err
		}
		old := req.Status
		if err := req.StartProcessing(); err != nil {
			return err
		}
		if err := s.store.Update(ctx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update redemption request")
		}
		return s.audit.Record(ctx, models.RedemptionStatusUpdated{
			User:      key.User,
			RequestID: key.RequestID,
			OldStatus: old,
			NewStatus: req.Status,
		}, "user", key.User.String(), "request_id", key.RequestID.String())
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Processing()
	}
	return req, nil
}

// Fulfill burns the held amount through the custody delegate and reclaims
// the record. Only the supply controller may fulfil. If the user's balance
// fell below the amount since the request, the burn fails and nothing
// changes.
func (s *Service) Fulfill(ctx context.Context, signer id.Address, key models.Key) (*models.Request, error) {
	ctx, span := s.tracer.Start(ctx, "redemption.fulfill")
	var req *models.Request
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.registry.Authorize(ctx, signer, registrymodels.RoleSupplyController)
		if err != nil {
			return err
		}
		req, err = s.load(ctx, key)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		if err := req.Fulfill(now); err != nil {
			return err
		}
		acct, err := s.ledger.AccountOf(ctx, cfg.Mint, key.User)
		if err != nil {
			return err
		}
		authority := id.CustodyAuthority(s.registry.Program(), key.User, key.RequestID)
		if err := s.ledger.Burn(ctx, acct.Address, authority, req.Amount); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reclaim redemption request")
		}
		return s.audit.Record(ctx, models.RedemptionFulfilled{
			User:      key.User,
			RequestID: key.RequestID,
			Amount:    req.Amount,
			Timestamp: now,
		}, "user", key.User.String(), "request_id", key.RequestID.String(), "amount", req.Amount)
	})
	span.End(err)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Fulfilled(req.Amount)
	}
	s.logger.InfoContext(ctx, "redemption fulfilled",
		"user", key.User.String(), "request_id", key.RequestID.String(), "amount", req.Amount)
	return req, nil
}

// Cancel releases the hold on a Pending request and reclaims the record.
// Only the requesting user may cancel.
func (s *Service) Cancel(ctx context.Context, signer id.Address, key models.Key) (*models.Request, error) {
	var req *models.Request
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if signer.IsZero() || signer != key.User {
			return dErrors.Unauthorized()
		}
		cfg, err := s.registry.Get(ctx)
		if err != nil {
			return err
		}
		req, err = s.load(ctx, key)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		if err := req.Cancel(now); err != nil {
			return err
		}
		acct, err := s.ledger.AccountOf(ctx, cfg.Mint, key.User)
		if err != nil {
			return err
		}
		if err := s.ledger.Revoke(ctx, acct.Address, key.User); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reclaim redemption request")
		}
		return s.audit.Record(ctx, models.RedemptionCancelled{
			User:      key.User,
			RequestID: key.RequestID,
			Amount:    req.Amount,
			Timestamp: now,
		}, "user", key.User.String(), "request_id", key.RequestID.String())
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Cancelled()
	}
	return req, nil
}

// Get returns an open request.
func (s *Service) Get(ctx context.Context, key models.Key) (*models.Request, error) {
	return s.load(ctx, key)
}

// ListByUser returns the user's open requests.
func (s *Service) ListByUser(ctx context.Context, user id.Address) ([]*models.Request, error) {
	reqs, err := s.store.ListByUser(ctx, user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list redemption requests")
	}
	return reqs, nil
}

func (s *Service) load(ctx context.Context, key models.Key) (*models.Request, error) {
	req, err := s.store.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "redemption request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load redemption request")
	}
	return req, nil
}
