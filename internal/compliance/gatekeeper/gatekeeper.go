// Package gatekeeper is the transfer hook that enforces the blacklist. It
// decides from local state only: no outbound call, no retry.
package gatekeeper

import (
	"context"
	"log/slog"

	"aurum/internal/compliance/metrics"
	"aurum/internal/ledger/models"
	"aurum/internal/platform/tracer"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
)

// BlacklistReader answers membership queries.
type BlacklistReader interface {
	Contains(ctx context.Context, addr id.Address) (bool, error)
}

const (
	decisionAllowed  = "allowed"
	decisionDenied   = "denied"
	decisionRejected = "rejected"
)

// Deny reasons.
const (
	ReasonSourceBlacklisted      = "source owner blacklisted"
	ReasonDestinationBlacklisted = "destination owner blacklisted"
)

// Gatekeeper evaluates transfers against the blacklist.
type Gatekeeper struct {
	blacklist BlacklistReader
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
}

type Option func(*Gatekeeper)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gatekeeper) { g.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gatekeeper) { g.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(g *Gatekeeper) { g.tracer = t }
}

func New(blacklist BlacklistReader, opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		blacklist: blacklist,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate approves or denies a transfer. The signing authority must be the
// source account's owner; otherwise the transfer is rejected with
// Unauthorized. The source owner is checked before the destination owner,
// and the first listed party denies the transfer.
func (g *Gatekeeper) Evaluate(ctx context.Context, t models.Transfer) (models.Decision, error) {
	ctx, span := g.tracer.Start(ctx, "gatekeeper.evaluate",
		tracer.String("source_owner", t.SourceOwner.String()),
		tracer.String("destination_owner", t.DestinationOwner.String()),
	)
	var err error
	defer func() { span.End(err) }()

	if t.Owner != t.SourceOwner {
		g.record(decisionRejected)
		err = dErrors.Unauthorized()
		return models.Decision{}, err
	}

	for _, check := range []struct {
		owner  id.Address
		reason string
	}{
		{t.SourceOwner, ReasonSourceBlacklisted},
		{t.DestinationOwner, ReasonDestinationBlacklisted},
	} {
		listed, lookupErr := g.blacklist.Contains(ctx, check.owner)
		if lookupErr != nil {
			g.record(decisionRejected)
			err = dErrors.Wrap(lookupErr, dErrors.CodeInternal, "blacklist lookup failed")
			return models.Decision{}, err
		}
		if listed {
			g.record(decisionDenied)
			span.AddEvent("denied", tracer.String("reason", check.reason))
			g.logger.InfoContext(ctx, "transfer denied",
				"reason", check.reason,
				"address", check.owner.String(),
				"amount", t.Amount,
			)
			return models.Deny(check.reason), nil
		}
	}

	g.record(decisionAllowed)
	return models.Allow(), nil
}

func (g *Gatekeeper) record(decision string) {
	if g.metrics != nil {
		g.metrics.IncDecision(decision)
	}
}
