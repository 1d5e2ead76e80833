package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"aurum/internal/compliance/gatekeeper"
	compliancemetrics "aurum/internal/compliance/metrics"
	compliance "aurum/internal/compliance/service"
	compliancestore "aurum/internal/compliance/store"
	ledgermetrics "aurum/internal/ledger/metrics"
	ledger "aurum/internal/ledger/service"
	ledgerstore "aurum/internal/ledger/store"
	"aurum/internal/platform/config"
	"aurum/internal/platform/tracer"
	redemptionmetrics "aurum/internal/redemption/metrics"
	redemption "aurum/internal/redemption/service"
	redemptionstore "aurum/internal/redemption/store"
	registry "aurum/internal/registry/service"
	registrystore "aurum/internal/registry/store"
	treasury "aurum/internal/treasury/service"
	"aurum/pkg/platform/audit"
	"aurum/pkg/platform/circuit"
	"aurum/pkg/platform/outbox"
	outboxmetrics "aurum/pkg/platform/outbox/metrics"
	outboxstore "aurum/pkg/platform/outbox/store"
	"aurum/pkg/platform/outbox/worker"
	"aurum/pkg/platform/tx"
)

type app struct {
	registry   *registry.Service
	ledger     *ledger.Service
	compliance *compliance.Service
	redemption *redemption.Service
	treasury   *treasury.Service
	relay      *worker.Worker
}

type storeSet struct {
	runner     tx.Runner
	outbox     outbox.Store
	registry   registry.Store
	ledger     ledger.Store
	blacklist  compliance.Blacklist
	redemption redemption.Store
}

// selectStores returns Postgres stores sharing one transaction runner when a
// database is configured, else in-memory stores.
func selectStores(in *infra) storeSet {
	if in.pool != nil {
		db := in.pool.DB()
		return storeSet{
			runner:     tx.NewPostgres(db),
			outbox:     outboxstore.NewPostgres(db),
			registry:   registrystore.NewPostgres(db),
			ledger:     ledgerstore.NewPostgres(db),
			blacklist:  compliancestore.NewPostgres(db),
			redemption: redemptionstore.NewPostgres(db),
		}
	}
	return storeSet{
		runner:     tx.NewInMemory(),
		outbox:     outboxstore.NewInMemory(),
		registry:   registrystore.NewInMemory(),
		ledger:     ledgerstore.NewInMemory(),
		blacklist:  compliancestore.NewInMemory(),
		redemption: redemptionstore.NewInMemory(),
	}
}

func buildApp(ctx context.Context, cfg *config.Server, in *infra, log *slog.Logger) (*app, error) {
	stores := selectStores(in)
	reg := prometheus.DefaultRegisterer
	trc := tracer.NewOTel()
	auditLog := audit.NewLogger(log, outbox.NewPublisher(stores.outbox))
	complianceMetrics := compliancemetrics.New(reg)

	ledgerSvc := ledger.New(stores.ledger, stores.runner,
		ledger.WithLogger(log),
		ledger.WithMetrics(ledgermetrics.New(reg)),
		ledger.WithTracer(trc),
	)
	ledgerSvc.RegisterHook(cfg.Token.GatekeeperID, gatekeeper.New(stores.blacklist,
		gatekeeper.WithLogger(log),
		gatekeeper.WithMetrics(complianceMetrics),
		gatekeeper.WithTracer(trc),
	))

	registryOpts := []registry.Option{registry.WithLogger(log), registry.WithAudit(auditLog)}
	if !cfg.Token.BootstrapAdmin.IsZero() {
		registryOpts = append(registryOpts, registry.WithBootstrapAdmin(cfg.Token.BootstrapAdmin))
	}
	registrySvc := registry.New(stores.registry, ledgerSvc, stores.runner,
		cfg.Token.ProgramID, cfg.Token.GatekeeperID, registryOpts...)

	complianceSvc := compliance.New(stores.blacklist, registrySvc, ledgerSvc, stores.runner,
		compliance.WithLogger(log),
		compliance.WithAudit(auditLog),
		compliance.WithMetrics(complianceMetrics),
	)
	if err := complianceSvc.SyncMetrics(ctx); err != nil {
		log.Warn("blacklist gauge not initialized", "error", err)
	}

	a := &app{
		registry:   registrySvc,
		ledger:     ledgerSvc,
		compliance: complianceSvc,
		redemption: redemption.New(stores.redemption, registrySvc, ledgerSvc, stores.runner,
			redemption.WithLogger(log),
			redemption.WithAudit(auditLog),
			redemption.WithMetrics(redemptionmetrics.New(reg)),
			redemption.WithTracer(trc),
		),
		treasury: treasury.New(registrySvc, ledgerSvc, stores.runner,
			treasury.WithLogger(log),
			treasury.WithAudit(auditLog),
		),
		relay: worker.New(stores.outbox, in.producer,
			worker.WithTopic(cfg.Kafka.Topic),
			worker.WithBatchSize(cfg.Outbox.BatchSize),
			worker.WithPollInterval(cfg.Outbox.PollInterval),
			worker.WithRetention(cfg.Outbox.Retention),
			worker.WithTxRunner(stores.runner),
			worker.WithBreaker(circuit.New("kafka",
				circuit.WithFailureThreshold(cfg.Outbox.BreakerFailures),
				circuit.WithSuccessThreshold(cfg.Outbox.BreakerSuccesses),
			)),
			worker.WithMetrics(outboxmetrics.New()),
			worker.WithLogger(log),
		),
	}
	return a, nil
}
