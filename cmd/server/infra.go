package main

import (
	"context"
	"fmt"
	"log/slog"

	"aurum/internal/platform/config"
	"aurum/internal/platform/database"
	"aurum/internal/platform/health"
	"aurum/internal/platform/kafka"
	"aurum/internal/platform/kafka/producer"
	"aurum/internal/platform/redis"
	"aurum/pkg/platform/idempotency"
	"aurum/pkg/platform/outbox/worker"
)

// infra holds the external connections. Each one is optional; a missing URL
// selects the in-memory or no-op replacement.
type infra struct {
	pool     *database.Pool
	redis    *redis.Client
	admin    *kafka.Admin
	producer worker.Producer
	closers  []func()
}

func openInfra(ctx context.Context, cfg *config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}

	pool, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		in.pool = pool
		in.closers = append(in.closers, func() { _ = pool.Close() })
		if err := pool.Migrate(ctx); err != nil {
			in.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	rc, err := redis.New(cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		in.closers = append(in.closers, func() { _ = rc.Close() })
	}

	if cfg.Kafka.Brokers == "" {
		in.producer = producer.NewNoopProducer(log)
		return in, nil
	}
	admin, err := kafka.NewAdmin(cfg.Kafka.Brokers)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.admin = admin
	in.closers = append(in.closers, admin.Close)
	if err := admin.EnsureTopic(ctx, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
		in.Close()
		return nil, err
	}
	prod, err := producer.New(cfg.Kafka, log)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.producer = prod
	in.closers = append(in.closers, func() { _ = prod.Close() })
	return in, nil
}

// Idempotency returns the replay store: Redis when configured, else memory.
func (in *infra) Idempotency() idempotency.Store {
	if in.redis != nil {
		return in.redis.IdempotencyStore()
	}
	return idempotency.NewInMemory()
}

func (in *infra) RegisterChecks(h *health.Handler) {
	if in.pool != nil {
		h.RegisterCheck("postgres", in.pool.Health)
	}
	if in.redis != nil {
		h.RegisterCheck("redis", in.redis.Health)
	}
	if in.admin != nil {
		h.RegisterCheck(in.admin.Name(), in.admin.Check)
	}
}

func (in *infra) RecordStats() {
	if in.pool != nil {
		in.pool.RecordStats()
	}
	if in.redis != nil {
		in.redis.RecordStats()
	}
}

// Close releases connections in reverse order of opening.
func (in *infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
	in.closers = nil
}
