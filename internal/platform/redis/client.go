// Package redis opens the shared Redis connection that backs Idempotency-Key
// replay across server replicas.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"aurum/internal/platform/config"
	"aurum/pkg/platform/idempotency"
)

var (
	poolConns = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aurum_redis_pool_connections",
		Help: "Connections in the Redis pool by state",
	}, []string{"state"})
	poolLookups = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aurum_redis_pool_lookups",
		Help: "Cumulative pool lookups since start by result",
	}, []string{"result"})
)

// Client is the idempotency replay connection.
type Client struct {
	rdb *redis.Client
}

// New connects to cfg.URL. It returns nil if the URL is empty, in which
// case the server keeps idempotency records in memory.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return opts, nil
}

// IdempotencyStore returns the replay store backed by this connection.
func (c *Client) IdempotencyStore() *idempotency.RedisStore {
	return idempotency.NewRedis(c.rdb)
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// RecordStats publishes pool statistics as Prometheus gauges.
func (c *Client) RecordStats() {
	recordPoolStats(c.rdb.PoolStats())
}

func recordPoolStats(stats *redis.PoolStats) {
	poolConns.WithLabelValues("total").Set(float64(stats.TotalConns))
	poolConns.WithLabelValues("idle").Set(float64(stats.IdleConns))
	poolConns.WithLabelValues("stale").Set(float64(stats.StaleConns))
	poolLookups.WithLabelValues("hit").Set(float64(stats.Hits))
	poolLookups.WithLabelValues("miss").Set(float64(stats.Misses))
	poolLookups.WithLabelValues("timeout").Set(float64(stats.Timeouts))
}
