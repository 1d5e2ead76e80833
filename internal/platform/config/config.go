package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	id "aurum/pkg/domain"
	strutil "aurum/pkg/platform/strings"
)

// Server captures process level configuration. Every field is read from the
// environment; an optional .env file is loaded first for local development.
type Server struct {
	Addr           string        `env:"AURUM_ADDR" envDefault:":8080"`
	Environment    string        `env:"AURUM_ENV" envDefault:"dev"`
	LogLevel       string        `env:"AURUM_LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"AURUM_REQUEST_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes   int64         `env:"AURUM_MAX_BODY_BYTES" envDefault:"65536"`
	// TrustedProxies lists CIDR prefixes allowed to set X-Forwarded-For.
	TrustedProxies string `env:"AURUM_TRUSTED_PROXIES"`

	Token       TokenConfig
	Signer      SignerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Outbox      OutboxConfig
	Idempotency IdempotencyConfig
}

// TokenConfig identifies the deployed controller and its gatekeeper.
// BootstrapAdmin, when set, is the only signer allowed to initialize.
type TokenConfig struct {
	BootstrapAdmin id.Address `env:"AURUM_BOOTSTRAP_ADMIN"`
	ProgramID      id.Address `env:"AURUM_PROGRAM_ID" envDefault:"777fff16ea999e5bcb8351c09be37fc09bd0e6b27ce8fd554f35cb2bb5a5259d"`
	GatekeeperID   id.Address `env:"AURUM_GATEKEEPER_ID" envDefault:"fe585fdf659edfa8e7e501ba3ea6b7cd8fad311d0154fe406df25c108a6fd146"`
}

// SignerConfig bounds the signed assertions accepted from callers.
type SignerConfig struct {
	Audience  string        `env:"AURUM_SIGNER_AUDIENCE" envDefault:"aurum"`
	MaxTTL    time.Duration `env:"AURUM_SIGNER_MAX_TTL" envDefault:"5m"`
	ClockSkew time.Duration `env:"AURUM_SIGNER_CLOCK_SKEW" envDefault:"30s"`
}

// DatabaseConfig holds Postgres settings. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// RedisConfig holds Redis settings. An empty URL selects the in-memory idempotency store.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig holds event stream settings. Empty brokers disable publishing.
type KafkaConfig struct {
	Brokers           string        `env:"KAFKA_BROKERS"`
	Topic             string        `env:"KAFKA_TOPIC" envDefault:"aurum.token.events"`
	Acks              string        `env:"KAFKA_ACKS" envDefault:"all"`
	Retries           int           `env:"KAFKA_RETRIES" envDefault:"3"`
	DeliveryTimeout   time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"30s"`
	Partitions        int32         `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16         `env:"KAFKA_TOPIC_REPLICATION" envDefault:"1"`
}

// OutboxConfig tunes the event relay worker.
type OutboxConfig struct {
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"100ms"`
	Retention    time.Duration `env:"OUTBOX_RETENTION" envDefault:"168h"`
	// Consecutive failed batches that open the producer circuit, and
	// consecutive clean probes that close it again.
	BreakerFailures  int `env:"OUTBOX_BREAKER_FAILURES" envDefault:"5"`
	BreakerSuccesses int `env:"OUTBOX_BREAKER_SUCCESSES" envDefault:"3"`
}

// IdempotencyConfig controls how long replayable responses are kept.
type IdempotencyConfig struct {
	TTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

// Load reads optional dotenv files and then parses the environment.
// Missing dotenv files are ignored; values already in the environment win.
func Load(dotenvFiles ...string) (*Server, error) {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Server) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("AURUM_ADDR must not be empty")
	}
	if c.Token.ProgramID.IsZero() {
		return fmt.Errorf("AURUM_PROGRAM_ID must not be zero")
	}
	if c.Token.GatekeeperID.IsZero() {
		return fmt.Errorf("AURUM_GATEKEEPER_ID must not be zero")
	}
	if c.Token.ProgramID == c.Token.GatekeeperID {
		return fmt.Errorf("AURUM_PROGRAM_ID and AURUM_GATEKEEPER_ID must differ")
	}
	if c.Signer.MaxTTL <= 0 {
		return fmt.Errorf("AURUM_SIGNER_MAX_TTL must be positive")
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if c.Outbox.BatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	return nil
}

// TrustedProxyPrefixes parses TrustedProxies.
func (c *Server) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range strutil.SplitList(c.TrustedProxies) {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("AURUM_TRUSTED_PROXIES: %w", err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// IsProduction reports whether the server runs with production defaults.
func (c *Server) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}
