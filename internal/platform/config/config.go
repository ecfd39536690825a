package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// State backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// devSigningKey must equal the JWT_SIGNING_KEY envDefault below.
const devSigningKey = "dev-secret-key-change-in-production"

// Server captures process level configuration.
type Server struct {
	Addr        string     `env:"CHAINID_ADDR" envDefault:":8080"`
	Environment string     `env:"CHAINID_ENV" envDefault:"local"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	Auth         AuthConfig
	StateBackend string `env:"STATE_BACKEND" envDefault:"memory"`
	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Outbox       OutboxConfig

	// GenesisDeployer deploys one contract of each kind on boot when set.
	GenesisDeployer string `env:"GENESIS_DEPLOYER"`
}

// AuthConfig holds caller token and operator token settings.
type AuthConfig struct {
	JWTSigningKey     string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer         string        `env:"JWT_ISSUER" envDefault:"chainid"`
	JWTAudience       string        `env:"JWT_AUDIENCE" envDefault:"chainid-api"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"15m"`
	OperatorTokenHash string        `env:"OPERATOR_TOKEN_HASH"` // bcrypt; empty disables /ops
}

type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
}

type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig is empty when Kafka is disabled.
type KafkaConfig struct {
	Brokers         string        `env:"KAFKA_BROKERS"`
	Topic           string        `env:"KAFKA_TOPIC" envDefault:"chainid.ledger.events"`
	Acks            string        `env:"KAFKA_ACKS" envDefault:"all"`
	Retries         int           `env:"KAFKA_RETRIES" envDefault:"3"`
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"10s"`
}

func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.Brokers) != ""
}

type OutboxConfig struct {
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"100ms"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	// Retention is how long published entries are kept. Zero disables pruning.
	Retention    time.Duration `env:"OUTBOX_RETENTION" envDefault:"168h"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed values are errors rather than silent defaults.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Server) Validate() error {
	switch c.StateBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("STATE_BACKEND=postgres requires DATABASE_URL")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("STATE_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend)
	}
	if c.Environment == "production" && c.Auth.JWTSigningKey == devSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	if c.Outbox.BatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	if c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.Outbox.Retention < 0 {
		return fmt.Errorf("OUTBOX_RETENTION must not be negative")
	}
	return nil
}
