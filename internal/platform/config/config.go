package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "HIP"

// Config is the full service configuration, read from HIP_* environment variables.
type Config struct {
	Server   Server
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	OpenMRS  OpenMRSConfig
	Session  SessionConfig
	Outbox   OutboxConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string        `envconfig:"ADDR" default:":8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string        `envconfig:"LOG_FORMAT" default:"json"`
	RegulatedMode  bool          `envconfig:"REGULATED_MODE" default:"false"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	// GatewaySigningKey verifies bearer tokens on gateway callbacks. Empty
	// disables the check (development only).
	GatewaySigningKey string `envconfig:"GATEWAY_SIGNING_KEY"`
}

// PostgresConfig selects durable stores. An empty DSN runs on memory stores.
type PostgresConfig struct {
	DSN             string        `envconfig:"POSTGRES_DSN"`
	MaxOpenConns    int           `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"POSTGRES_CONN_MAX_LIFETIME" default:"30m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

type KafkaConfig struct {
	Brokers    []string `envconfig:"KAFKA_BROKERS"`
	AuditTopic string   `envconfig:"KAFKA_AUDIT_TOPIC" default:"hip.audit"`
}

type OpenMRSConfig struct {
	BaseURL  string        `envconfig:"OPENMRS_URL" default:"http://localhost:8050/openmrs"`
	Username string        `envconfig:"OPENMRS_USERNAME" default:"admin"`
	Password string        `envconfig:"OPENMRS_PASSWORD"`
	Timeout  time.Duration `envconfig:"OPENMRS_TIMEOUT" default:"10s"`
}

type SessionConfig struct {
	// TransactionTTL bounds how long an auth-init transaction waits for on-confirm.
	TransactionTTL time.Duration `envconfig:"SESSION_TRANSACTION_TTL" default:"10m"`
	// MaxTokenTTL caps access-token retention regardless of the token's exp claim.
	MaxTokenTTL time.Duration `envconfig:"SESSION_MAX_TOKEN_TTL" default:"24h"`
}

type OutboxConfig struct {
	PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1s"`
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
}

// Load reads configuration from the environment and validates it. Every
// section is read under the bare HIP prefix, so keys are HIP_<tag> (for
// example HIP_POSTGRES_DSN) and never carry the section name twice.
func Load() (*Config, error) {
	var cfg Config
	sections := []struct {
		name   string
		target any
	}{
		{"server", &cfg.Server},
		{"postgres", &cfg.Postgres},
		{"redis", &cfg.Redis},
		{"kafka", &cfg.Kafka},
		{"openmrs", &cfg.OpenMRS},
		{"session", &cfg.Session},
		{"outbox", &cfg.Outbox},
	}
	for _, section := range sections {
		if err := envconfig.Process(envPrefix, section.target); err != nil {
			return nil, fmt.Errorf("load %s config: %w", section.name, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("HIP_ADDR is required"))
	}
	if c.OpenMRS.BaseURL == "" {
		errs = append(errs, errors.New("HIP_OPENMRS_URL is required"))
	}
	if c.Session.TransactionTTL <= 0 {
		errs = append(errs, errors.New("HIP_SESSION_TRANSACTION_TTL must be positive"))
	}
	if c.Session.MaxTokenTTL <= 0 {
		errs = append(errs, errors.New("HIP_SESSION_MAX_TOKEN_TTL must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Postgres.DSN == "" {
		errs = append(errs, errors.New("HIP_KAFKA_BROKERS requires HIP_POSTGRES_DSN for the audit outbox"))
	}
	if c.Server.RegulatedMode && c.Server.GatewaySigningKey == "" {
		errs = append(errs, errors.New("HIP_GATEWAY_SIGNING_KEY is required in regulated mode"))
	}
	return errors.Join(errs...)
}
