package config

import (
	"fmt"
	"time"

	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	pkgconfig "github.com/maxcasase/BDPW-Back-End/pkg/config"
	"github.com/maxcasase/BDPW-Back-End/pkg/database"
	"github.com/maxcasase/BDPW-Back-End/pkg/tracing"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the review service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"review-service"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Identity forms per entity class
	UserIDForm identity.Form `env:"USER_ID_FORM" envDefault:"numeric"`
	ItemIDForm identity.Form `env:"ITEM_ID_FORM" envDefault:"numeric"`

	// StoreTimeout bounds every individual store call.
	StoreTimeout       time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// MongoDB
	MongoURI            string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase       string        `env:"MONGO_DATABASE" envDefault:"mpt"`
	MongoMaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"50"`
	MongoConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`

	// PostgreSQL user directory
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"mpt"`
	PostgresPass     string `env:"POSTGRES_PASSWORD" envDefault:"mpt_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"mpt_users"`
	PostgresSSL      string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	EventsEnabled       bool          `env:"EVENTS_ENABLED" envDefault:"true"`
	KafkaBrokers        []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup  string        `env:"KAFKA_CONSUMER_GROUP" envDefault:"review-service"`
	EventIdempotencyTTL time.Duration `env:"EVENT_IDEMPOTENCY_TTL" envDefault:"24h"`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Catalog collaborator. Empty disables album metadata.
	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:""`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"2s"`

	// Rate limiting on review writes
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// pprof
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Tracing
	TracingEnabled bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	SampleRate     float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, ""); err != nil {
		return nil, fmt.Errorf("load review config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field rules after parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("invalid postgres port: %d", c.PostgresPort)
	}
	if err := c.IdentityScheme().Validate(); err != nil {
		return err
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("MONGO_DATABASE must not be empty")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %g", c.SampleRate)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit needs a positive rate and burst, got %g/%d", c.RateLimitRPS, c.RateLimitBurst)
	}

	// Outside development, require an explicitly set, strong JWT secret.
	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}
	return nil
}

// IdentityScheme returns the configured identity forms.
func (c *Config) IdentityScheme() identity.Scheme {
	return identity.Scheme{User: c.UserIDForm, Item: c.ItemIDForm}
}

// Events reports whether the Kafka producer and consumer should run.
func (c *Config) Events() bool {
	return c.EventsEnabled && len(c.KafkaBrokers) > 0
}

// Postgres returns the directory pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.PostgresMaxConns,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// Mongo returns the document store configuration.
func (c *Config) Mongo() database.MongoConfig {
	return database.MongoConfig{
		URI:            c.MongoURI,
		Database:       c.MongoDatabase,
		MaxPoolSize:    c.MongoMaxPoolSize,
		ConnectTimeout: c.MongoConnectTimeout,
	}
}

// Redis returns the idempotency store configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// Tracing returns the OpenTelemetry configuration.
func (c *Config) Tracing() tracing.Config {
	cfg := tracing.DefaultConfig(c.ServiceName)
	cfg.Environment = c.Environment
	cfg.OTLPEndpoint = c.OTLPEndpoint
	cfg.SampleRate = c.SampleRate
	cfg.Enabled = c.TracingEnabled
	return cfg
}
