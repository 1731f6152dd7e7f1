package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/VishalYadav30301/wishlist-service/pkg/config"
)

// Config holds all configuration for the wishlist service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"WISHLIST_HTTP_PORT" envDefault:"8006"`

	// Postgres
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"wishlist"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"wishlist_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"wishlist"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	PostgresMinConns int32  `env:"POSTGRES_MIN_CONNS" envDefault:"5"`

	// Cache
	CacheBackend    string `env:"CACHE_BACKEND" envDefault:"memory"` // memory | redis
	CacheTTLSeconds int    `env:"WISHLIST_CACHE_TTL_SECONDS" envDefault:"300"`

	// Redis (only used when CACHE_BACKEND=redis)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Downstream services
	ProductServiceURL string `env:"PRODUCT_SERVICE_URL" envDefault:"http://localhost:8002"`
	CartServiceURL    string `env:"CART_SERVICE_URL" envDefault:"http://localhost:8003"`

	// Downstream client behavior
	ClientTimeoutSeconds  int `env:"CLIENT_TIMEOUT_SECONDS" envDefault:"10"`
	ClientMaxRetries      int `env:"CLIENT_MAX_RETRIES" envDefault:"3"`
	BreakerTimeoutSeconds int `env:"BREAKER_TIMEOUT_SECONDS" envDefault:"30"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof access (CIDR allowlist; empty disables remote access)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wishlist config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("invalid cache backend: %q (must be memory or redis)", c.CacheBackend)
	}
	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %d", c.CacheTTLSeconds)
	}
	for _, raw := range []string{c.ProductServiceURL, c.CartServiceURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid service URL: %q", raw)
		}
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("at least one kafka broker is required")
	}
	return nil
}

// CacheTTL returns the wishlist/product cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ClientTimeout returns the downstream HTTP client timeout as a duration.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.ClientTimeoutSeconds) * time.Second
}

// BreakerTimeout returns the circuit breaker open-state timeout as a duration.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutSeconds) * time.Second
}
