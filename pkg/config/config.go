package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "crumb"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App       AppConfig
	Upstream  UpstreamConfig
	Redis     RedisConfig
	Delivery  DeliveryConfig
	Placement PlacementConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Placement.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRUMB_APP_ENV" default:"development"`
	Port         string `envconfig:"CRUMB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CRUMB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRUMB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the remote storefront REST API.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"CRUMB_UPSTREAM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"CRUMB_UPSTREAM_TIMEOUT" default:"10s"`
}

// RedisConfig backs the order-placement idempotency store. Leaving the URL
// empty disables idempotency replay protection.
type RedisConfig struct {
	URL          string        `envconfig:"CRUMB_REDIS_URL"`
	Address      string        `envconfig:"CRUMB_REDIS_ADDR"`
	Password     string        `envconfig:"CRUMB_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRUMB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRUMB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRUMB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRUMB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRUMB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRUMB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint is configured at all.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// DeliveryConfig carries the business knobs of the delivery fee chain.
// The distance and order-value tiers themselves are fixed business rules
// kept in code next to the chain.
type DeliveryConfig struct {
	FreeShippingSubtotal float64 `envconfig:"CRUMB_DELIVERY_FREE_SHIPPING_SUBTOTAL" default:"75"`
}

// PlacementConfig bounds order-submission retries.
type PlacementConfig struct {
	MaxAttempts int           `envconfig:"CRUMB_PLACEMENT_MAX_ATTEMPTS" default:"3"`
	BaseBackoff time.Duration `envconfig:"CRUMB_PLACEMENT_BASE_BACKOFF" default:"500ms"`
}

func (p PlacementConfig) validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("placement max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseBackoff <= 0 {
		return fmt.Errorf("placement base backoff must be positive, got %s", p.BaseBackoff)
	}
	return nil
}
