// Package config loads overland settings from the environment.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every configuration key.
const EnvPrefix = "OVERLAND_"

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`

	// Durable store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"auto"`
	StorePath   string `env:"STORE_PATH"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	StoreKey    string `env:"STORE_KEY" envDefault:"premium-entitlements"`
	MaxConns    int    `env:"DATABASE_MAX_CONNS" envDefault:"4"`

	// Telemetry
	RabbitMQURL     string `env:"RABBITMQ_URL"`
	TelemetryBuffer int    `env:"TELEMETRY_BUFFER" envDefault:"256"`
	MetricsAddr     string `env:"METRICS_ADDR" envDefault:"127.0.0.1:9464"`

	// Billing
	MonthlyProductID        string        `env:"MONTHLY_PRODUCT_ID" envDefault:"overland_premium_monthly"`
	YearlyProductID         string        `env:"YEARLY_PRODUCT_ID" envDefault:"overland_premium_yearly"`
	SandboxOwnedPlan        string        `env:"SANDBOX_OWNED_PLAN"`
	SandboxOutcome          string        `env:"SANDBOX_OUTCOME" envDefault:"approve"`
	BreakerFailureThreshold uint32        `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"3"`
	BreakerTimeout          time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`

	// Re-verification schedule used by the watch command
	ResyncSchedule string `env:"RESYNC_SCHEDULE" envDefault:"@every 12h"`
}

var (
	storeDrivers    = []string{"auto", "file", "sqlite", "postgres", "redis", "memory"}
	sandboxOutcomes = []string{"approve", "cancel", "fail", "pending", "owned"}
)

// Load reads a .env file if present, then parses OVERLAND_* variables.
func Load() (*Config, error) {
	// Ignore errors - the .env file might not exist and that's ok
	_ = godotenv.Load()
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom parses configuration from environ instead of the process
// environment. Keys must carry the OVERLAND_ prefix.
func LoadFrom(environ map[string]string) (*Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(storeDrivers, c.StoreDriver) {
		errs = append(errs, fmt.Errorf("invalid %sSTORE_DRIVER %q", EnvPrefix, c.StoreDriver))
	}
	if !slices.Contains(sandboxOutcomes, c.SandboxOutcome) {
		errs = append(errs, fmt.Errorf("invalid %sSANDBOX_OUTCOME %q", EnvPrefix, c.SandboxOutcome))
	}
	if c.SandboxOwnedPlan != "" && c.SandboxOwnedPlan != "monthly" && c.SandboxOwnedPlan != "yearly" {
		errs = append(errs, fmt.Errorf("invalid %sSANDBOX_OWNED_PLAN %q", EnvPrefix, c.SandboxOwnedPlan))
	}
	if c.TelemetryBuffer <= 0 {
		errs = append(errs, fmt.Errorf("%sTELEMETRY_BUFFER must be positive", EnvPrefix))
	}
	if c.StoreKey == "" {
		errs = append(errs, fmt.Errorf("%sSTORE_KEY must not be empty", EnvPrefix))
	}
	return errors.Join(errs...)
}

// StoreURL returns the location the selected driver connects to.
func (c *Config) StoreURL() string {
	switch c.StoreDriver {
	case "postgres":
		return c.DatabaseURL
	case "redis":
		return c.RedisURL
	case "file", "sqlite":
		return c.StorePath
	case "auto":
		for _, u := range []string{c.DatabaseURL, c.RedisURL, c.StorePath} {
			if u != "" {
				return u
			}
		}
	}
	return ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
