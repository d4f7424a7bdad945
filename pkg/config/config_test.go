package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_DefaultValues(t *testing.T) {
	cfg, err := LoadFrom(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFormat)
	assert.Equal(t, "auto", cfg.StoreDriver)
	assert.Equal(t, "premium-entitlements", cfg.StoreKey)
	assert.Equal(t, 4, cfg.MaxConns)
	assert.Equal(t, 256, cfg.TelemetryBuffer)
	assert.Equal(t, "127.0.0.1:9464", cfg.MetricsAddr)
	assert.Equal(t, "overland_premium_monthly", cfg.MonthlyProductID)
	assert.Equal(t, "overland_premium_yearly", cfg.YearlyProductID)
	assert.Equal(t, "approve", cfg.SandboxOutcome)
	assert.Equal(t, uint32(3), cfg.BreakerFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, "@every 12h", cfg.ResyncSchedule)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.StoreURL())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"OVERLAND_APP_ENV":                   "production",
		"OVERLAND_STORE_DRIVER":              "redis",
		"OVERLAND_REDIS_URL":                 "redis://cache:6379/2",
		"OVERLAND_STORE_KEY":                 "tenant-7",
		"OVERLAND_TELEMETRY_BUFFER":          "32",
		"OVERLAND_BREAKER_FAILURE_THRESHOLD": "5",
		"OVERLAND_BREAKER_TIMEOUT":           "1m",
		"OVERLAND_SANDBOX_OUTCOME":           "cancel",
		"OVERLAND_SANDBOX_OWNED_PLAN":        "yearly",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis://cache:6379/2", cfg.StoreURL())
	assert.Equal(t, "tenant-7", cfg.StoreKey)
	assert.Equal(t, 32, cfg.TelemetryBuffer)
	assert.Equal(t, uint32(5), cfg.BreakerFailureThreshold)
	assert.Equal(t, time.Minute, cfg.BreakerTimeout)
	assert.Equal(t, "cancel", cfg.SandboxOutcome)
	assert.Equal(t, "yearly", cfg.SandboxOwnedPlan)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		errMsg  string
	}{
		{"driver", map[string]string{"OVERLAND_STORE_DRIVER": "cassandra"}, "STORE_DRIVER"},
		{"outcome", map[string]string{"OVERLAND_SANDBOX_OUTCOME": "maybe"}, "SANDBOX_OUTCOME"},
		{"owned plan", map[string]string{"OVERLAND_SANDBOX_OWNED_PLAN": "weekly"}, "SANDBOX_OWNED_PLAN"},
		{"buffer", map[string]string{"OVERLAND_TELEMETRY_BUFFER": "0"}, "TELEMETRY_BUFFER"},
		{"duration", map[string]string{"OVERLAND_BREAKER_TIMEOUT": "soon"}, "failed to parse configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStoreURL_AutoPrefersDatabase(t *testing.T) {
	cfg := &Config{
		StoreDriver: "auto",
		DatabaseURL: "postgres://localhost/overland",
		RedisURL:    "redis://localhost:6379",
		StorePath:   "/tmp/e.json",
	}
	assert.Equal(t, "postgres://localhost/overland", cfg.StoreURL())

	cfg.StoreDriver = "file"
	assert.Equal(t, "/tmp/e.json", cfg.StoreURL())
}
