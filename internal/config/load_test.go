package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sellerledger-sync", cfg.Application.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "export_events", cfg.Kafka.ExportEventsTopic)
	assert.Equal(t, "export_events_dlq", cfg.Kafka.DLQTopic)
	assert.Equal(t, "https://sandbox-quickbooks.api.intuit.com/v3", cfg.QuickBooks.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Export.RequestTimeout)
	assert.False(t, cfg.Export.DryRunOverride)
	assert.Equal(t, 10, cfg.WorkerPool.Size)
	assert.Equal(t, "migrations/postgres", cfg.Postgres.MigrationsPath)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("EXPORT_DRY_RUN_OVERRIDE", "true")

	cfg, err := LoadConfig("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.Export.DryRunOverride)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")

	_, err := LoadConfig("nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}

func TestConfigValidate_CollectsAllFailures(t *testing.T) {
	cfg := &Config{}
	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_URL is required")
	assert.Contains(t, err.Error(), "KAFKA_EXPORT_EVENTS_TOPIC is required")
	assert.Contains(t, err.Error(), "QUICKBOOKS_BASE_URL is required")
}
