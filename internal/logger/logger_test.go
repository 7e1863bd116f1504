package logger

import (
	"testing"

	"github.com/sellerledger-sync/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown", ""} {
		t.Run("level_"+level, func(t *testing.T) {
			cfg := &config.Config{Logging: config.LoggingConfig{Level: level}}
			log := NewLogger(cfg)
			assert.NotNil(t, log)
		})
	}
}
