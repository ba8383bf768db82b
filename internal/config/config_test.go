package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "STORE_DRIVER", "DB_HOST", "DB_PORT", "CACHE_TTL", "LLM_TIMEOUT", "CHAT_RATE_PER_MIN", "IS_PROD", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, StoreMySQL, cfg.StoreDriver)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 20, cfg.ChatRatePerMin)
	assert.False(t, cfg.IsProd)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("DB_USER", "wallet")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "care")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("CHAT_RATE_PER_MIN", "abc")
	t.Setenv("IS_PROD", "true")

	cfg := LoadConfig()
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 20, cfg.ChatRatePerMin, "bad numbers fall back")
	assert.True(t, cfg.IsProd)
	assert.Equal(t, "wallet:pw@tcp(db:3307)/care?parseTime=true", cfg.DSN())
}
