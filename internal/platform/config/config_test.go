package config_test

import (
	"testing"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 50, cfg.Import.ChunkSize)
	assert.Equal(t, 2, cfg.Import.Concurrency)
	assert.Equal(t, 3, cfg.Import.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Import.RetryDelay)
	assert.Equal(t, int64(10000000), cfg.Import.HighValueThreshold)
	assert.Equal(t, "1-1000", cfg.Account.Kas)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("IMPORT_CHUNK_SIZE", "10")
	t.Setenv("IMPORT_RETRY_DELAY", "1s")
	t.Setenv("IMPORT_CHUNK_DELAY", "bogus")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Import.ChunkSize)
	assert.Equal(t, time.Second, cfg.Import.RetryDelay)
	assert.Equal(t, 10*time.Millisecond, cfg.Import.ChunkDelay, "invalid durations fall back to the default")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("PGSQL_URL", "")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RejectsBadChunkSize(t *testing.T) {
	t.Setenv("IMPORT_CHUNK_SIZE", "0")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}
