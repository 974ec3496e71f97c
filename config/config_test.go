package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/platform")
	t.Setenv("SECRET_KEY", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 192*time.Hour, cfg.AccessTokenExpire)
	assert.Equal(t, 24*time.Hour, cfg.PaymentPendingTTL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8000"}, cfg.CORSOrigins)
	assert.Equal(t, "http://localhost:3000,http://localhost:8000", cfg.AllowedOrigins())
	assert.Equal(t, 512*1024*1024, cfg.UploadLimitBytes())
	assert.True(t, cfg.CronEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_CORS_ORIGINS", " https://a.example , https://b.example ")
	t.Setenv("ACCESS_TOKEN_EXPIRE", "1h")
	t.Setenv("CRON_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.AccessTokenExpire)
	assert.False(t, cfg.CronEnabled)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/platform")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadSpacesNeedsBucket(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "spaces")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SPACES_BUCKET", "videos")
	t.Setenv("SPACES_ENDPOINT", "https://nyc3.digitaloceanspaces.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "spaces", cfg.StorageDriver)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "", " c "}))
	assert.Empty(t, splitList(nil))
}
