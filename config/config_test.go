package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_PORT", "")
	t.Setenv("API_PORT", "not-a-number")
	t.Setenv("LOG_FILE_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 587, cfg.Email.Port)
	assert.False(t, cfg.LogFile.Enabled)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("API_PORT", "9000")
	t.Setenv("DB_HOST", "mysql")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOG_FILE_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.APIPort)
	assert.Equal(t, "mysql", cfg.Database.Host)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.LogFile.Enabled)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
