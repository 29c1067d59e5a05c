package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MAX_FILE_UPLOAD", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "JWT_EXPIRE", "CRON_ENABLED", "GO_ENV"} {
		t.Setenv(key, "")
	}

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 5000, env.PORT)
	assert.Equal(t, int64(1000000), env.MAX_FILE_UPLOAD)
	assert.Equal(t, 100, env.RATE_LIMIT_MAX)
	assert.Equal(t, 10*time.Minute, env.RATE_LIMIT_WINDOW)
	assert.Equal(t, 30*24*time.Hour, env.JWT_EXPIRE)
	assert.Equal(t, "development", env.GO_ENV)
	assert.True(t, env.CRON_ENABLED)
	assert.False(t, env.IsProduction())
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("MAX_FILE_UPLOAD", "2048")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("CRON_ENABLED", "false")
	t.Setenv("GO_ENV", "production")

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 8081, env.PORT)
	assert.Equal(t, int64(2048), env.MAX_FILE_UPLOAD)
	assert.Equal(t, time.Minute, env.RATE_LIMIT_WINDOW)
	assert.False(t, env.CRON_ENABLED)
	assert.True(t, env.IsProduction())
}

func TestValidate(t *testing.T) {
	env := &EnviornmentVariable{}
	assert.ErrorIs(t, env.Validate(), ErrMissingJWTSecret)

	env.JWT_SECRET = "secret"
	assert.NoError(t, env.Validate())
}
