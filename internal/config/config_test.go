package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_RequiresSecrets(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"JWT_SECRET": "s"}))
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)

	_, err = FromEnv(envMap(map[string]string{"DATABASE_URL": "postgres://x"}))
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL": "postgres://localhost/catalog",
		"JWT_SECRET":   "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "public/images", cfg.UploadDir)
	assert.Equal(t, "/images", cfg.UploadURLPrefix)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.DBPingInterval)
	assert.False(t, cfg.CookieSecure)
	assert.False(t, cfg.MetricsEnabled())
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":         "postgres://localhost/catalog",
		"JWT_SECRET":           "secret",
		"PORT":                 "9000",
		"COOKIE_SECURE":        "true",
		"CORS_ALLOWED_ORIGINS": "http://a.test, http://b.test,",
		"METRICS_USER":         "prom",
		"METRICS_PASSWORD":     "pw",
		"DB_PING_INTERVAL":     "5s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.MetricsEnabled())
	assert.Equal(t, 5*time.Second, cfg.DBPingInterval)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	base := map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s"}

	base["COOKIE_SECURE"] = "maybe"
	_, err := FromEnv(envMap(base))
	assert.Error(t, err)

	delete(base, "COOKIE_SECURE")
	base["DB_PING_INTERVAL"] = "soon"
	_, err = FromEnv(envMap(base))
	assert.Error(t, err)
}

func TestFromEnv_RejectsNonPositivePingInterval(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":     "postgres://x",
		"JWT_SECRET":       "s",
		"DB_PING_INTERVAL": "0s",
	}))
	assert.Error(t, err)
}
