package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/party")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":4000", cfg.HTTPAddr)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "party_zala_token", cfg.CookieName)
	assert.Equal(t, 90, cfg.MaxRangeDays)
	assert.Equal(t, 5, cfg.AuthRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.AuthRateWindow)
	assert.False(t, cfg.EnforceOwnership)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/party")
	t.Setenv("JWT_SECRET", testSecret)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 172.16.0.0/12")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "proxy.local")
	_, err = Load()
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}

func TestLoadTimezone(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/party")
	t.Setenv("JWT_SECRET", testSecret)

	t.Setenv("TIMEZONE", "Europe/Sofia")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Sofia", cfg.Location.String())

	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.ErrorContains(t, err, "TIMEZONE")
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", testSecret)
	_, err := Load()
	assert.ErrorContains(t, err, "DB_DSN")

	t.Setenv("DB_DSN", "postgres://localhost/party")
	t.Setenv("JWT_SECRET", "short")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/party")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("BCRYPT_COST", "twelve")

	_, err := Load()
	assert.ErrorContains(t, err, "BCRYPT_COST")
}

func TestLoadYAMLBeneathEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "" +
		"DB_DSN: \"postgres://${PARTY_DB_HOST}/party\"\n" +
		"JWT_SECRET: \"" + testSecret + "\"\n" +
		"HTTP_ADDR: \":9000\"\n" +
		"ENFORCE_OWNERSHIP: \"true\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PARTY_DB_HOST", "db.internal")
	t.Setenv("HTTP_ADDR", ":8081")
	// Registered with t.Setenv first so the originals are restored afterwards.
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("DB_DSN")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://db.internal/party", cfg.DBDSN)
	assert.Equal(t, ":8081", cfg.HTTPAddr, "environment wins over file")
	assert.True(t, cfg.EnforceOwnership)
}
