package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/arena_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5300", cfg.ListenAddr)
	assert.Equal(t, 24, cfg.JWTExpiryHours)
	assert.Equal(t, "https://api.mollie.com", cfg.MollieBaseURL)
	assert.Equal(t, 10, cfg.CentsPerCredit)
	assert.InDelta(t, 0.05, cfg.SecretExposureProbability, 1e-9)
	assert.True(t, cfg.ReconcileEnabled)
	assert.Equal(t, 5, cfg.ReconcileIntervalMinutes)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	// t.Setenv registers the restore; Unsetenv makes the variable truly
	// absent, which is what the required tag checks.
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("CENTS_PER_CREDIT", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CENTS_PER_CREDIT", "10")
	t.Setenv("SECRET_EXPOSURE_PROBABILITY", "1.5")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("SECRET_EXPOSURE_PROBABILITY", "0.05")
	t.Setenv("JWT_EXPIRY_HOURS", "-1")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("JWT_EXPIRY_HOURS", "24")
	t.Setenv("RECONCILE_INTERVAL_MINUTES", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("CENTS_PER_CREDIT", "25")
	t.Setenv("RECONCILE_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 25, cfg.CentsPerCredit)
	assert.False(t, cfg.ReconcileEnabled)
}
