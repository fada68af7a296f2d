package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func validConfig() Config {
	return Config{
		Port:               8050,
		Env:                "development",
		LogLevel:           "info",
		RateLimitPerMinute: 600,
		DataDir:            "tables",
		CacheTTLMinutes:    60,
		SupplierPolicy:     SupplierPolicyFirst,
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8050, cfg.Port)
	assert.Equal(t, "tables", cfg.DataDir)
	assert.Equal(t, SupplierPolicyFirst, cfg.SupplierPolicy)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("SUPPLIER_POLICY", "cheapest")
	t.Setenv("TODAY", "2025-01-31")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, SupplierPolicyCheapest, cfg.SupplierPolicy)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), cfg.Clock()())
}

func TestValidate_RejectsUnknownPolicy(t *testing.T) {
	cfg := validConfig()
	cfg.SupplierPolicy = "random"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPPLIER_POLICY")
}

func TestValidate_RejectsBadToday(t *testing.T) {
	cfg := validConfig()
	cfg.Today = "31/01/2025"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TODAY")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 0
	cfg.DataDir = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "DATA_DIR")
}

func TestClock_WallClockWhenUnset(t *testing.T) {
	cfg := validConfig()
	before := time.Now()
	got := cfg.Clock()()
	assert.False(t, got.Before(before))
}
