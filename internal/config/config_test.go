package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp isolates Load from any .env in the package directory
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func clearEnv(t *testing.T) {
	for _, key := range []string{"CONFIG_FILE", "PORT", "DB_PATH", "JWT_SECRET", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "DEFAULT_EPSILON", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "./data/sdr/records.db", cfg.DBPath)
	assert.Equal(t, 0.0001, cfg.DefaultEpsilon)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.True(t, cfg.UsesDefaultJWTSecret())

	t.Setenv("JWT_SECRET", "station-secret")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.UsesDefaultJWTSecret())
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: ":9090"
db_path: /tmp/sdr.db
default_epsilon: 0.001
log:
  level: debug
rate_limit:
  requests_per_second: 5
  burst: 10
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RATE_LIMIT_BURST", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "/tmp/sdr.db", cfg.DBPath)
	assert.Equal(t, 0.001, cfg.DefaultEpsilon)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 15, cfg.RateLimit.Burst)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to ""
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	t.Cleanup(func() { _ = os.Unsetenv("JWT_SECRET") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=from-dotenv\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.JWTSecret)
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	t.Setenv("DEFAULT_EPSILON", "abc")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DEFAULT_EPSILON", "-1")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("DEFAULT_EPSILON", "NaN")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("DEFAULT_EPSILON", "")
	t.Setenv("RATE_LIMIT_RPS", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)
	t.Setenv("CONFIG_FILE", "/does/not/exist.yaml")

	_, err := Load()
	assert.Error(t, err)
}
