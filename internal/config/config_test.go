package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "APP_ENV", "DB_PATH", "SESSION_SECRET", "SESSION_TTL", "BACKEND_URL",
	"BACKEND_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "LOGO_PATH", "PAYMENT_QR_PATH",
}

// isolate runs the test in an empty directory with every key unset.
func isolate(t *testing.T) string {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./dev.db", cfg.DBPath)
	assert.Equal(t, "http://localhost:5000", cfg.BackendURL)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.IsDev())
	assert.Contains(t, cfg.Warnings, "SESSION_SECRET is not set")
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)

	content := "PORT=9090\nDB_PATH=/tmp/from-dotenv.db\nSESSION_SECRET=dotenv-secret\nSESSION_TTL=45m\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.DBPath)
	assert.Equal(t, "dotenv-secret", cfg.SessionSecret)
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_Durations(t *testing.T) {
	isolate(t)
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("BACKEND_TIMEOUT", "30")
	t.Setenv("SESSION_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "SESSION_TTL")
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	isolate(t)
	t.Setenv("SESSION_TTL", "-5m")

	_, err := Load()
	assert.Error(t, err)
}

func TestIsDev(t *testing.T) {
	assert.True(t, Config{Env: "development"}.IsDev())
	assert.False(t, Config{Env: "production"}.IsDev())
}
