package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is required")
}

func TestLoadConfig_DefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef-secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 24*time.Hour, cfg.Security.JWTExpiration)
	assert.Equal(t, "jwt_token", cfg.Security.TokenCookie)
	assert.Equal(t, 30, cfg.Booking.DefaultSlotMinutes)
	assert.Equal(t, 2*time.Hour, cfg.Booking.CancelCutoff)
	assert.Equal(t, "@every 5m", cfg.Scheduler.CompletionSpec)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfigFile(t, `
server:
  port: "9090"
  mode: release
database:
  type: postgres
  host: db.internal
  user: booking
  password: hunter2
security:
  jwt_secret: file-secret-0123456789
  jwt_expiration: 2h
booking:
  default_slot_minutes: 45
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.Security.JWTExpiration)
	assert.Equal(t, 45, cfg.Booking.DefaultSlotMinutes)
	assert.Equal(t, "host=db.internal port=5432 user=booking password=hunter2 dbname=booking sslmode=disable", cfg.GetDatabaseDSN())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret-0123456789")
	t.Setenv("DB_PATH", "/tmp/override.db")
	path := writeConfigFile(t, `
security:
  jwt_secret: file-secret-0123456789
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret-0123456789", cfg.Security.JWTSecret)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
}

func TestLoadConfig_RejectsUnknownDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef-secret")
	t.Setenv("DB_TYPE", "oracle")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestSanitizeForLogging(t *testing.T) {
	cfg := &Config{}
	cfg.Security.JWTSecret = "secret"
	cfg.Database.Password = "pw"

	sanitized := cfg.SanitizeForLogging()
	assert.Equal(t, "[REDACTED]", sanitized.Security.JWTSecret)
	assert.Equal(t, "[REDACTED]", sanitized.Database.Password)
	assert.Equal(t, "secret", cfg.Security.JWTSecret)
}
