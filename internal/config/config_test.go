package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "auth-storage", cfg.Session.Key)
	assert.Zero(t, cfg.Session.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Auth.LoginLatency)
	assert.Equal(t, 60, cfg.JWT.AccessExpiry)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Empty(t, cfg.Catalog.SeedPath)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("SESSION_BACKEND", "SQLite")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("AUTH_LOGIN_LATENCY", "0s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://bozoruz.uz, https://admin.bozoruz.uz,")
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	cfg := Load()

	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Zero(t, cfg.Auth.LoginLatency)
	assert.Equal(t, []string{"https://bozoruz.uz", "https://admin.bozoruz.uz"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CATALOG_SEED_PATH=/srv/catalog.yaml\nJWT_ACCESS_EXPIRY=15\n"), 0o600))
	// godotenv exports into the process environment
	t.Cleanup(func() {
		os.Unsetenv("CATALOG_SEED_PATH")
		os.Unsetenv("JWT_ACCESS_EXPIRY")
	})

	cfg := Load()

	assert.Equal(t, "/srv/catalog.yaml", cfg.Catalog.SeedPath)
	assert.Equal(t, 15, cfg.JWT.AccessExpiry)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
	assert.Equal(t, []string{"a", "b"}, splitList("a,b"))
}
