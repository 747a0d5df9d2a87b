package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DB_URL", "LOG_LEVEL", "JWT_EXPIRY_HOURS", "BCRYPT_COST", "CORS_ORIGINS",
		"CACHE_HOST", "CACHE_PORT", "DASHBOARD_CACHE_TTL", "TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN",
		"REMINDER_SCHEDULE", "REMINDER_DAYS", "FREEZE_EXTENDS_EXPIRY", "LOGIN_RATE_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "memory")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 7, cfg.ReminderDays)
	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.FreezeExtendsExpiry)
	assert.False(t, cfg.RemindersEnabled())
	assert.False(t, cfg.CacheEnabled())
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("FREEZE_EXTENDS_EXPIRY", "true")
	t.Setenv("CACHE_HOST", "localhost")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.FreezeExtendsExpiry)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.RemindersEnabled())
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing secret", "JWT_SECRET", ""},
		{"postgres without url", "DB_DRIVER", "postgres"},
		{"unknown driver", "DB_DRIVER", "sqlite"},
		{"bad integer", "REMINDER_DAYS", "seven"},
		{"bad duration", "DASHBOARD_CACHE_TTL", "soon"},
		{"bad bool", "FREEZE_EXTENDS_EXPIRY", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
