package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "HTTP_PORT", "STORE", "POSTGRES_DSN", "BOOKING_LOCK", "LOCK_TTL",
	"JWT_SECRET", "TOKEN_TTL", "SLOT_DURATION", "LOGIN_RATE_RPS", "LOGIN_RATE_BURST",
	"SHUTDOWN_TIMEOUT", "WORK_START", "WORK_END", "TIMEZONE",
	"REDIS_URL", "REDIS_ADDR", "REDIS_USERNAME", "REDIS_PASSWORD",
}

// setEnv blanks every key Load reads and then applies overrides. Empty
// values count as unset.
func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	for k, v := range overrides {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"STORE":      "memory",
		"JWT_SECRET": "s",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, LockNone, cfg.BookingLock)
	assert.Equal(t, 9*time.Hour, cfg.WorkStart)
	assert.Equal(t, 17*time.Hour, cfg.WorkEnd)
	assert.Equal(t, 30*time.Minute, cfg.SlotDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 10, cfg.LoginRateBurst)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"APP_ENV":       "prod",
		"STORE":         "POSTGRES",
		"POSTGRES_DSN":  "postgres://localhost/clinic",
		"JWT_SECRET":    "s",
		"WORK_START":    "08:30",
		"WORK_END":      "12:00",
		"SLOT_DURATION": "15m",
		"LOCK_TTL":      "3",
		"TIMEZONE":      "America/New_York",
		"REDIS_URL":     "redis://user:pw@cache:6380",
		"BOOKING_LOCK":  "redis",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, 8*time.Hour+30*time.Minute, cfg.WorkStart)
	assert.Equal(t, 12*time.Hour, cfg.WorkEnd)
	assert.Equal(t, 15*time.Minute, cfg.SlotDuration)
	assert.Equal(t, 3*time.Second, cfg.LockTTL)
	assert.Equal(t, "America/New_York", cfg.Location.String())
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, "user", cfg.RedisUsername)
	assert.Equal(t, "pw", cfg.RedisPassword)
	assert.Equal(t, LockRedis, cfg.BookingLock)
}

func TestLoadErrors(t *testing.T) {
	base := map[string]string{"STORE": "memory", "JWT_SECRET": "s"}

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}, "JWT_SECRET"},
		{"postgres without dsn", map[string]string{"STORE": "postgres"}, "POSTGRES_DSN"},
		{"unknown store", map[string]string{"STORE": "sqlite"}, "STORE"},
		{"unknown lock", map[string]string{"BOOKING_LOCK": "etcd"}, "BOOKING_LOCK"},
		{"redis lock without redis", map[string]string{"BOOKING_LOCK": "redis"}, "REDIS"},
		{"bad clock", map[string]string{"WORK_START": "9am"}, "WORK_START"},
		{"inverted hours", map[string]string{"WORK_START": "18:00"}, "WORK_START"},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
		{"zero slot", map[string]string{"SLOT_DURATION": "0s"}, "SLOT_DURATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range base {
				env[k] = v
			}
			for k, v := range tt.env {
				env[k] = v
			}
			setEnv(t, env)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
