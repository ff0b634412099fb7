package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"DB_DSN": "postgres://localhost/clinic"}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, int32(2), cfg.DBMinConns)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 20, cfg.BookingRateLimit)
	assert.Equal(t, 2*time.Minute, cfg.JobLockTTL)
	assert.Equal(t, "0 0 * * *", cfg.ArchiveCron)
	assert.Equal(t, "*/15 6-22 * * *", cfg.PassedSweepCron)
	assert.Equal(t, "Europe/Sofia", cfg.Timezone.String())
}

func TestFromEnv_MemoryStorageWithoutDSN(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"STORAGE":      "memory",
		"CORS_ORIGINS": "https://a.example, https://b.example",
		"TIMEZONE":     "UTC",
	}))
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"missing dsn", map[string]string{}},
		{"bad storage", map[string]string{"STORAGE": "mongo"}},
		{"bad cron", map[string]string{"DB_DSN": "x", "ARCHIVE_CRON": "every day"}},
		{"bad ttl", map[string]string{"DB_DSN": "x", "JOB_LOCK_TTL": "soon"}},
		{"zero ttl", map[string]string{"DB_DSN": "x", "JOB_LOCK_TTL": "0s"}},
		{"negative ttl", map[string]string{"DB_DSN": "x", "JOB_LOCK_TTL": "-1m"}},
		{"tiny ttl", map[string]string{"DB_DSN": "x", "JOB_LOCK_TTL": "1ns"}},
		{"bad pool size", map[string]string{"DB_DSN": "x", "DB_MAX_CONNS": "0"}},
		{"bad rate", map[string]string{"DB_DSN": "x", "BOOKING_RATE_LIMIT": "-1"}},
		{"bad timezone", map[string]string{"DB_DSN": "x", "TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.values))
			assert.Error(t, err)
		})
	}
}
