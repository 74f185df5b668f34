package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "community_service_db", cfg.Database.DBName)
	assert.Equal(t, "post_images", cfg.Storage.Bucket)
	assert.Equal(t, time.Hour, cfg.Redis.SnapshotTTL)
	assert.Equal(t, "community-service", cfg.Nats.ClientID)
}

func TestLoadDatabaseConfigPrefix(t *testing.T) {
	t.Setenv("COMMUNITY_DB_HOST", "db.internal")
	t.Setenv("COMMUNITY_DB_PORT", "6543")
	t.Setenv("COMMUNITY_DB_MAX_LIFETIME", "90s")

	cfg, err := LoadDatabaseConfig("COMMUNITY_")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.MaxLifetime)
}

func TestLoadDatabaseConfigInvalidPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	_, err := LoadDatabaseConfig("")
	assert.Error(t, err)
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("FEED_SNAPSHOT_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Redis.SnapshotTTL)
}
