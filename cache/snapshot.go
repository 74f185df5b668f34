package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"community-service/model"
)

const snapshotKey = "community:feed:snapshot"

// ErrMiss is returned when no snapshot is stored.
var ErrMiss = errors.New("cache miss")

// SnapshotCache keeps the last successfully loaded feed in Redis so a
// restarted instance can serve it before its first load finishes.
type SnapshotCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{redis: client, ttl: ttl}
}

type snapshot struct {
	Posts    []models.Post `json:"posts"`
	LoadedAt time.Time     `json:"loaded_at"`
}

func (c *SnapshotCache) Save(ctx context.Context, posts []models.Post, loadedAt time.Time) error {
	data, err := json.Marshal(snapshot{Posts: posts, LoadedAt: loadedAt})
	if err != nil {
		return fmt.Errorf("failed to encode feed snapshot: %w", err)
	}

	if err := c.redis.Set(ctx, snapshotKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache feed snapshot: %w", err)
	}
	return nil
}

func (c *SnapshotCache) Load(ctx context.Context) ([]models.Post, time.Time, error) {
	data, err := c.redis.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, ErrMiss
		}
		return nil, time.Time{}, fmt.Errorf("failed to get feed snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode feed snapshot: %w", err)
	}
	return snap.Posts, snap.LoadedAt, nil
}
