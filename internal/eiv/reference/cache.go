package reference

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eiv-admissions/internal/models"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore caches reference snapshots keyed by query text.
type SnapshotStore interface {
	Get(ctx context.Context, query string) (*models.ReferenceDataset, error)
	Set(ctx context.Context, query string, ds *models.ReferenceDataset) error
}

const snapshotKeyPrefix = "eiv:reference:"

// RedisSnapshotCache stores snapshots as JSON with a fixed TTL.
type RedisSnapshotCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSnapshotCache(client redis.Cmdable, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

// SnapshotKey derives the cache key for query.
func SnapshotKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return snapshotKeyPrefix + hex.EncodeToString(sum[:8])
}

// Get returns nil without error on a miss.
func (c *RedisSnapshotCache) Get(ctx context.Context, query string) (*models.ReferenceDataset, error) {
	raw, err := c.client.Get(ctx, SnapshotKey(query)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reference snapshot: %w", err)
	}

	var ds models.ReferenceDataset
	if err := json.Unmarshal([]byte(raw), &ds); err != nil {
		return nil, fmt.Errorf("failed to decode reference snapshot: %w", err)
	}
	return &ds, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, query string, ds *models.ReferenceDataset) error {
	payload, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to encode reference snapshot: %w", err)
	}
	if err := c.client.Set(ctx, SnapshotKey(query), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write reference snapshot: %w", err)
	}
	return nil
}
