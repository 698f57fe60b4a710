package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const snapshotKey = "snapshot"

// RedisSnapshotCache stores the settings snapshot as one JSON blob so every
// instance behind a load balancer sees the same cached configuration
type RedisSnapshotCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	key        string
	ttl        time.Duration
	logger     *zap.Logger
}

var _ setting.SnapshotCache = (*RedisSnapshotCache)(nil)

// NewRedisSnapshotCache connects to Redis and verifies the connection
func NewRedisSnapshotCache(cfg config.RedisConfig, cacheCfg config.CacheConfig, logger *zap.Logger) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisSnapshotCacheWithClient(client, cacheCfg.KeyPrefix, cacheCfg.SnapshotTTL, logger)
	c.ownsClient = true
	return c, nil
}

// NewRedisSnapshotCacheWithClient creates a cache on a shared client. The
// caller keeps ownership of the client.
func NewRedisSnapshotCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisSnapshotCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSnapshotCache{
		client: client,
		key:    keyPrefix + snapshotKey,
		ttl:    ttl,
		logger: logger,
	}
}

// Get reads and decodes the cached snapshot. A corrupt entry is deleted
// and reported as an error.
func (c *RedisSnapshotCache) Get(ctx context.Context) (setting.Snapshot, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get settings snapshot from cache: %w", err)
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		c.logger.Error("Failed to decode cached settings snapshot", zap.String("key", c.key), zap.Error(err))
		_ = c.client.Del(ctx, c.key).Err()
		return nil, false, err
	}
	return snapshot, true, nil
}

// Set stores snapshot with the configured TTL
func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot setting.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode settings snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache settings snapshot: %w", err)
	}
	return nil
}

// Invalidate deletes the cached snapshot
func (c *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate settings snapshot: %w", err)
	}
	return nil
}

// Close closes the client when the cache created it
func (c *RedisSnapshotCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// decodeSnapshot keeps numbers as json.Number, matching snapshots built
// from the repository
func decodeSnapshot(data []byte) (setting.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var snapshot setting.Snapshot
	if err := dec.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode settings snapshot: %w", err)
	}
	if snapshot == nil {
		snapshot = setting.Snapshot{}
	}
	return snapshot, nil
}
