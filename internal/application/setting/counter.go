package setting

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// Counter increments numeric settings. The increment is a single atomic
// storage operation, so concurrent callers never lose updates.
type Counter struct {
	repo   setting.Repository
	cache  setting.SnapshotCache
	logger *zap.Logger
}

// NewCounter creates a new counter service
func NewCounter(repo setting.Repository, cache setting.SnapshotCache, logger *zap.Logger) *Counter {
	if cache == nil {
		cache = setting.NopSnapshotCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Counter{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Increment adds one to the Number setting for key and returns it after the
// increment. Non-numeric settings fail with ErrTypeMismatch.
func (c *Counter) Increment(ctx context.Context, key string) (*setting.Setting, error) {
	key = setting.NormalizeKey(key)
	if key == "" {
		return nil, shared.ErrNotFound
	}

	st, err := c.repo.Increment(ctx, key)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrTypeMismatch) {
			c.logger.Error("Failed to increment setting", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}

	if err := c.cache.Invalidate(ctx); err != nil {
		c.logger.Warn("Failed to invalidate settings snapshot", zap.Error(err))
	}
	return st, nil
}
