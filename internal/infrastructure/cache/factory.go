package cache

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SnapshotCacheFactory builds the settings snapshot cache selected by config
type SnapshotCacheFactory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SnapshotCacheFactoryOption configures the factory
type SnapshotCacheFactoryOption func(*SnapshotCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-memory cache (default true)
func WithInMemoryFallback(allow bool) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSnapshotCacheFactory creates a new factory
func NewSnapshotCacheFactory(cfg *config.Config, opts ...SnapshotCacheFactoryOption) *SnapshotCacheFactory {
	f := &SnapshotCacheFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured cache and a close function
func (f *SnapshotCacheFactory) Create() (setting.SnapshotCache, func() error, error) {
	noop := func() error { return nil }

	switch f.cfg.Cache.Backend {
	case config.CacheNone:
		return setting.NopSnapshotCache{}, noop, nil
	case config.CacheMemory:
		return NewInMemorySnapshotCache(f.cfg.Cache.SnapshotTTL), noop, nil
	case config.CacheRedis:
		c, err := NewRedisSnapshotCache(f.cfg.Redis, f.cfg.Cache, f.logger.Named("snapshot_cache"))
		if err == nil {
			f.logger.Info("Using Redis settings snapshot cache", zap.String("addr", f.cfg.Redis.Addr()))
			return c, c.Close, nil
		}
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("Redis required for settings cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory settings cache. "+
			"Instances will not share cached settings.", zap.Error(err))
		return NewInMemorySnapshotCache(f.cfg.Cache.SnapshotTTL), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", f.cfg.Cache.Backend)
	}
}
