package setting

import (
	"context"

	"github.com/erp/backoffice/internal/domain/money"
	"github.com/erp/backoffice/internal/domain/setting"
	"go.uber.org/zap"
)

// SnapshotLoader reads the current settings snapshot from storage
type SnapshotLoader interface {
	LoadAsMap(ctx context.Context) setting.Snapshot
}

// Provider hands out the configuration snapshot built at process start.
// Reload is the only way to refresh it from storage.
type Provider struct {
	loader SnapshotLoader
	cache  setting.SnapshotCache
	logger *zap.Logger
}

// NewProvider creates a new configuration provider
func NewProvider(loader SnapshotLoader, cache setting.SnapshotCache, logger *zap.Logger) *Provider {
	if cache == nil {
		cache = setting.NopSnapshotCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		loader: loader,
		cache:  cache,
		logger: logger,
	}
}

// Current returns the cached snapshot, loading it on a miss
func (p *Provider) Current(ctx context.Context) setting.Snapshot {
	snap, ok, err := p.cache.Get(ctx)
	if err != nil {
		p.logger.Warn("Failed to read settings snapshot from cache", zap.Error(err))
	}
	if ok {
		return snap
	}
	return p.Reload(ctx)
}

// Reload re-fetches the snapshot from storage and refreshes the cache.
// An empty snapshot is not cached.
func (p *Provider) Reload(ctx context.Context) setting.Snapshot {
	snap := p.loader.LoadAsMap(ctx)
	if len(snap) == 0 {
		return snap
	}
	if err := p.cache.Set(ctx, snap); err != nil {
		p.logger.Warn("Failed to cache settings snapshot", zap.Error(err))
	}
	return snap
}

// MoneyFormatter builds a formatter from the current snapshot
func (p *Provider) MoneyFormatter(ctx context.Context) (*money.Formatter, error) {
	fs, err := FormatSettingsFromSnapshot(p.Current(ctx))
	if err != nil {
		return nil, err
	}
	return money.NewFormatter(fs)
}
