package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/domain/setting"
)

// InMemorySnapshotCache keeps one settings snapshot per process with an
// optional TTL. It suits single-instance deployments and tests.
type InMemorySnapshotCache struct {
	mu        sync.RWMutex
	snapshot  setting.Snapshot
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

var _ setting.SnapshotCache = (*InMemorySnapshotCache)(nil)

// NewInMemorySnapshotCache creates a cache whose entry expires after ttl.
// A ttl of zero keeps the snapshot until it is invalidated.
func NewInMemorySnapshotCache(ttl time.Duration) *InMemorySnapshotCache {
	return &InMemorySnapshotCache{ttl: ttl, now: time.Now}
}

// Get returns a copy of the cached snapshot
func (c *InMemorySnapshotCache) Get(_ context.Context) (setting.Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snapshot == nil {
		return nil, false, nil
	}
	if c.ttl > 0 && !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	return c.snapshot.Clone(), true, nil
}

// Set stores a copy of snapshot
func (c *InMemorySnapshotCache) Set(_ context.Context, snapshot setting.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = snapshot.Clone()
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate drops the cached snapshot
func (c *InMemorySnapshotCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
	return nil
}
