package setting

import "context"

// SnapshotCache stores the flattened settings snapshot between reloads
type SnapshotCache interface {
	// Get returns the cached snapshot and whether it was present
	Get(ctx context.Context) (Snapshot, bool, error)
	// Set replaces the cached snapshot
	Set(ctx context.Context, snap Snapshot) error
	// Invalidate drops the cached snapshot
	Invalidate(ctx context.Context) error
}

// NopSnapshotCache never holds a snapshot
type NopSnapshotCache struct{}

func (NopSnapshotCache) Get(context.Context) (Snapshot, bool, error) { return nil, false, nil }
func (NopSnapshotCache) Set(context.Context, Snapshot) error { return nil }
func (NopSnapshotCache) Invalidate(context.Context) error { return nil }
