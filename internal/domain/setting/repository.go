package setting

import "context"

// Repository defines the persistence port for settings. Every read excludes
// removed settings; keys and categories are expected to be normalized.
type Repository interface {
	// Create persists a new setting, returning ErrAlreadyExists when an
	// active setting with the same key exists
	Create(ctx context.Context, s *Setting) error

	// FindByKey returns the active setting for key or ErrNotFound
	FindByKey(ctx context.Context, key string) (*Setting, error)

	// FindByKeys returns the active settings matching any of keys
	FindByKeys(ctx context.Context, keys []string) ([]Setting, error)

	// FindAll returns every active setting, enabled or not
	FindAll(ctx context.Context) ([]Setting, error)

	// FindByCategory returns the active settings of a category
	FindByCategory(ctx context.Context, category string) ([]Setting, error)

	// UpdateValue replaces the value of an active setting in one atomic
	// operation guarded by the stored value type
	UpdateValue(ctx context.Context, key string, value Value) (*Setting, error)

	// Increment adds one to a Number setting in one atomic operation and
	// returns the post-increment setting
	Increment(ctx context.Context, key string) (*Setting, error)

	// Remove soft-deletes the active setting for key
	Remove(ctx context.Context, key string) error
}
