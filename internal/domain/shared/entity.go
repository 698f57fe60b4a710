package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit timestamps of a stored record.
// Timestamps are UTC at microsecond precision so they survive a PostgreSQL
// round trip unchanged.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity creates a base entity with a fresh ID stamped now
func NewBaseEntity() BaseEntity {
	return NewBaseEntityAt(time.Now())
}

// NewBaseEntityAt creates a base entity with a fresh ID stamped at now
func NewBaseEntityAt(now time.Time) BaseEntity {
	ts := stamp(now)
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Touch bumps the update timestamp
func (e *BaseEntity) Touch() {
	e.TouchAt(time.Now())
}

// TouchAt sets the update timestamp to now. It never moves UpdatedAt before
// CreatedAt.
func (e *BaseEntity) TouchAt(now time.Time) {
	ts := stamp(now)
	if ts.Before(e.CreatedAt) {
		ts = e.CreatedAt
	}
	e.UpdatedAt = ts
}

func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
