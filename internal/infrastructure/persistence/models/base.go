package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel maps shared.BaseEntity to columns
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to a BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func baseModelFrom(e shared.BaseEntity) BaseModel {
	return BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}
