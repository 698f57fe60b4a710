package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository implements setting.Repository using GORM. It runs
// on both the postgres and sqlite dialects.
type GormSettingRepository struct {
	db *gorm.DB
}

var _ setting.Repository = (*GormSettingRepository)(nil)

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *GormSettingRepository) WithTx(tx *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: tx}
}

func (r *GormSettingRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.SettingModel{}).Where("removed = ?", false)
}

// Create inserts a new setting. The partial unique index on key rejects a
// second active setting with the same key.
func (r *GormSettingRepository) Create(ctx context.Context, s *setting.Setting) error {
	model, err := models.SettingModelFromDomain(s)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.ErrAlreadyExists.Code,
				fmt.Sprintf("Setting '%s' already exists", s.Key))
		}
		return fmt.Errorf("create setting %q: %w", s.Key, err)
	}
	return nil
}

// FindByKey returns the active setting for key
func (r *GormSettingRepository) FindByKey(ctx context.Context, key string) (*setting.Setting, error) {
	var model models.SettingModel
	if err := r.active(ctx).Where("key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find setting %q: %w", key, err)
	}
	return model.ToDomain()
}

// FindByKeys returns the active settings whose key is in keys, ordered by key
func (r *GormSettingRepository) FindByKeys(ctx context.Context, keys []string) ([]setting.Setting, error) {
	if len(keys) == 0 {
		return []setting.Setting{}, nil
	}
	var rows []models.SettingModel
	if err := r.active(ctx).Where("key IN ?", keys).Order("key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find settings by keys: %w", err)
	}
	return toDomainSettings(rows)
}

// FindAll returns every active setting ordered by category and key
func (r *GormSettingRepository) FindAll(ctx context.Context) ([]setting.Setting, error) {
	var rows []models.SettingModel
	if err := r.active(ctx).Order("category").Order("key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find all settings: %w", err)
	}
	return toDomainSettings(rows)
}

// FindByCategory returns the active settings of category ordered by key
func (r *GormSettingRepository) FindByCategory(ctx context.Context, category string) ([]setting.Setting, error) {
	var rows []models.SettingModel
	if err := r.active(ctx).Where("category = ?", category).Order("key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find settings in category %q: %w", category, err)
	}
	return toDomainSettings(rows)
}

// UpdateValue replaces the payload in a single UPDATE ... RETURNING. The
// stored value_type is part of the filter, so a write of the wrong type
// never lands.
func (r *GormSettingRepository) UpdateValue(ctx context.Context, key string, value setting.Value) (*setting.Setting, error) {
	if value.IsZero() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("Setting '%s' requires a value", key))
	}
	payload, num, err := models.EncodeValue(value)
	if err != nil {
		return nil, fmt.Errorf("encode setting %q: %w", key, err)
	}

	return r.updateReturning(ctx, key, value.Type(), map[string]any{
		"value":      payload,
		"num_value":  num,
		"updated_at": time.Now(),
	})
}

// Increment adds one to a Number setting in a single UPDATE ... RETURNING,
// so concurrent callers each observe a distinct post-increment value. A
// NULL number counts as zero.
func (r *GormSettingRepository) Increment(ctx context.Context, key string) (*setting.Setting, error) {
	return r.updateReturning(ctx, key, setting.ValueTypeNumber, map[string]any{
		"num_value":  gorm.Expr("COALESCE(num_value, 0) + 1"),
		"updated_at": time.Now(),
	})
}

func (r *GormSettingRepository) updateReturning(ctx context.Context, key string, vt setting.ValueType, updates map[string]any) (*setting.Setting, error) {
	var model models.SettingModel
	result := r.db.WithContext(ctx).
		Model(&model).
		Clauses(clause.Returning{}).
		Where("key = ? AND removed = ? AND value_type = ?", key, false, vt).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update setting %q: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, r.missOrMismatch(ctx, key, vt)
	}
	return model.ToDomain()
}

// missOrMismatch explains why a guarded update matched no row
func (r *GormSettingRepository) missOrMismatch(ctx context.Context, key string, want setting.ValueType) error {
	var model models.SettingModel
	err := r.active(ctx).Select("value_type").Where("key = ?", key).Take(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case err != nil:
		return fmt.Errorf("find setting %q: %w", key, err)
	default:
		return shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("Setting '%s' holds %s, not %s", key, model.ValueType, want))
	}
}

// Remove soft-deletes the active setting for key
func (r *GormSettingRepository) Remove(ctx context.Context, key string) error {
	result := r.active(ctx).Where("key = ?", key).Updates(map[string]any{
		"removed":    true,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("remove setting %q: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainSettings(rows []models.SettingModel) ([]setting.Setting, error) {
	out := make([]setting.Setting, 0, len(rows))
	for i := range rows {
		s, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}
