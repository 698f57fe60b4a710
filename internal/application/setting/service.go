package setting

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/backoffice/internal/domain/money"
	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// KeyDefaultCurrencyCode holds the ISO 4217 code of the company currency
const KeyDefaultCurrencyCode = "default_currency_code"

// Service is the settings store: typed, soft-deletable key/value settings
type Service struct {
	repo   setting.Repository
	cache  setting.SnapshotCache
	logger *zap.Logger
}

// NewService creates a new settings service. A nil cache disables caching.
func NewService(repo setting.Repository, cache setting.SnapshotCache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = setting.NopSnapshotCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// CreateInput describes a new setting
type CreateInput struct {
	Category      string
	Key           string
	ValueType     setting.ValueType
	Value         any
	Enabled       *bool
	IsPrivate     bool
	IsCoreSetting bool
}

// GetByKey returns the active setting for key. An empty key is reported as
// not found without touching storage.
func (s *Service) GetByKey(ctx context.Context, key string) (*setting.Setting, error) {
	key = setting.NormalizeKey(key)
	if key == "" {
		return nil, shared.ErrNotFound
	}
	return s.repo.FindByKey(ctx, key)
}

// GetManyByKeys returns the active settings among keys. Unknown keys are
// omitted and duplicates collapse to one result.
func (s *Service) GetManyByKeys(ctx context.Context, keys []string) ([]setting.Setting, error) {
	normalized := normalizeKeys(keys)
	if len(normalized) == 0 {
		return []setting.Setting{}, nil
	}
	return s.repo.FindByKeys(ctx, normalized)
}

// ListAll returns every active setting, enabled or not. Storage errors are
// logged and an empty list is returned.
func (s *Service) ListAll(ctx context.Context) []setting.Setting {
	settings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list settings", zap.Error(err))
		return []setting.Setting{}
	}
	return settings
}

// ListByCategory returns the active settings of a category
func (s *Service) ListByCategory(ctx context.Context, category string) ([]setting.Setting, error) {
	category = setting.NormalizeKey(category)
	if category == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Setting category cannot be empty")
	}
	return s.repo.FindByCategory(ctx, category)
}

// LoadAsMap flattens the active settings into key -> value. Storage errors
// are logged and an empty snapshot is returned.
func (s *Service) LoadAsMap(ctx context.Context) setting.Snapshot {
	settings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load settings snapshot", zap.Error(err))
		return setting.Snapshot{}
	}
	return setting.NewSnapshot(settings)
}

// UpdateByKey replaces the value of a setting. A falsy key or value (0,
// false, "", nil) is reported as not found without touching storage, so
// such values cannot be written here; use SetValue for them.
func (s *Service) UpdateByKey(ctx context.Context, key string, value any) (*setting.Setting, error) {
	key = setting.NormalizeKey(key)
	if key == "" {
		return nil, shared.ErrNotFound
	}
	v, err := setting.ValueOf(value)
	if err != nil {
		return nil, err
	}
	if !v.IsTruthy() {
		return nil, shared.ErrNotFound
	}
	return s.write(ctx, key, v)
}

// SetValue replaces the value of a setting. Only an absent value is
// rejected; 0, false and "" are stored as given.
func (s *Service) SetValue(ctx context.Context, key string, value setting.Value) (*setting.Setting, error) {
	key = setting.NormalizeKey(key)
	if key == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Setting key cannot be empty")
	}
	if value.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Setting '%s' requires a value", key))
	}
	return s.write(ctx, key, value)
}

// Create persists a new setting
func (s *Service) Create(ctx context.Context, in CreateInput) (*setting.Setting, error) {
	v, err := setting.ValueOf(in.Value)
	if err != nil {
		return nil, err
	}

	var opts []setting.Option
	if in.ValueType != "" {
		opts = append(opts, setting.WithValueType(in.ValueType))
	}
	if in.Enabled != nil {
		opts = append(opts, setting.WithEnabled(*in.Enabled))
	}
	if in.IsPrivate {
		opts = append(opts, setting.WithPrivate())
	}
	if in.IsCoreSetting {
		opts = append(opts, setting.WithCoreSetting())
	}

	st, err := setting.NewSetting(in.Category, in.Key, v, opts...)
	if err != nil {
		return nil, err
	}
	if err := validateValue(st.Key, st.Value); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("Setting created",
		zap.String("key", st.Key),
		zap.String("category", st.Category),
		zap.String("value_type", st.ValueType.String()))
	return st, nil
}

// Remove soft-deletes a setting
func (s *Service) Remove(ctx context.Context, key string) error {
	key = setting.NormalizeKey(key)
	if key == "" {
		return shared.ErrNotFound
	}
	if err := s.repo.Remove(ctx, key); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("Setting removed", zap.String("key", key))
	return nil
}

func (s *Service) write(ctx context.Context, key string, v setting.Value) (*setting.Setting, error) {
	if err := validateValue(key, v); err != nil {
		return nil, err
	}
	st, err := s.repo.UpdateValue(ctx, key, v)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrTypeMismatch) {
			s.logger.Error("Failed to update setting", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}
	s.invalidate(ctx)
	return st, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate settings snapshot", zap.Error(err))
	}
}

// validateValue applies per-key rules on top of the type check
func validateValue(key string, v setting.Value) error {
	if key != KeyDefaultCurrencyCode || v.IsZero() {
		return nil
	}
	code, ok := v.AsString()
	if !ok || !money.CheckCurrency(code) {
		return shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("'%s' is not an ISO 4217 currency code", v.String()))
	}
	return nil
}

func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = setting.NormalizeKey(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
