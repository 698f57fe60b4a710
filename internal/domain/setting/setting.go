package setting

import (
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	maxKeyLength      = 150
	maxCategoryLength = 100
)

// Setting is a typed key/value configuration record grouped by category.
// At most one non-removed Setting exists per key.
type Setting struct {
	shared.BaseEntity
	Category      string
	Key           string
	ValueType     ValueType
	Value         Value
	Enabled       bool
	Removed       bool
	IsPrivate     bool
	IsCoreSetting bool
}

// Option configures a Setting at creation time
type Option func(*Setting)

// WithValueType declares the type of a setting created without a value
func WithValueType(t ValueType) Option {
	return func(s *Setting) {
		s.ValueType = t
	}
}

// WithEnabled sets the enabled flag (default true)
func WithEnabled(enabled bool) Option {
	return func(s *Setting) {
		s.Enabled = enabled
	}
}

// WithPrivate marks the setting as private to the admin UI
func WithPrivate() Option {
	return func(s *Setting) {
		s.IsPrivate = true
	}
}

// WithCoreSetting marks the setting as a core setting
func WithCoreSetting() Option {
	return func(s *Setting) {
		s.IsCoreSetting = true
	}
}

// NormalizeKey trims and lower-cases a key or category
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewSetting creates a new active setting. The value type is taken from the
// value unless WithValueType is given, in which case both must agree.
func NewSetting(category, key string, value Value, opts ...Option) (*Setting, error) {
	category = NormalizeKey(category)
	key = NormalizeKey(key)

	if key == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Setting key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Setting key cannot exceed %d characters", maxKeyLength))
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Setting category cannot be empty")
	}
	if len(category) > maxCategoryLength {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Setting category cannot exceed %d characters", maxCategoryLength))
	}

	s := &Setting{
		BaseEntity: shared.NewBaseEntity(),
		Category:   category,
		Key:        key,
		Value:      value,
		Enabled:    true,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.ValueType == "" && value.IsZero():
		s.ValueType = DefaultValueType
	case s.ValueType == "":
		s.ValueType = value.Type()
	case !s.ValueType.IsValid():
		return nil, shared.NewDomainError("INVALID_VALUE_TYPE", fmt.Sprintf("invalid value type: %q", s.ValueType))
	case !value.IsZero() && value.Type() != s.ValueType:
		return nil, typeMismatch("setting %q is declared %s but value is %s", key, s.ValueType, value.Type())
	}

	return s, nil
}

// ReplaceValue swaps the stored value, refusing a different variant so a
// Number setting cannot silently become a String.
func (s *Setting) ReplaceValue(v Value) error {
	if v.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Setting '%s' requires a value", s.Key))
	}
	if v.Type() != s.ValueType {
		return typeMismatch("setting %q holds %s, got %s", s.Key, s.ValueType, v.Type())
	}
	s.Value = v
	s.Touch()
	return nil
}

// Increment adds one to a Number setting. An absent number counts as zero.
func (s *Setting) Increment() error {
	if s.ValueType != ValueTypeNumber {
		return typeMismatch("setting %q holds %s and cannot be incremented", s.Key, s.ValueType)
	}
	current, _ := s.Value.AsNumber()
	s.Value = NumberValue(current.Add(decimal.NewFromInt(1)))
	s.Touch()
	return nil
}

// Remove soft-deletes the setting
func (s *Setting) Remove() {
	s.Removed = true
	s.Touch()
}

// IsActive reports whether the setting has not been removed
func (s *Setting) IsActive() bool {
	return !s.Removed
}
