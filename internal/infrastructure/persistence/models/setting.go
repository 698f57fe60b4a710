package models

import (
	"encoding/json"
	"fmt"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/shopspring/decimal"
)

// SettingModel is the persistence model for setting.Setting. Number
// payloads live in NumValue so increments are a single arithmetic update;
// every other payload is JSON in Value.
type SettingModel struct {
	BaseModel
	Category      string              `gorm:"type:varchar(100);not null;index"`
	Key           string              `gorm:"type:varchar(150);not null;uniqueIndex:ux_settings_key_active,where:removed = false"`
	ValueType     setting.ValueType   `gorm:"type:varchar(10);not null"`
	Value         *string             `gorm:"type:jsonb"`
	NumValue      decimal.NullDecimal `gorm:"type:numeric(20,6)"`
	Enabled       bool                `gorm:"not null"`
	Removed       bool                `gorm:"not null;index"`
	IsPrivate     bool                `gorm:"not null"`
	IsCoreSetting bool                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}

// ToDomain converts the row to a domain Setting, validating the stored
// payload against its declared type
func (m *SettingModel) ToDomain() (*setting.Setting, error) {
	vt := m.ValueType
	if vt == "" {
		vt = setting.DefaultValueType
	}

	var value setting.Value
	switch {
	case vt == setting.ValueTypeNumber:
		if m.NumValue.Valid {
			value = setting.NumberValue(m.NumValue.Decimal)
		}
	case m.Value != nil:
		v, err := setting.ParseValue(vt, []byte(*m.Value))
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", m.Key, err)
		}
		value = v
	}

	return &setting.Setting{
		BaseEntity:    m.BaseModel.ToDomain(),
		Category:      m.Category,
		Key:           m.Key,
		ValueType:     vt,
		Value:         value,
		Enabled:       m.Enabled,
		Removed:       m.Removed,
		IsPrivate:     m.IsPrivate,
		IsCoreSetting: m.IsCoreSetting,
	}, nil
}

// SettingModelFromDomain converts a domain Setting to its row
func SettingModelFromDomain(s *setting.Setting) (*SettingModel, error) {
	m := &SettingModel{
		BaseModel:     baseModelFrom(s.BaseEntity),
		Category:      s.Category,
		Key:           s.Key,
		ValueType:     s.ValueType,
		Enabled:       s.Enabled,
		Removed:       s.Removed,
		IsPrivate:     s.IsPrivate,
		IsCoreSetting: s.IsCoreSetting,
	}
	payload, num, err := EncodeValue(s.Value)
	if err != nil {
		return nil, fmt.Errorf("setting %q: %w", s.Key, err)
	}
	m.Value = payload
	m.NumValue = num
	return m, nil
}

// EncodeValue splits a Value into the value and num_value columns
func EncodeValue(v setting.Value) (*string, decimal.NullDecimal, error) {
	if v.IsZero() {
		return nil, decimal.NullDecimal{}, nil
	}
	if n, ok := v.AsNumber(); ok {
		return nil, decimal.NullDecimal{Decimal: n, Valid: true}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, decimal.NullDecimal{}, err
	}
	s := string(raw)
	return &s, decimal.NullDecimal{}, nil
}
