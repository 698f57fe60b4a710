package dto

import (
	"encoding/json"
	"time"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/google/uuid"
)

// SettingResponse is the API view of a setting
type SettingResponse struct {
	ID            uuid.UUID `json:"id"`
	Category      string    `json:"category"`
	Key           string    `json:"key"`
	ValueType     string    `json:"value_type"`
	Value         any       `json:"value"`
	Enabled       bool      `json:"enabled"`
	IsPrivate     bool      `json:"is_private"`
	IsCoreSetting bool      `json:"is_core_setting"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToSettingResponse converts a domain setting
func ToSettingResponse(s *setting.Setting) SettingResponse {
	return SettingResponse{
		ID:            s.ID,
		Category:      s.Category,
		Key:           s.Key,
		ValueType:     s.ValueType.String(),
		Value:         s.Value.Interface(),
		Enabled:       s.Enabled,
		IsPrivate:     s.IsPrivate,
		IsCoreSetting: s.IsCoreSetting,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToSettingResponses converts a list of domain settings
func ToSettingResponses(settings []setting.Setting) []SettingResponse {
	out := make([]SettingResponse, len(settings))
	for i := range settings {
		out[i] = ToSettingResponse(&settings[i])
	}
	return out
}

// CreateSettingRequest creates a setting. Value is any JSON value; when
// ValueType is given the value must match it.
type CreateSettingRequest struct {
	Category      string          `json:"category" binding:"required,max=100"`
	Key           string          `json:"key" binding:"required,max=150"`
	ValueType     string          `json:"value_type" binding:"omitempty,oneof=String Number Boolean Object Array"`
	Value         json.RawMessage `json:"value"`
	Enabled       *bool           `json:"enabled"`
	IsPrivate     bool            `json:"is_private"`
	IsCoreSetting bool            `json:"is_core_setting"`
}

// UpdateSettingRequest replaces the value of a setting
type UpdateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// SettingKeysQuery selects settings by a comma-separated key list
type SettingKeysQuery struct {
	Keys string `form:"keys" binding:"required"`
}
