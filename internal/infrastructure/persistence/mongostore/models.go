package mongostore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// settingDoc is the BSON shape of a setting. Number payloads are Decimal128
// in num_value so $inc works on them; other payloads are JSON text in value.
type settingDoc struct {
	ID            string           `bson:"_id"`
	Category      string           `bson:"category"`
	Key           string           `bson:"key"`
	ValueType     string           `bson:"value_type"`
	Value         *string          `bson:"value,omitempty"`
	NumValue      *bson.Decimal128 `bson:"num_value,omitempty"`
	Enabled       bool             `bson:"enabled"`
	Removed       bool             `bson:"removed"`
	IsPrivate     bool             `bson:"is_private"`
	IsCoreSetting bool             `bson:"is_core_setting"`
	CreatedAt     time.Time        `bson:"created_at"`
	UpdatedAt     time.Time        `bson:"updated_at"`
}

func toSettingDoc(s *setting.Setting) (*settingDoc, error) {
	doc := &settingDoc{
		ID:            s.ID.String(),
		Category:      s.Category,
		Key:           s.Key,
		ValueType:     string(s.ValueType),
		Enabled:       s.Enabled,
		Removed:       s.Removed,
		IsPrivate:     s.IsPrivate,
		IsCoreSetting: s.IsCoreSetting,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	payload, num, err := encodeValue(s.Value)
	if err != nil {
		return nil, fmt.Errorf("setting %q: %w", s.Key, err)
	}
	doc.Value = payload
	doc.NumValue = num
	return doc, nil
}

func encodeValue(v setting.Value) (*string, *bson.Decimal128, error) {
	if v.IsZero() {
		return nil, nil, nil
	}
	if n, ok := v.AsNumber(); ok {
		d, err := toDecimal128(n)
		if err != nil {
			return nil, nil, err
		}
		return nil, &d, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	s := string(raw)
	return &s, nil, nil
}

func (d *settingDoc) toDomain() (*setting.Setting, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("setting %q: invalid id %q: %w", d.Key, d.ID, err)
	}
	vt, err := setting.ParseValueType(d.ValueType)
	if err != nil {
		vt = setting.DefaultValueType
	}

	var value setting.Value
	switch {
	case vt == setting.ValueTypeNumber:
		if d.NumValue != nil {
			n, err := fromDecimal128(*d.NumValue)
			if err != nil {
				return nil, fmt.Errorf("setting %q: %w", d.Key, err)
			}
			value = setting.NumberValue(n)
		}
	case d.Value != nil:
		value, err = setting.ParseValue(vt, []byte(*d.Value))
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", d.Key, err)
		}
	}

	return &setting.Setting{
		BaseEntity:    shared.BaseEntity{ID: id, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Category:      d.Category,
		Key:           d.Key,
		ValueType:     vt,
		Value:         value,
		Enabled:       d.Enabled,
		Removed:       d.Removed,
		IsPrivate:     d.IsPrivate,
		IsCoreSetting: d.IsCoreSetting,
	}, nil
}

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	out, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("number %s out of Decimal128 range: %w", d.String(), err)
	}
	return out, nil
}

func fromDecimal128(d bson.Decimal128) (decimal.Decimal, error) {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored number %s: %w", d.String(), err)
	}
	return out, nil
}
