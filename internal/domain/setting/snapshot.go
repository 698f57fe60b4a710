package setting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Snapshot is the flat key -> value view of the active settings. Numbers are
// stored as json.Number.
type Snapshot map[string]any

// NewSnapshot flattens settings into a Snapshot, skipping removed ones.
// Disabled settings are kept.
func NewSnapshot(settings []Setting) Snapshot {
	snap := make(Snapshot, len(settings))
	for i := range settings {
		if settings[i].Removed {
			continue
		}
		snap[settings[i].Key] = settings[i].Value.Interface()
	}
	return snap
}

// Has reports whether key is present
func (s Snapshot) Has(key string) bool {
	_, ok := s[NormalizeKey(key)]
	return ok
}

// Clone returns a shallow copy
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String returns a String setting
func (s Snapshot) String(key string) (string, error) {
	raw, err := s.lookup(key)
	if err != nil {
		return "", err
	}
	str, ok := raw.(string)
	if !ok {
		return "", snapshotMismatch(key, "string", raw)
	}
	return str, nil
}

// Bool returns a Boolean setting
func (s Snapshot) Bool(key string) (bool, error) {
	raw, err := s.lookup(key)
	if err != nil {
		return false, err
	}
	b, ok := raw.(bool)
	if !ok {
		return false, snapshotMismatch(key, "boolean", raw)
	}
	return b, nil
}

// Decimal returns a Number setting
func (s Snapshot) Decimal(key string) (decimal.Decimal, error) {
	raw, err := s.lookup(key)
	if err != nil {
		return decimal.Zero, err
	}
	switch v := raw.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, snapshotMismatch(key, "number", raw)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, snapshotMismatch(key, "number", raw)
	}
}

// Int returns a Number setting that must be a whole number
func (s Snapshot) Int(key string) (int, error) {
	d, err := s.Decimal(key)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("setting '%s' must be a whole number, got %s", key, d.String()))
	}
	n, err := strconv.Atoi(d.String())
	if err != nil {
		return 0, shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("setting '%s' is out of range: %s", key, d.String()))
	}
	return n, nil
}

func (s Snapshot) lookup(key string) (any, error) {
	key = NormalizeKey(key)
	raw, ok := s[key]
	if !ok || raw == nil {
		return nil, shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("setting '%s' is missing from the configuration snapshot", key))
	}
	return raw, nil
}

func snapshotMismatch(key, want string, got any) error {
	return shared.NewDomainError(shared.ErrTypeMismatch.Code,
		fmt.Sprintf("setting '%s' must be a %s, got %s", NormalizeKey(key), want, strings.TrimPrefix(fmt.Sprintf("%T", got), "*")))
}
