package setting

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ValueType is the discriminant of a setting value
type ValueType string

const (
	ValueTypeString  ValueType = "String"
	ValueTypeNumber  ValueType = "Number"
	ValueTypeBoolean ValueType = "Boolean"
	ValueTypeObject  ValueType = "Object"
	ValueTypeArray   ValueType = "Array"
)

// DefaultValueType is used when a setting is created without a value
const DefaultValueType = ValueTypeString

// AllValueTypes returns all valid value types
func AllValueTypes() []ValueType {
	return []ValueType{
		ValueTypeString,
		ValueTypeNumber,
		ValueTypeBoolean,
		ValueTypeObject,
		ValueTypeArray,
	}
}

// IsValid checks if the value type is valid
func (t ValueType) IsValid() bool {
	switch t {
	case ValueTypeString, ValueTypeNumber, ValueTypeBoolean, ValueTypeObject, ValueTypeArray:
		return true
	default:
		return false
	}
}

// String returns the string representation of the value type
func (t ValueType) String() string {
	return string(t)
}

// ParseValueType parses a value type case-insensitively ("number" -> Number)
func ParseValueType(s string) (ValueType, error) {
	for _, t := range AllValueTypes() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", shared.NewDomainError("INVALID_VALUE_TYPE", fmt.Sprintf("invalid value type: %q", s))
}

// Scan implements the sql.Scanner interface
func (t *ValueType) Scan(value any) error {
	if value == nil {
		*t = DefaultValueType
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("setting: cannot scan type %T into ValueType", value)
	}
	parsed, err := ParseValueType(s)
	if err != nil {
		return fmt.Errorf("setting: %w", err)
	}
	*t = parsed
	return nil
}

// Value implements the driver.Valuer interface
func (t ValueType) Value() (driver.Value, error) {
	return string(t), nil
}

// Value is a tagged union holding one of the supported setting payloads.
// The zero Value is "absent": it carries no payload and no type.
type Value struct {
	kind ValueType
	str  string
	num  decimal.Decimal
	flag bool
	obj  map[string]any
	arr  []any
}

// StringValue creates a String value
func StringValue(s string) Value {
	return Value{kind: ValueTypeString, str: s}
}

// NumberValue creates a Number value
func NumberValue(d decimal.Decimal) Value {
	return Value{kind: ValueTypeNumber, num: d}
}

// NumberValueFromInt creates a Number value from an int64
func NumberValueFromInt(n int64) Value {
	return NumberValue(decimal.NewFromInt(n))
}

// NumberValueFromFloat creates a Number value from a finite float64
func NumberValueFromFloat(f float64) Value {
	return NumberValue(decimal.NewFromFloat(f))
}

// BoolValue creates a Boolean value
func BoolValue(b bool) Value {
	return Value{kind: ValueTypeBoolean, flag: b}
}

// ObjectValue creates an Object value. A nil map is stored as an empty object.
func ObjectValue(m map[string]any) Value {
	if m == nil {
		m = map[string]any{}
	}
	return Value{kind: ValueTypeObject, obj: m}
}

// ArrayValue creates an Array value. A nil slice is stored as an empty array.
func ArrayValue(items []any) Value {
	if items == nil {
		items = []any{}
	}
	return Value{kind: ValueTypeArray, arr: items}
}

// ValueOf infers the variant from a plain Go value. nil yields the absent
// Value. Structs, typed maps and typed slices go through JSON and must
// come back as an object or an array.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return NumberValueFromInt(int64(x)), nil
	case int8:
		return NumberValueFromInt(int64(x)), nil
	case int16:
		return NumberValueFromInt(int64(x)), nil
	case int32:
		return NumberValueFromInt(int64(x)), nil
	case int64:
		return NumberValueFromInt(x), nil
	case uint:
		return NumberValue(fromUint64(uint64(x))), nil
	case uint8:
		return NumberValueFromInt(int64(x)), nil
	case uint16:
		return NumberValueFromInt(int64(x)), nil
	case uint32:
		return NumberValueFromInt(int64(x)), nil
	case uint64:
		return NumberValue(fromUint64(x)), nil
	case float32:
		return floatValue(float64(x))
	case float64:
		return floatValue(x)
	case decimal.Decimal:
		return NumberValue(x), nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return Value{}, typeMismatch("invalid number %q", x.String())
		}
		return NumberValue(d), nil
	case map[string]any:
		return ObjectValue(x), nil
	case []any:
		return ArrayValue(x), nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, typeMismatch("unsupported setting value of type %T", v)
	}
	decoded, err := decodeJSON(raw)
	if err != nil {
		return Value{}, typeMismatch("unsupported setting value of type %T", v)
	}
	switch decoded.(type) {
	case map[string]any, []any:
		return ValueOf(decoded)
	default:
		return Value{}, typeMismatch("unsupported setting value of type %T", v)
	}
}

func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, typeMismatch("number must be finite, got %v", f)
	}
	return NumberValueFromFloat(f), nil
}

// DecodeValue infers a Value from raw JSON. JSON null yields the absent Value.
func DecodeValue(raw []byte) (Value, error) {
	if isNullJSON(raw) {
		return Value{}, nil
	}
	decoded, err := decodeJSON(raw)
	if err != nil {
		return Value{}, typeMismatch("invalid JSON value: %v", err)
	}
	return ValueOf(decoded)
}

// ParseValue decodes raw JSON and checks it matches the declared type.
func ParseValue(t ValueType, raw []byte) (Value, error) {
	if !t.IsValid() {
		return Value{}, shared.NewDomainError("INVALID_VALUE_TYPE", fmt.Sprintf("invalid value type: %q", t))
	}
	if isNullJSON(raw) {
		return Value{}, nil
	}

	switch t {
	case ValueTypeString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, typeMismatch("expected a String value")
		}
		return StringValue(s), nil
	case ValueTypeNumber:
		var d decimal.Decimal
		if err := d.UnmarshalJSON(raw); err != nil {
			return Value{}, typeMismatch("expected a Number value")
		}
		return NumberValue(d), nil
	case ValueTypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, typeMismatch("expected a Boolean value")
		}
		return BoolValue(b), nil
	case ValueTypeObject:
		decoded, err := decodeJSON(raw)
		m, ok := decoded.(map[string]any)
		if err != nil || !ok {
			return Value{}, typeMismatch("expected an Object value")
		}
		return ObjectValue(m), nil
	default:
		decoded, err := decodeJSON(raw)
		items, ok := decoded.([]any)
		if err != nil || !ok {
			return Value{}, typeMismatch("expected an Array value")
		}
		return ArrayValue(items), nil
	}
}

// Type returns the variant, or "" for the absent Value
func (v Value) Type() ValueType {
	return v.kind
}

// IsZero reports whether the value is absent
func (v Value) IsZero() bool {
	return v.kind == ""
}

// IsTruthy mirrors the loose presence check used by updateByKey: absent,
// "", 0 and false are falsy; objects and arrays are always truthy.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case ValueTypeString:
		return v.str != ""
	case ValueTypeNumber:
		return !v.num.IsZero()
	case ValueTypeBoolean:
		return v.flag
	case ValueTypeObject, ValueTypeArray:
		return true
	default:
		return false
	}
}

// AsString returns the String payload
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == ValueTypeString
}

// AsNumber returns the Number payload
func (v Value) AsNumber() (decimal.Decimal, bool) {
	return v.num, v.kind == ValueTypeNumber
}

// AsBool returns the Boolean payload
func (v Value) AsBool() (bool, bool) {
	return v.flag, v.kind == ValueTypeBoolean
}

// AsObject returns the Object payload
func (v Value) AsObject() (map[string]any, bool) {
	return v.obj, v.kind == ValueTypeObject
}

// AsArray returns the Array payload
func (v Value) AsArray() ([]any, bool) {
	return v.arr, v.kind == ValueTypeArray
}

// Interface returns the plain Go value. Numbers are returned as
// json.Number so they stay exact and encode as bare JSON numbers.
func (v Value) Interface() any {
	switch v.kind {
	case ValueTypeString:
		return v.str
	case ValueTypeNumber:
		return json.Number(v.num.String())
	case ValueTypeBoolean:
		return v.flag
	case ValueTypeObject:
		return v.obj
	case ValueTypeArray:
		return v.arr
	default:
		return nil
	}
}

// Equal reports whether both values have the same type and payload
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueTypeString:
		return v.str == other.str
	case ValueTypeNumber:
		return v.num.Equal(other.num)
	case ValueTypeBoolean:
		return v.flag == other.flag
	case ValueTypeObject:
		return reflect.DeepEqual(v.obj, other.obj)
	case ValueTypeArray:
		return reflect.DeepEqual(v.arr, other.arr)
	default:
		return true
	}
}

// String returns a printable form of the payload
func (v Value) String() string {
	if v.kind == ValueTypeString {
		return v.str
	}
	raw, err := json.Marshal(v.Interface())
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(raw)
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler, inferring the variant
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeValue(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func isNullJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func typeMismatch(format string, args ...any) error {
	return shared.NewDomainError(shared.ErrTypeMismatch.Code, fmt.Sprintf(format, args...))
}

func fromUint64(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}
