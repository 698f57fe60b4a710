package money

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of decimal places used by the package-level
// arithmetic helpers. It is independent of the display precision.
const DefaultPrecision = 2

// ErrDivisionByZero is returned by the decimal division helpers
var ErrDivisionByZero = shared.NewDomainError("DIVISION_BY_ZERO", "Cannot divide by zero")

var defaultCalculator = NewCalculator(DefaultPrecision)

// Calculator performs cents-based arithmetic at a fixed precision.
// Add and Sub round both operands before computing; Multiply and Divide round
// the left operand only. Every result is rounded half away from zero.
type Calculator struct {
	precision int32
}

// NewCalculator creates a calculator for the given number of decimal places.
// Negative precision is treated as zero.
func NewCalculator(precision int) Calculator {
	if precision < 0 {
		precision = 0
	}
	return Calculator{precision: int32(precision)}
}

// Precision returns the number of decimal places
func (c Calculator) Precision() int {
	return int(c.precision)
}

// Round rounds d to the calculator precision
func (c Calculator) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.precision)
}

// AddDecimal returns a + b
func (c Calculator) AddDecimal(a, b decimal.Decimal) decimal.Decimal {
	return c.Round(a).Add(c.Round(b)).Round(c.precision)
}

// SubDecimal returns a - b
func (c Calculator) SubDecimal(a, b decimal.Decimal) decimal.Decimal {
	return c.Round(a).Sub(c.Round(b)).Round(c.precision)
}

// MulDecimal returns a * b
func (c Calculator) MulDecimal(a, b decimal.Decimal) decimal.Decimal {
	return c.Round(a).Mul(b).Round(c.precision)
}

// DivDecimal returns a / b
func (c Calculator) DivDecimal(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return c.Round(a).Div(b).Round(c.precision), nil
}

// Add coerces both operands and returns a + b. Uncoercible operands yield NaN.
func (c Calculator) Add(a, b any) float64 {
	x, y, ok := coercePair(a, b)
	if !ok {
		return math.NaN()
	}
	return c.AddDecimal(x, y).InexactFloat64()
}

// Sub coerces both operands and returns a - b
func (c Calculator) Sub(a, b any) float64 {
	x, y, ok := coercePair(a, b)
	if !ok {
		return math.NaN()
	}
	return c.SubDecimal(x, y).InexactFloat64()
}

// Multiply coerces both operands and returns a * b
func (c Calculator) Multiply(a, b any) float64 {
	x, y, ok := coercePair(a, b)
	if !ok {
		return math.NaN()
	}
	return c.MulDecimal(x, y).InexactFloat64()
}

// Divide coerces both operands and returns a / b. Dividing by zero yields
// +Inf or -Inf following the sign of a, and NaN for 0 / 0.
func (c Calculator) Divide(a, b any) float64 {
	x, y, ok := coercePair(a, b)
	if !ok {
		return math.NaN()
	}
	q, err := c.DivDecimal(x, y)
	if err != nil {
		switch c.Round(x).Sign() {
		case 1:
			return math.Inf(1)
		case -1:
			return math.Inf(-1)
		default:
			return math.NaN()
		}
	}
	return q.InexactFloat64()
}

// Add returns a + b at two decimal places
func Add(a, b any) float64 { return defaultCalculator.Add(a, b) }

// Sub returns a - b at two decimal places
func Sub(a, b any) float64 { return defaultCalculator.Sub(a, b) }

// Multiply returns a * b at two decimal places
func Multiply(a, b any) float64 { return defaultCalculator.Multiply(a, b) }

// Divide returns a / b at two decimal places
func Divide(a, b any) float64 { return defaultCalculator.Divide(a, b) }

// ToDecimal coerces an operand: nil and blank strings are zero, numeric
// strings are parsed, every Go number kind is accepted.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return x, nil
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, nil
		}
		return *x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int8:
		return decimal.NewFromInt(int64(x)), nil
	case int16:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint:
		return fromUint64(uint64(x)), nil
	case uint8:
		return decimal.NewFromInt(int64(x)), nil
	case uint16:
		return decimal.NewFromInt(int64(x)), nil
	case uint32:
		return decimal.NewFromInt(int64(x)), nil
	case uint64:
		return fromUint64(x), nil
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case json.Number:
		return fromString(x.String())
	case string:
		return fromString(x)
	default:
		return decimal.Zero, shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("cannot use %T as a number", v))
	}
}

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("number must be finite, got %v", f))
	}
	return decimal.NewFromFloat(f), nil
}

func fromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("%q is not a number", s))
	}
	return d, nil
}

func coercePair(a, b any) (decimal.Decimal, decimal.Decimal, bool) {
	x, err := ToDecimal(a)
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	y, err := ToDecimal(b)
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	return x, y, true
}

func fromUint64(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}
