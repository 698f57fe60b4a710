package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want float64
	}{
		{"integers", 10, 5, 15},
		{"halves", 1.5, 2.5, 4},
		{"negatives", -10, 5, -5},
		{"no float residue", 0.1, 0.2, 0.3},
		{"two decimals", 1.23, 4.56, 5.79},
		{"large", 999999, 1, 1000000},
		{"below precision collapses", 0.001, 0.002, 0},
		{"far below precision", 0.0001, 0.0002, 0},
		{"strings", "10.5", "20.75", 31.25},
		{"nil is zero", nil, 10, 10},
		{"blank string is zero", " ", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Add(tt.a, tt.b))
		})
	}
}

func TestSub(t *testing.T) {
	assert.Equal(t, 5.0, Sub(10, 5))
	assert.Equal(t, 3.0, Sub(5.5, 2.5))
	assert.Equal(t, -15.0, Sub(-10, 5))
	assert.Equal(t, 0.2, Sub(0.3, 0.1))
	assert.Equal(t, 50.49, Sub(100.99, 50.50))
	assert.Equal(t, 5.25, Sub("10.5", "5.25"))
	assert.Equal(t, -99.0, Sub(1, 100))
}

func TestMultiply(t *testing.T) {
	assert.Equal(t, 50.0, Multiply(10, 5))
	assert.Equal(t, -50.0, Multiply(10, -5))
	assert.Equal(t, 10.0, Multiply(2.5, 4))
	assert.Equal(t, 1.0, Multiply(0.1, 10))
	assert.Equal(t, 0.01, Multiply(0.1, 0.1))
	assert.Equal(t, 0.06, Multiply(0.2, 0.3))
	assert.Equal(t, 998001.0, Multiply(999, 999))
	assert.Equal(t, 10.0, Multiply("2.5", "4"))
	assert.Equal(t, 0.0, Multiply(0, 10))
}

func TestDivide(t *testing.T) {
	t.Run("exact and rounded quotients", func(t *testing.T) {
		assert.Equal(t, 2.0, Divide(10, 5))
		assert.Equal(t, -2.0, Divide(10, -5))
		assert.Equal(t, 3.33, Divide(10, 3))
		assert.Equal(t, 0.33, Divide(1, 3))
		assert.Equal(t, 33.5, Divide(100.5, 3))
		assert.Equal(t, 0.0, Divide(1, 1000))
		assert.Equal(t, 2.0, Divide("10", "5"))
	})

	t.Run("division by zero", func(t *testing.T) {
		assert.True(t, math.IsInf(Divide(10, 0), 1))
		assert.True(t, math.IsInf(Divide(-10, 0), -1))
		assert.True(t, math.IsNaN(Divide(0, 0)))
	})
}

func TestUncoercibleOperands(t *testing.T) {
	assert.True(t, math.IsNaN(Add("abc", 1)))
	assert.True(t, math.IsNaN(Multiply(1, struct{}{})))
	assert.True(t, math.IsNaN(Sub(math.Inf(1), 1)))
}

func TestToDecimal(t *testing.T) {
	d, err := ToDecimal(json.Number("12.34"))
	require.NoError(t, err)
	assert.Equal(t, "12.34", d.String())

	d, err = ToDecimal(uint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", d.String())

	d, err = ToDecimal(" 7 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(7)))

	_, err = ToDecimal("seven")
	assert.ErrorIs(t, err, shared.ErrTypeMismatch)

	_, err = ToDecimal(true)
	assert.ErrorIs(t, err, shared.ErrTypeMismatch)
}

func TestCalculator_Precision(t *testing.T) {
	calc := NewCalculator(3)
	assert.Equal(t, 3, calc.Precision())
	assert.Equal(t, 0.003, calc.Add(0.001, 0.002))

	whole := NewCalculator(-1)
	assert.Equal(t, 0, whole.Precision())
	assert.Equal(t, 2.0, whole.Add(1.4, 1.4))
}

func TestCalculator_DivDecimal(t *testing.T) {
	calc := NewCalculator(DefaultPrecision)

	q, err := calc.DivDecimal(decimal.NewFromInt(10), decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.Equal(t, "2.5", q.String())

	_, err = calc.DivDecimal(decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}
