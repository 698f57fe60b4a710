package document

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	t.Run("invoice with tax and discount", func(t *testing.T) {
		items := []LineItem{
			{ItemName: "Consulting", Quantity: d("10"), Price: d("150")},
			{ItemName: "License", Quantity: d("3"), Price: d("99.99")},
		}

		totals, err := CalculateTotals(items, d("15"), d("50"))
		require.NoError(t, err)

		require.Len(t, totals.Lines, 2)
		assert.Equal(t, "1500", totals.Lines[0].String())
		assert.Equal(t, "299.97", totals.Lines[1].String())
		assert.Equal(t, "1799.97", totals.SubTotal.String())
		assert.Equal(t, "270", totals.TaxTotal.String())
		assert.Equal(t, "50", totals.Discount.String())
		assert.Equal(t, "2019.97", totals.Total.String())
	})

	t.Run("decimal drift is avoided", func(t *testing.T) {
		items := []LineItem{
			{Quantity: d("1"), Price: d("0.1")},
			{Quantity: d("1"), Price: d("0.2")},
		}
		totals, err := CalculateTotals(items, decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, totals.Total.Equal(d("0.3")))
	})

	t.Run("tax is rounded to cents", func(t *testing.T) {
		items := []LineItem{{Quantity: d("1"), Price: d("10")}}
		totals, err := CalculateTotals(items, d("7.25"), decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "0.73", totals.TaxTotal.String())
		assert.Equal(t, "10.73", totals.Total.String())
	})

	t.Run("no items", func(t *testing.T) {
		totals, err := CalculateTotals(nil, d("20"), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, totals.Total.IsZero())
		assert.Empty(t, totals.Lines)
	})

	t.Run("negative inputs", func(t *testing.T) {
		_, err := CalculateTotals(nil, d("-1"), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = CalculateTotals(nil, decimal.Zero, d("-5"))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = CalculateTotals([]LineItem{{Quantity: d("-1"), Price: d("5")}}, decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
