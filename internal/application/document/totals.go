package document

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/money"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one priced row of an invoice or quote
type LineItem struct {
	ItemName string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Totals are the computed amounts of a document. Lines holds each line
// total in item order.
type Totals struct {
	Lines    []decimal.Decimal
	SubTotal decimal.Decimal
	TaxTotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals computes line totals, subtotal, tax and grand total at two
// decimal places. taxRate is a percentage.
func CalculateTotals(items []LineItem, taxRate, discount decimal.Decimal) (Totals, error) {
	if taxRate.IsNegative() {
		return Totals{}, shared.NewDomainError("INVALID_INPUT", "Tax rate cannot be negative")
	}
	if discount.IsNegative() {
		return Totals{}, shared.NewDomainError("INVALID_INPUT", "Discount cannot be negative")
	}

	calc := money.NewCalculator(money.DefaultPrecision)
	totals := Totals{
		Lines:    make([]decimal.Decimal, 0, len(items)),
		SubTotal: decimal.Zero,
	}

	for i, item := range items {
		if item.Quantity.IsNegative() || item.Price.IsNegative() {
			return Totals{}, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("line %d: quantity and price cannot be negative", i+1))
		}
		line := calc.MulDecimal(item.Quantity, item.Price)
		totals.Lines = append(totals.Lines, line)
		totals.SubTotal = calc.AddDecimal(totals.SubTotal, line)
	}

	tax, err := calc.DivDecimal(calc.MulDecimal(totals.SubTotal, taxRate), hundred)
	if err != nil {
		return Totals{}, err
	}
	totals.TaxTotal = tax
	totals.Discount = calc.Round(discount)
	totals.Total = calc.SubDecimal(calc.AddDecimal(totals.SubTotal, totals.TaxTotal), totals.Discount)
	return totals, nil
}
