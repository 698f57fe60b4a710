package dto

import "github.com/shopspring/decimal"

// DocumentNumberResponse is a freshly allocated document number
type DocumentNumberResponse struct {
	Type    string `json:"type"`
	Counter int64  `json:"counter"`
	Number  string `json:"number"`
}

// LineItemRequest is one priced line of a document
type LineItemRequest struct {
	ItemName string          `json:"item_name" binding:"max=255"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// CalculateTotalsRequest asks for the totals of a set of line items. The
// tax rate is a percentage.
type CalculateTotalsRequest struct {
	Items    []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate  decimal.Decimal   `json:"tax_rate"`
	Discount decimal.Decimal   `json:"discount"`
}

// TotalsResponse carries exact totals and, when the money format settings
// are complete, their display form
type TotalsResponse struct {
	SubTotal   decimal.Decimal   `json:"sub_total"`
	TaxTotal   decimal.Decimal   `json:"tax_total"`
	Discount   decimal.Decimal   `json:"discount"`
	Total      decimal.Decimal   `json:"total"`
	LineTotals []decimal.Decimal `json:"line_totals"`
	Formatted  *FormattedTotals  `json:"formatted,omitempty"`
}

// FormattedTotals holds totals rendered with the configured money format
type FormattedTotals struct {
	SubTotal string `json:"sub_total"`
	TaxTotal string `json:"tax_total"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

// FormatMoneyResponse shows an amount rendered with and without the
// currency symbol
type FormatMoneyResponse struct {
	Amount    string `json:"amount"`
	Money     string `json:"money"`
	Formatted string `json:"formatted"`
}
