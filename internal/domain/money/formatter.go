package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Position places the currency symbol relative to the amount
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
)

// IsValid checks if the position is valid
func (p Position) IsValid() bool {
	return p == PositionBefore || p == PositionAfter
}

// FormatSettings is the complete money format configuration. No field has a
// default; callers supply every value.
type FormatSettings struct {
	CurrencySymbol   string   `json:"currency_symbol"`
	CurrencyPosition Position `json:"currency_position"`
	DecimalSep       string   `json:"decimal_sep"`
	ThousandSep      string   `json:"thousand_sep"`
	CentPrecision    int      `json:"cent_precision"`
	ZeroFormat       bool     `json:"zero_format"`
}

// Validate checks the settings are usable for formatting
func (s FormatSettings) Validate() error {
	if !s.CurrencyPosition.IsValid() {
		return invalidFormat("currency_position", fmt.Sprintf("must be %q or %q, got %q", PositionBefore, PositionAfter, s.CurrencyPosition))
	}
	if s.CentPrecision < 0 {
		return invalidFormat("cent_precision", fmt.Sprintf("must not be negative, got %d", s.CentPrecision))
	}
	if s.CentPrecision > 0 && s.DecimalSep == "" {
		return invalidFormat("decimal_sep", "is required when cent_precision is positive")
	}
	return nil
}

// Formatter renders amounts according to FormatSettings. It is immutable and
// safe for concurrent use.
type Formatter struct {
	settings FormatSettings
}

// NewFormatter creates a formatter after validating the settings
func NewFormatter(s FormatSettings) (*Formatter, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Formatter{settings: s}, nil
}

// Settings returns the settings the formatter was built with
func (f *Formatter) Settings() FormatSettings {
	return f.settings
}

// Money formats amount with the currency symbol, separated by one space on
// the configured side. The sign stays on the numeric part.
func (f *Formatter) Money(amount decimal.Decimal) string {
	return f.withSymbol(f.Amount(amount))
}

// Amount formats amount without the currency symbol
func (f *Formatter) Amount(amount decimal.Decimal) string {
	precision := int32(f.settings.CentPrecision)
	rounded := amount.Round(precision)
	negative := rounded.IsNegative()

	fixed := rounded.Abs().StringFixed(precision)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	if f.settings.ZeroFormat && !negative && intPart == "0" {
		b.WriteByte('0')
	}
	b.WriteString(groupThousands(intPart, f.settings.ThousandSep))
	if precision > 0 {
		b.WriteString(f.settings.DecimalSep)
		b.WriteString(fracPart)
	}
	return b.String()
}

// MoneyFloat formats a float64 amount with the currency symbol
func (f *Formatter) MoneyFloat(amount float64) string {
	return f.withSymbol(f.AmountFloat(amount))
}

// AmountFloat formats a float64 amount. Non-finite values are rendered as-is.
func (f *Formatter) AmountFloat(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return strconv.FormatFloat(amount, 'f', -1, 64)
	}
	return f.Amount(decimal.NewFromFloat(amount))
}

func (f *Formatter) withSymbol(number string) string {
	if f.settings.CurrencyPosition == PositionAfter {
		return number + " " + f.settings.CurrencySymbol
	}
	return f.settings.CurrencySymbol + " " + number
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func invalidFormat(field, reason string) error {
	return shared.NewDomainError(shared.ErrTypeMismatch.Code,
		fmt.Sprintf("invalid money format setting %s: %s", field, reason))
}
