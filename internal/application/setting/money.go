package setting

import (
	"github.com/erp/backoffice/internal/domain/money"
	"github.com/erp/backoffice/internal/domain/setting"
)

// Money format setting keys
const (
	KeyCurrencySymbol   = "currency_symbol"
	KeyCurrencyPosition = "currency_position"
	KeyDecimalSep       = "decimal_sep"
	KeyThousandSep      = "thousand_sep"
	KeyCentPrecision    = "cent_precision"
	KeyZeroFormat       = "zero_format"
)

// FormatSettingsFromSnapshot reads the money format keys. A missing or
// mistyped key fails with ErrTypeMismatch naming the key.
func FormatSettingsFromSnapshot(snap setting.Snapshot) (money.FormatSettings, error) {
	var (
		fs  money.FormatSettings
		err error
	)
	if fs.CurrencySymbol, err = snap.String(KeyCurrencySymbol); err != nil {
		return money.FormatSettings{}, err
	}
	position, err := snap.String(KeyCurrencyPosition)
	if err != nil {
		return money.FormatSettings{}, err
	}
	fs.CurrencyPosition = money.Position(position)
	if fs.DecimalSep, err = snap.String(KeyDecimalSep); err != nil {
		return money.FormatSettings{}, err
	}
	if fs.ThousandSep, err = snap.String(KeyThousandSep); err != nil {
		return money.FormatSettings{}, err
	}
	if fs.CentPrecision, err = snap.Int(KeyCentPrecision); err != nil {
		return money.FormatSettings{}, err
	}
	if fs.ZeroFormat, err = snap.Bool(KeyZeroFormat); err != nil {
		return money.FormatSettings{}, err
	}
	return fs, nil
}
