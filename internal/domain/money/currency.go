package money

import (
	"strings"

	"golang.org/x/text/currency"
)

// ISO 4217 codes that denote funds, metals or test units rather than a
// spendable currency.
var nonCurrencyCodes = map[string]struct{}{
	"XXX": {}, "XTS": {},
	"XAU": {}, "XAG": {}, "XPT": {}, "XPD": {},
	"XBA": {}, "XBB": {}, "XBC": {}, "XBD": {},
	"XDR": {}, "XSU": {}, "XUA": {},
}

// CheckCurrency reports whether code is an ISO 4217 currency code. The check
// is case-insensitive and the code must be exactly three ASCII letters.
func CheckCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	upper := strings.ToUpper(code)
	if _, ok := nonCurrencyCodes[upper]; ok {
		return false
	}
	_, err := currency.ParseISO(upper)
	return err == nil
}
