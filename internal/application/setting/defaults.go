package setting

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// Setting categories used by the default seed
const (
	CategoryApp         = "app_settings"
	CategoryMoneyFormat = "money_format_settings"
	CategoryFinance     = "finance_settings"
)

// DefaultSettings returns the settings a fresh installation starts with
func DefaultSettings() []CreateInput {
	return []CreateInput{
		{Category: CategoryApp, Key: "app_name", Value: "Back Office", IsCoreSetting: true},
		{Category: CategoryApp, Key: "app_language", Value: "en_us"},
		{Category: CategoryApp, Key: "app_date_format", Value: "DD/MM/YYYY"},

		{Category: CategoryMoneyFormat, Key: KeyDefaultCurrencyCode, Value: "USD", IsCoreSetting: true},
		{Category: CategoryMoneyFormat, Key: KeyCurrencySymbol, Value: "$", IsCoreSetting: true},
		{Category: CategoryMoneyFormat, Key: KeyCurrencyPosition, Value: "before", IsCoreSetting: true},
		{Category: CategoryMoneyFormat, Key: KeyDecimalSep, Value: ".", IsCoreSetting: true},
		{Category: CategoryMoneyFormat, Key: KeyThousandSep, Value: ",", IsCoreSetting: true},
		{Category: CategoryMoneyFormat, Key: KeyCentPrecision, Value: 2, IsCoreSetting: true},
		{Category: CategoryMoneyFormat, Key: KeyZeroFormat, Value: false, IsCoreSetting: true},

		{Category: CategoryFinance, Key: "last_invoice_number", Value: 0, IsCoreSetting: true, IsPrivate: true},
		{Category: CategoryFinance, Key: "last_quote_number", Value: 0, IsCoreSetting: true, IsPrivate: true},
		{Category: CategoryFinance, Key: "last_payment_number", Value: 0, IsCoreSetting: true, IsPrivate: true},
		{Category: CategoryFinance, Key: "tax_rate", Value: 0},
	}
}

// SeedDefaults creates every default setting that does not exist yet and
// returns how many were created. Existing settings keep their values.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, in := range DefaultSettings() {
		_, err := s.repo.FindByKey(ctx, setting.NormalizeKey(in.Key))
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return created, err
		}

		if _, err := s.Create(ctx, in); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			return created, err
		}
		created++
	}

	s.logger.Info("Default settings seeded", zap.Int("created", created))
	return created, nil
}
