package persistence

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newSQLiteSettingRepository opens a temp-file sqlite database with the
// settings table migrated
func newSQLiteSettingRepository(t *testing.T) *GormSettingRepository {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "settings.db"),
	}
	db, err := NewDatabase(cfg, zap.NewNop(), "silent")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	return NewGormSettingRepository(db.DB)
}

func seed(t *testing.T, repo *GormSettingRepository, category, key string, raw any, opts ...setting.Option) *setting.Setting {
	t.Helper()
	v, err := setting.ValueOf(raw)
	require.NoError(t, err)
	s, err := setting.NewSetting(category, key, v, opts...)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSQLiteSettingRepository_RoundTrip(t *testing.T) {
	repo := newSQLiteSettingRepository(t)
	ctx := context.Background()

	seed(t, repo, "app_settings", "app_name", "Acme")
	seed(t, repo, "money_format_settings", "cent_precision", 2)
	seed(t, repo, "money_format_settings", "zero_format", false)
	seed(t, repo, "app_settings", "app_theme", map[string]any{"dark": true})
	seed(t, repo, "app_settings", "app_locales", []any{"en", "fr"})
	seed(t, repo, "finance_settings", "tax_rate", 7.5, setting.WithEnabled(false))

	t.Run("find each variant", func(t *testing.T) {
		s, err := repo.FindByKey(ctx, "app_name")
		require.NoError(t, err)
		name, _ := s.Value.AsString()
		assert.Equal(t, "Acme", name)

		s, err = repo.FindByKey(ctx, "cent_precision")
		require.NoError(t, err)
		n, ok := s.Value.AsNumber()
		require.True(t, ok)
		assert.Equal(t, "2", n.String())

		s, err = repo.FindByKey(ctx, "zero_format")
		require.NoError(t, err)
		b, ok := s.Value.AsBool()
		require.True(t, ok)
		assert.False(t, b)

		s, err = repo.FindByKey(ctx, "app_theme")
		require.NoError(t, err)
		obj, ok := s.Value.AsObject()
		require.True(t, ok)
		assert.Equal(t, true, obj["dark"])

		s, err = repo.FindByKey(ctx, "app_locales")
		require.NoError(t, err)
		arr, ok := s.Value.AsArray()
		require.True(t, ok)
		assert.Equal(t, []any{"en", "fr"}, arr)

		s, err = repo.FindByKey(ctx, "tax_rate")
		require.NoError(t, err)
		rate, _ := s.Value.AsNumber()
		assert.Equal(t, "7.5", rate.String())
		assert.False(t, s.Enabled)
	})

	t.Run("list queries", func(t *testing.T) {
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 6)

		money, err := repo.FindByCategory(ctx, "money_format_settings")
		require.NoError(t, err)
		require.Len(t, money, 2)
		assert.Equal(t, "cent_precision", money[0].Key)
		assert.Equal(t, "zero_format", money[1].Key)

		some, err := repo.FindByKeys(ctx, []string{"app_name", "tax_rate", "unknown"})
		require.NoError(t, err)
		assert.Len(t, some, 2)
	})

	t.Run("duplicate active key", func(t *testing.T) {
		dup, err := setting.NewSetting("app_settings", "app_name", setting.StringValue("Other"))
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("update guarded by type", func(t *testing.T) {
		s, err := repo.UpdateValue(ctx, "app_name", setting.StringValue("Globex"))
		require.NoError(t, err)
		name, _ := s.Value.AsString()
		assert.Equal(t, "Globex", name)

		_, err = repo.UpdateValue(ctx, "app_name", setting.NumberValueFromInt(3))
		assert.ErrorIs(t, err, shared.ErrTypeMismatch)

		_, err = repo.UpdateValue(ctx, "nope", setting.StringValue("x"))
		assert.ErrorIs(t, err, shared.ErrNotFound)

		s, err = repo.FindByKey(ctx, "app_name")
		require.NoError(t, err)
		name, _ = s.Value.AsString()
		assert.Equal(t, "Globex", name)
	})

	t.Run("falsy values are stored", func(t *testing.T) {
		s, err := repo.UpdateValue(ctx, "cent_precision", setting.NumberValueFromInt(0))
		require.NoError(t, err)
		n, _ := s.Value.AsNumber()
		assert.True(t, n.IsZero())
	})

	t.Run("remove then recreate", func(t *testing.T) {
		require.NoError(t, repo.Remove(ctx, "app_theme"))
		assert.ErrorIs(t, repo.Remove(ctx, "app_theme"), shared.ErrNotFound)

		_, err := repo.FindByKey(ctx, "app_theme")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		seed(t, repo, "app_settings", "app_theme", map[string]any{"dark": false})
		s, err := repo.FindByKey(ctx, "app_theme")
		require.NoError(t, err)
		obj, _ := s.Value.AsObject()
		assert.Equal(t, false, obj["dark"])
	})
}

func TestSQLiteSettingRepository_Increment(t *testing.T) {
	repo := newSQLiteSettingRepository(t)
	ctx := context.Background()

	seed(t, repo, "finance_settings", "last_invoice_number", 0)
	seed(t, repo, "app_settings", "app_name", "Acme")
	empty, err := setting.NewSetting("finance_settings", "last_quote_number", setting.Value{},
		setting.WithValueType(setting.ValueTypeNumber))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, empty))

	t.Run("returns post-increment value", func(t *testing.T) {
		s, err := repo.Increment(ctx, "last_invoice_number")
		require.NoError(t, err)
		n, _ := s.Value.AsNumber()
		assert.Equal(t, "1", n.String())
	})

	t.Run("absent number starts from zero", func(t *testing.T) {
		s, err := repo.Increment(ctx, "last_quote_number")
		require.NoError(t, err)
		n, _ := s.Value.AsNumber()
		assert.Equal(t, "1", n.String())
	})

	t.Run("non-numeric is untouched", func(t *testing.T) {
		_, err := repo.Increment(ctx, "app_name")
		assert.ErrorIs(t, err, shared.ErrTypeMismatch)

		s, err := repo.FindByKey(ctx, "app_name")
		require.NoError(t, err)
		name, _ := s.Value.AsString()
		assert.Equal(t, "Acme", name)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := repo.Increment(ctx, "last_receipt_number")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSQLiteSettingRepository_ConcurrentIncrement(t *testing.T) {
	repo := newSQLiteSettingRepository(t)
	ctx := context.Background()
	seed(t, repo, "finance_settings", "last_payment_number", 10)

	const workers = 40
	results := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := repo.Increment(ctx, "last_payment_number")
			if !assert.NoError(t, err) {
				return
			}
			n, _ := s.Value.AsNumber()
			results[i] = n.IntPart()
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a] < results[b] })
	for i, v := range results {
		assert.Equal(t, int64(11+i), v)
	}

	s, err := repo.FindByKey(ctx, "last_payment_number")
	require.NoError(t, err)
	n, _ := s.Value.AsNumber()
	assert.Equal(t, "50", n.String())
}
