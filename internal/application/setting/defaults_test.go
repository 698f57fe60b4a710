package setting

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/backoffice/internal/domain/money"
	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultSettings(t *testing.T) {
	seen := make(map[string]struct{})
	var snapshotSource []setting.Setting
	for _, in := range DefaultSettings() {
		_, dup := seen[in.Key]
		assert.False(t, dup, "duplicate default %s", in.Key)
		seen[in.Key] = struct{}{}

		v, err := setting.ValueOf(in.Value)
		require.NoError(t, err)
		s, err := setting.NewSetting(in.Category, in.Key, v)
		require.NoError(t, err, in.Key)
		snapshotSource = append(snapshotSource, *s)
	}

	fs, err := FormatSettingsFromSnapshot(setting.NewSnapshot(snapshotSource))
	require.NoError(t, err)
	_, err = money.NewFormatter(fs)
	require.NoError(t, err)
}

func TestService_SeedDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("creates only missing settings", func(t *testing.T) {
		repo := new(MockRepository)
		existing := mustSetting(CategoryApp, "app_name", "Acme ERP")
		repo.On("FindByKey", ctx, "app_name").Return(existing, nil)
		repo.On("FindByKey", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		created, err := newTestService(repo, &spyCache{}).SeedDefaults(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(DefaultSettings())-1, created)
		repo.AssertNotCalled(t, "Create", ctx, mock.MatchedBy(func(s *setting.Setting) bool {
			return s.Key == "app_name"
		}))
	})

	t.Run("concurrent seed tolerates duplicates", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByKey", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
		repo.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		created, err := NewService(repo, nil, zap.NewNop()).SeedDefaults(ctx)
		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("storage errors abort", func(t *testing.T) {
		repo := new(MockRepository)
		storageErr := errors.New("connection refused")
		repo.On("FindByKey", ctx, mock.Anything).Return(nil, storageErr)

		_, err := newTestService(repo, &spyCache{}).SeedDefaults(ctx)
		assert.ErrorIs(t, err, storageErr)
	})
}
