package setting

import (
	"context"
	"sync"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of setting.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, s *setting.Setting) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) FindByKey(ctx context.Context, key string) (*setting.Setting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*setting.Setting), args.Error(1)
}

func (m *MockRepository) FindByKeys(ctx context.Context, keys []string) ([]setting.Setting, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]setting.Setting), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context) ([]setting.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]setting.Setting), args.Error(1)
}

func (m *MockRepository) FindByCategory(ctx context.Context, category string) ([]setting.Setting, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]setting.Setting), args.Error(1)
}

func (m *MockRepository) UpdateValue(ctx context.Context, key string, value setting.Value) (*setting.Setting, error) {
	args := m.Called(ctx, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*setting.Setting), args.Error(1)
}

func (m *MockRepository) Increment(ctx context.Context, key string) (*setting.Setting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*setting.Setting), args.Error(1)
}

func (m *MockRepository) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// spyCache records snapshot cache calls
type spyCache struct {
	mu          sync.Mutex
	snap        setting.Snapshot
	present     bool
	sets        int
	invalidates int
	getErr      error
}

func (c *spyCache) Get(context.Context) (setting.Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.snap, c.present, nil
}

func (c *spyCache) Set(_ context.Context, snap setting.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
	c.present = true
	c.sets++
	return nil
}

func (c *spyCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = nil
	c.present = false
	c.invalidates++
	return nil
}

func mustSetting(category, key string, value any) *setting.Setting {
	v, err := setting.ValueOf(value)
	if err != nil {
		panic(err)
	}
	s, err := setting.NewSetting(category, key, v)
	if err != nil {
		panic(err)
	}
	return s
}
