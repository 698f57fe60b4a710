package document

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/numbering"
	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryCounter increments settings held in memory under a lock
type memoryCounter struct {
	mu       sync.Mutex
	settings map[string]*setting.Setting
}

func newMemoryCounter(t *testing.T, values map[string]any) *memoryCounter {
	t.Helper()
	c := &memoryCounter{settings: make(map[string]*setting.Setting)}
	for key, raw := range values {
		v, err := setting.ValueOf(raw)
		require.NoError(t, err)
		s, err := setting.NewSetting("finance_settings", key, v)
		require.NoError(t, err)
		c.settings[key] = s
	}
	return c
}

func (c *memoryCounter) Increment(_ context.Context, key string) (*setting.Setting, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.settings[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if err := s.Increment(); err != nil {
		return nil, err
	}
	copied := *s
	return &copied, nil
}

func TestDocumentType_CounterKey(t *testing.T) {
	assert.Equal(t, "last_invoice_number", DocumentInvoice.CounterKey())
	assert.Equal(t, "last_quote_number", DocumentQuote.CounterKey())
	assert.Equal(t, "last_payment_number", DocumentPayment.CounterKey())
	assert.False(t, DocumentType("receipt").IsValid())
}

func TestNumberingService_Next(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, time.November, 30, 9, 0, 0, 0, time.Local)
	gen := numbering.New(
		numbering.WithClock(func() time.Time { return day }),
		numbering.WithRandom(func() int { return 555 }),
	)

	t.Run("increments then formats", func(t *testing.T) {
		counter := newMemoryCounter(t, map[string]any{"last_invoice_number": 0})
		svc := NewNumberingService(counter, gen, 0, zap.NewNop())

		issued, err := svc.Next(ctx, DocumentInvoice)
		require.NoError(t, err)
		assert.Equal(t, int64(1), issued.Counter)
		assert.Equal(t, "3011255550002", issued.Number)
		assert.Equal(t, DocumentInvoice, issued.Type)
	})

	t.Run("configured length", func(t *testing.T) {
		counter := newMemoryCounter(t, map[string]any{"last_quote_number": 41})
		svc := NewNumberingService(counter, gen, 12, zap.NewNop())

		issued, err := svc.Next(ctx, DocumentQuote)
		require.NoError(t, err)
		assert.Equal(t, "301125555043", issued.Number)
	})

	t.Run("unknown document type", func(t *testing.T) {
		svc := NewNumberingService(newMemoryCounter(t, nil), gen, 0, nil)
		_, err := svc.Next(ctx, DocumentType("receipt"))
		assert.Error(t, err)
	})

	t.Run("missing counter setting", func(t *testing.T) {
		svc := NewNumberingService(newMemoryCounter(t, nil), gen, 0, nil)
		_, err := svc.Next(ctx, DocumentPayment)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("fractional counter", func(t *testing.T) {
		counter := newMemoryCounter(t, map[string]any{"last_payment_number": 1.5})
		svc := NewNumberingService(counter, gen, 0, nil)
		_, err := svc.Next(ctx, DocumentPayment)
		assert.ErrorIs(t, err, shared.ErrTypeMismatch)
	})

	t.Run("non-numeric counter", func(t *testing.T) {
		counter := newMemoryCounter(t, map[string]any{"last_payment_number": "P-1"})
		svc := NewNumberingService(counter, gen, 0, nil)
		_, err := svc.Next(ctx, DocumentPayment)
		assert.True(t, errors.Is(err, shared.ErrTypeMismatch))
	})
}

func TestNumberingService_HundredInvoices(t *testing.T) {
	ctx := context.Background()
	counter := newMemoryCounter(t, map[string]any{"last_invoice_number": 0})
	svc := NewNumberingService(counter, numbering.New(), numbering.DefaultLength, zap.NewNop())

	var last int64
	for i := 0; i < 100; i++ {
		issued, err := svc.Next(ctx, DocumentInvoice)
		require.NoError(t, err)

		suffix, err := numbering.CounterSuffix(issued.Number)
		require.NoError(t, err)
		assert.Greater(t, suffix, last, "invoice %d: %s", i, issued.Number)
		last = suffix
	}
	assert.Equal(t, int64(101), last)
}
