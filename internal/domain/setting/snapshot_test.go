package setting

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSetting(t *testing.T, key string, v Value) Setting {
	t.Helper()
	s, err := NewSetting("test", key, v)
	require.NoError(t, err)
	return *s
}

func TestNewSnapshot(t *testing.T) {
	active := mustSetting(t, "active_key", StringValue("a"))
	disabled := mustSetting(t, "disabled_key", BoolValue(true))
	disabled.Enabled = false
	removed := mustSetting(t, "removed_key", StringValue("r"))
	removed.Remove()

	snap := NewSnapshot([]Setting{active, disabled, removed})

	assert.Len(t, snap, 2)
	assert.Equal(t, "a", snap["active_key"])
	assert.Equal(t, true, snap["disabled_key"])
	assert.False(t, snap.Has("removed_key"))
}

func TestSnapshot_Getters(t *testing.T) {
	snap := NewSnapshot([]Setting{
		mustSetting(t, "currency_symbol", StringValue("$")),
		mustSetting(t, "cent_precision", NumberValueFromInt(2)),
		mustSetting(t, "tax_rate", NumberValueFromFloat(7.5)),
		mustSetting(t, "zero_format", BoolValue(false)),
	})

	s, err := snap.String("Currency_Symbol")
	require.NoError(t, err)
	assert.Equal(t, "$", s)

	n, err := snap.Int("cent_precision")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	d, err := snap.Decimal("tax_rate")
	require.NoError(t, err)
	assert.Equal(t, "7.5", d.String())

	b, err := snap.Bool("zero_format")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = snap.Int("tax_rate")
	assert.ErrorIs(t, err, shared.ErrTypeMismatch)

	_, err = snap.Bool("currency_symbol")
	assert.ErrorIs(t, err, shared.ErrTypeMismatch)

	_, err = snap.String("decimal_sep")
	assert.ErrorIs(t, err, shared.ErrTypeMismatch)
}

func TestSnapshot_Clone(t *testing.T) {
	snap := Snapshot{"a": "1"}
	clone := snap.Clone()
	clone["b"] = "2"
	assert.False(t, snap.Has("b"))
}
