package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("console to stdout", func(t *testing.T) {
		l, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("debug level", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Level = "debug"
		l, err := New(cfg)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("json to rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "backoffice.log")
		cfg := DefaultConfig()
		cfg.Format = "json"
		cfg.Output = path
		cfg.MaxSizeMB = 1

		l, err := New(cfg)
		require.NoError(t, err)
		l.Info("Setting updated", zap.String("key", "tax_rate"))
		_ = l.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"Setting updated"`)
		assert.Contains(t, string(data), `"key":"tax_rate"`)
	})
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewForEnvironment(env)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}
