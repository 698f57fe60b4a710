package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGorm(level gormlogger.LogLevel, slow time.Duration) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, slow), recorded
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Info, 0)
	changed := gl.LogMode(gormlogger.Error)

	assert.Equal(t, gormlogger.Info, gl.level)
	cp, ok := changed.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, cp.level)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()
	query := func() (string, int64) { return "UPDATE settings SET num_value = num_value + 1", 1 }

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Silent, 0)
		gl.Trace(ctx, time.Now(), query, errors.New("boom"))
		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("errors are logged", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, 0)
		gl.Trace(ctx, time.Now(), query, errors.New("boom"))

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, "SQL Error", entry.Message)
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "gorm", entry.LoggerName)
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, 0)
		gl.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, time.Millisecond)
		gl.Trace(ctx, time.Now().Add(-time.Second), query, nil)

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "Slow SQL", recorded.All()[0].Message)
	})

	t.Run("info level logs every query at debug", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Info, 0)
		gl.Trace(WithRequestID(ctx, "req-9"), time.Now(), query, nil)

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, "req-9", entry.ContextMap()["request_id"])
		assert.Equal(t, int64(1), entry.ContextMap()["rows"])
	})

	t.Run("warn level skips ordinary queries", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, 0)
		gl.Trace(ctx, time.Now(), query, nil)
		assert.Equal(t, 0, recorded.Len())
	})
}

func TestGormLogger_Messages(t *testing.T) {
	gl, recorded := newObservedGorm(gormlogger.Warn, 0)
	gl.Info(context.Background(), "migrated %d tables", 1)
	gl.Warn(context.Background(), "deprecated %s", "column")
	gl.Error(context.Background(), "failed %s", "ping")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "deprecated column", entries[0].Message)
	assert.Equal(t, "failed ping", entries[1].Message)
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Warn, GormLevel("warn"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
}
