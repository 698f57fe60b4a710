package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path

	// Rotation of file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns a console configuration suitable for development
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 30,
	}
}

// New creates a zap logger. A file Output is written through a rotating
// lumberjack writer.
func New(cfg Config) (*zap.Logger, error) {
	writer, err := newWriter(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), writer, ParseLevel(cfg.Level))
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// NewForEnvironment creates a logger with the default layout for env:
// JSON in production, console elsewhere.
func NewForEnvironment(env string) (*zap.Logger, error) {
	cfg := DefaultConfig()
	if env == "production" {
		cfg.Format = "json"
	}
	return New(cfg)
}

// ParseLevel converts a level name to zapcore.Level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(format string) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if strings.EqualFold(format, "console") {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func newWriter(cfg Config) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}), nil
}
