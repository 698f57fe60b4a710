package telemetry

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider exports log records over OTLP
type LoggerProvider struct {
	provider *sdklog.LoggerProvider
}

// NewLoggerProvider creates a batching OTLP log pipeline
func NewLoggerProvider(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource) (*LoggerProvider, error) {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP log exporter: %w", err)
	}

	return &LoggerProvider{
		provider: sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		),
	}, nil
}

// Shutdown flushes pending log records
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if err := lp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown logger provider: %w", err)
	}
	return nil
}

// Bridge returns a logger that writes to base and also exports every entry
// at or above minLevel through the OTLP pipeline. A nil provider returns
// base unchanged.
func (lp *LoggerProvider) Bridge(base *zap.Logger, name string, minLevel zapcore.Level) *zap.Logger {
	if lp == nil {
		return base
	}
	otelCore := otelzap.NewCore(name, otelzap.WithLoggerProvider(lp.provider))
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, &levelFilterCore{Core: otelCore, min: minLevel})
	}))
}

// levelFilterCore drops entries below min before they reach the wrapped core
type levelFilterCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), min: c.min}
}
