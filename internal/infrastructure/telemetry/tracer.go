// Package telemetry wires OpenTelemetry tracing, metrics and log export for
// the settings service.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Providers holds the SDK providers created by Setup. With export disabled
// every provider is nil and the global no-op providers stay in place.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *MeterProvider
	Logs   *LoggerProvider

	logger *zap.Logger
}

// Setup installs the W3C trace-context propagator and, when enabled, OTLP
// exporters for traces, metrics and optionally logs
func Setup(ctx context.Context, cfg config.TelemetryConfig, serviceName string, logger *zap.Logger) (*Providers, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p := &Providers{logger: logger}
	if !cfg.Enabled {
		logger.Info("Telemetry export disabled")
		return p, nil
	}

	res, err := newResource(serviceName)
	if err != nil {
		return nil, err
	}

	if p.Tracer, err = newTracerProvider(ctx, cfg, res); err != nil {
		return nil, err
	}
	otel.SetTracerProvider(p.Tracer)

	if p.Meter, err = NewMeterProvider(ctx, cfg, res); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	otel.SetMeterProvider(p.Meter.provider)

	if cfg.ExportLogs {
		if p.Logs, err = NewLoggerProvider(ctx, cfg, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	logger.Info("Telemetry export enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.Bool("export_logs", cfg.ExportLogs))
	return p, nil
}

// TracerProvider returns the SDK provider, or the global one when export
// is disabled
func (p *Providers) TracerProvider() trace.TracerProvider {
	if p.Tracer == nil {
		return otel.GetTracerProvider()
	}
	return p.Tracer
}

// MeterProvider returns the SDK provider, or the global one when export is
// disabled
func (p *Providers) MeterProvider() metric.MeterProvider {
	if p.Meter == nil {
		return otel.GetMeterProvider()
	}
	return p.Meter.Provider()
}

// Shutdown flushes and stops every provider
func (p *Providers) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		p.logger.Error("Telemetry shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

func newTracerProvider(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRatio)),
	), nil
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create telemetry resource: %w", err)
	}
	return res, nil
}
