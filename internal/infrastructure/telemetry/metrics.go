package telemetry

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// MeterProvider exports metrics over OTLP on a fixed interval
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
}

// NewMeterProvider creates a periodic OTLP metrics pipeline
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource) (*MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP metric exporter: %w", err)
	}

	return &MeterProvider{
		provider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(cfg.MetricsInterval))),
		),
	}, nil
}

// Provider returns the underlying metric.MeterProvider
func (mp *MeterProvider) Provider() metric.MeterProvider {
	return mp.provider
}

// Shutdown flushes pending measurements
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if err := mp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}
