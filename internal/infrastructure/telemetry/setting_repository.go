package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Outcomes recorded on repository metrics
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeTypeMismatch = "type_mismatch"
	OutcomeConflict     = "conflict"
	OutcomeError        = "error"
)

// InstrumentedSettingRepository wraps a setting.Repository with one span
// and one call/duration measurement per operation. Successful increments
// are also counted per key.
type InstrumentedSettingRepository struct {
	next       setting.Repository
	tracer     trace.Tracer
	calls      metric.Int64Counter
	duration   metric.Float64Histogram
	increments metric.Int64Counter
}

var _ setting.Repository = (*InstrumentedSettingRepository)(nil)

// NewInstrumentedSettingRepository decorates next
func NewInstrumentedSettingRepository(next setting.Repository, tp trace.TracerProvider, mp metric.MeterProvider) (*InstrumentedSettingRepository, error) {
	meter := mp.Meter(TracerName)

	calls, err := meter.Int64Counter("settings.repository.calls",
		metric.WithDescription("Settings repository calls by operation and outcome"))
	if err != nil {
		return nil, fmt.Errorf("create calls counter: %w", err)
	}
	duration, err := meter.Float64Histogram("settings.repository.duration",
		metric.WithDescription("Settings repository call latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	increments, err := meter.Int64Counter("settings.counter.increments",
		metric.WithDescription("Successful counter increments by key"))
	if err != nil {
		return nil, fmt.Errorf("create increments counter: %w", err)
	}

	return &InstrumentedSettingRepository{
		next:       next,
		tracer:     tp.Tracer(TracerName),
		calls:      calls,
		duration:   duration,
		increments: increments,
	}, nil
}

func (r *InstrumentedSettingRepository) Create(ctx context.Context, s *setting.Setting) (err error) {
	ctx, done := r.observe(ctx, "create", s.Key)
	defer func() { done(err) }()
	return r.next.Create(ctx, s)
}

func (r *InstrumentedSettingRepository) FindByKey(ctx context.Context, key string) (_ *setting.Setting, err error) {
	ctx, done := r.observe(ctx, "find_by_key", key)
	defer func() { done(err) }()
	return r.next.FindByKey(ctx, key)
}

func (r *InstrumentedSettingRepository) FindByKeys(ctx context.Context, keys []string) (_ []setting.Setting, err error) {
	ctx, done := r.observe(ctx, "find_by_keys", "", attribute.Int("settings.key_count", len(keys)))
	defer func() { done(err) }()
	return r.next.FindByKeys(ctx, keys)
}

func (r *InstrumentedSettingRepository) FindAll(ctx context.Context) (_ []setting.Setting, err error) {
	ctx, done := r.observe(ctx, "find_all", "")
	defer func() { done(err) }()
	return r.next.FindAll(ctx)
}

func (r *InstrumentedSettingRepository) FindByCategory(ctx context.Context, category string) (_ []setting.Setting, err error) {
	ctx, done := r.observe(ctx, "find_by_category", "", attribute.String("settings.category", category))
	defer func() { done(err) }()
	return r.next.FindByCategory(ctx, category)
}

func (r *InstrumentedSettingRepository) UpdateValue(ctx context.Context, key string, value setting.Value) (_ *setting.Setting, err error) {
	ctx, done := r.observe(ctx, "update_value", key, attribute.String("settings.value_type", value.Type().String()))
	defer func() { done(err) }()
	return r.next.UpdateValue(ctx, key, value)
}

func (r *InstrumentedSettingRepository) Increment(ctx context.Context, key string) (_ *setting.Setting, err error) {
	ctx, done := r.observe(ctx, "increment", key)
	defer func() { done(err) }()

	s, err := r.next.Increment(ctx, key)
	if err == nil {
		r.increments.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
	}
	return s, err
}

func (r *InstrumentedSettingRepository) Remove(ctx context.Context, key string) (err error) {
	ctx, done := r.observe(ctx, "remove", key)
	defer func() { done(err) }()
	return r.next.Remove(ctx, key)
}

func (r *InstrumentedSettingRepository) observe(ctx context.Context, op, key string, extra ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	attrs := append([]attribute.KeyValue{attribute.String("settings.operation", op)}, extra...)
	if key != "" {
		attrs = append(attrs, attribute.String("settings.key", key))
	}
	ctx, span := r.tracer.Start(ctx, "settings."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		outcome := Outcome(err)
		set := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome))
		r.calls.Add(ctx, 1, set)
		r.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, set)

		span.SetAttributes(attribute.String("settings.outcome", outcome))
		if outcome == OutcomeError {
			EndSpan(span, err)
			return
		}
		span.End()
	}
}

// Outcome classifies a repository error for metrics. Missing keys, type
// mismatches and duplicate keys are expected results, not failures.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, shared.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, shared.ErrTypeMismatch):
		return OutcomeTypeMismatch
	case errors.Is(err, shared.ErrAlreadyExists):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
