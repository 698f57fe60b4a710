package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// RegisterGormTracing adds a span per GORM statement. Bound query
// variables are left out of spans unless withVariables is set.
func RegisterGormTracing(db *gorm.DB, tp trace.TracerProvider, dbSystem string, withVariables bool) error {
	opts := []otelgorm.Option{
		otelgorm.WithTracerProvider(tp),
		otelgorm.WithDBName(dbSystem),
	}
	if !withVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register gorm tracing: %w", err)
	}
	return nil
}
