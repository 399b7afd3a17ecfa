package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/dbprime/logger"
)

// MeterName is the instrumentation name used for fixture counters.
const MeterName = "github.com/kbukum/dbprime/fixture"

// InitMeter builds a meter provider reading through reader and installs it
// as the global provider.
func InitMeter(config TracerConfig, reader sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	if reader == nil {
		return nil, fmt.Errorf("creating meter provider: nil reader")
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields("service", config.ServiceName))

	return mp, nil
}

// Meter returns the fixture meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(MeterName)
}

// Metric names.
const (
	MetricInserted = "fixture.records.inserted"
	MetricDeleted  = "fixture.records.deleted"
	MetricFailed   = "fixture.records.failed"
	MetricLeaked   = "fixture.records.leaked"
)

// Metrics holds the counters for fixture lifecycle events.
type Metrics struct {
	inserted metric.Int64Counter
	deleted  metric.Int64Counter
	failed   metric.Int64Counter
	leaked   metric.Int64Counter
}

// NewMetrics creates the fixture counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	inserted, err := meter.Int64Counter(MetricInserted,
		metric.WithDescription("Fixture rows inserted and committed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricInserted, err)
	}

	deleted, err := meter.Int64Counter(MetricDeleted,
		metric.WithDescription("Fixture rows deleted during teardown"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDeleted, err)
	}

	failed, err := meter.Int64Counter(MetricFailed,
		metric.WithDescription("Fixture creations that failed, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricFailed, err)
	}

	leaked, err := meter.Int64Counter(MetricLeaked,
		metric.WithDescription("Fixture rows whose teardown failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricLeaked, err)
	}

	return &Metrics{
		inserted: inserted,
		deleted:  deleted,
		failed:   failed,
		leaked:   leaked,
	}, nil
}

// DefaultMetrics creates counters on the global meter. Instrument creation
// only fails on invalid names, so an error falls back to nil metrics.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(Meter())
	if err != nil {
		logger.Warn("fixture metrics disabled", logger.Fields(logger.FieldError, err.Error()))
		return nil
	}
	return m
}

// All Record* methods accept a nil receiver.

// RecordInserted counts a committed fixture row.
func (m *Metrics) RecordInserted(ctx context.Context, table, dialect string) {
	if m == nil {
		return
	}
	m.inserted.Add(ctx, 1, tableAttrs(table, dialect))
}

// RecordDeleted counts a fixture row removed by teardown.
func (m *Metrics) RecordDeleted(ctx context.Context, table, dialect string) {
	if m == nil {
		return
	}
	m.deleted.Add(ctx, 1, tableAttrs(table, dialect))
}

// RecordFailed counts a failed creation tagged with its error code.
func (m *Metrics) RecordFailed(ctx context.Context, table, code string) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("table", table),
		attribute.String("code", code),
	))
}

// RecordLeaked counts a row teardown could not remove.
func (m *Metrics) RecordLeaked(ctx context.Context, table, dialect string) {
	if m == nil {
		return
	}
	m.leaked.Add(ctx, 1, tableAttrs(table, dialect))
}

func tableAttrs(table, dialect string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("table", table),
		attribute.String("dialect", dialect),
	)
}
