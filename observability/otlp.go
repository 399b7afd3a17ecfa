package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewOTLPTraceExporter creates an OTLP/HTTP span exporter for
// config.Endpoint, for use with InitTracer.
func NewOTLPTraceExporter(ctx context.Context, config TracerConfig) (sdktrace.SpanExporter, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("creating trace exporter: empty endpoint")
	}
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	return exporter, nil
}

// NewOTLPMetricReader creates a periodic reader pushing to config.Endpoint
// over OTLP/HTTP, for use with InitMeter. A zero interval keeps the SDK
// default.
func NewOTLPMetricReader(ctx context.Context, config TracerConfig, interval time.Duration) (sdkmetric.Reader, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("creating metric exporter: empty endpoint")
	}
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(interval))
	}
	return sdkmetric.NewPeriodicReader(exporter, readerOpts...), nil
}
