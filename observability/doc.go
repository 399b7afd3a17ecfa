// Package observability provides the OpenTelemetry spans and counters
// emitted around fixture lifecycle steps.
//
// Spans and counters go through the global providers, which are no-ops
// unless the caller installs SDK providers:
//
//	exp := tracetest.NewInMemoryExporter()
//	tp, err := observability.InitTracer(observability.DefaultTracerConfig("suite"), exp)
//	defer tp.Shutdown(ctx)
//
//	reader := sdkmetric.NewManualReader()
//	mp, err := observability.InitMeter(observability.DefaultTracerConfig("suite"), reader)
//	metrics, err := observability.NewMetrics(mp.Meter(observability.MeterName))
package observability
