// Package observability wires the core into OpenTelemetry: a meter provider
// backed by a Prometheus exporter for /metrics scraping, an optional OTLP
// tracer, and the CoreMetrics instrument set used by the bus, health manager,
// dashboard, and recovery loop. All CoreMetrics methods are nil-safe so
// instrumentation stays optional in tests.
package observability
