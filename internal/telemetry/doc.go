// Package telemetry wraps OpenTelemetry SDK initialization: one place that
// builds the tracer and meter providers and registers them globally. With
// telemetry disabled the globals stay noop and nothing connects out.
package telemetry
