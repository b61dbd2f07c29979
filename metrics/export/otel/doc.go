// Package otel binds goSession counters and the authenticate latency histogram to
// OpenTelemetry observable instruments.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter, cumulative
// bucket gauges plus count and sum gauges for the latency histogram, and a single
// callback that reads [goSession.Engine.MetricsSnapshot] on each collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
