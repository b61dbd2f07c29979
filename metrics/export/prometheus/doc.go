// Package prometheus exposes goSession metrics through a client_golang Collector.
//
// [NewExporter] wraps an [goSession.Engine] in a [Collector], registers it on a private
// registry, and serves that registry through promhttp. Callers that run their own
// registry can register the Collector there instead.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
