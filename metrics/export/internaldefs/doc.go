// Package internaldefs holds the metric names, help strings and bucket boundaries shared
// by the Prometheus and OTel exporters.
//
// Changes to definitions in this package affect all exporters simultaneously.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
