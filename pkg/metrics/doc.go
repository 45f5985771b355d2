// Package metrics exposes Prometheus metrics for the mock server.
//
// Metrics are registered once on the default Prometheus registry; Get
// returns the shared set.
package metrics
