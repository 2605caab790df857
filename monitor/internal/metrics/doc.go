// Package metrics exposes the monitor's own Prometheus metrics: Telemetry
// API request outcomes and latency, cycle results, and the latest value and
// health state of each line metric.
//
// Metrics implements telemetry.Observer so every client call is counted
// without the client importing Prometheus.
package metrics
