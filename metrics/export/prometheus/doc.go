// Package prometheus provides Prometheus collectors for otpauth metrics.
//
// [NewPrometheusExporter] accepts an [otpauth.Engine] and exposes an [http.Handler]
// that renders all otpauth counters and histograms in Prometheus text exposition format.
// Counter names are prefixed otpauth_*_total; the single histogram is
// otpauth_authorize_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
