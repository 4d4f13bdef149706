// Package metric provides Prometheus metrics for sessionlink.
//
// Metrics:
//
//   - sessionlink_client_requests_total{method,outcome}
//   - sessionlink_client_request_duration_seconds{method}
//   - sessionlink_client_requests_in_flight
//   - sessionlink_session_events_total{event}
//
// A CLI process is short-lived, so there is no /metrics endpoint; the
// registry is written in the node-exporter textfile format on exit when
// asked to (see Registry.WriteTextfile).
package metric
