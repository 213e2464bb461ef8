// Package telemetry groups the dashboard's observability packages.
//
//   - logging: slog construction, request-scoped attributes, credential redaction
//   - metrics: Prometheus collectors for catalog builds, violation scans and the API
//   - health: liveness, readiness and version endpoints
//
// Each subpackage is configured from config.TelemetryConfig.
package telemetry
