// Package metrics provides Prometheus metrics for the dashboard.
//
// # Metrics Categories
//
//   - Catalog Metrics: table catalog builds, entry counts, and skipped entries
//   - Violation Metrics: scan count, scan duration, and per-policy violation rows
//   - Request Metrics: HTTP request count and duration by route
//   - Backend Metrics: fixture reloads and history writes
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	agg := catalog.NewAggregator(backend, catalog.WithRecorder(collector))
//	scanner := violations.NewAggregator(backend, collector, logger)
//
//	router.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// All metric names carry the configured namespace and subsystem, for example
// congress_dashboard_violation_scans_total.
//
// # Cardinality
//
// Per-policy gauges are bounded by a CardinalityLimiter. Policies beyond the
// limit are folded into the "other" label.
package metrics
