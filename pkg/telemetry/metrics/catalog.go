package metrics

import (
	"strconv"
	"time"

	"congress-hq/dashboard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics tracks table catalog builds.
//
// Metrics:
//   - catalog_builds_total: builds by whether columns were resolved
//   - catalog_build_duration_seconds: build duration histogram
//   - catalog_entries: entry count of the latest build
//   - catalog_skipped_total: owners or tables left out, by kind and operation
type CatalogMetrics struct {
	buildsTotal   *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	entries       *prometheus.GaugeVec
	skippedTotal  *prometheus.CounterVec
}

// NewCatalogMetrics creates and registers catalog metrics.
func NewCatalogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CatalogMetrics {
	cm := &CatalogMetrics{
		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_builds_total",
				Help:      "Total number of table catalog builds",
			},
			[]string{"columns"},
		),

		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_build_duration_seconds",
				Help:      "Duration of table catalog builds in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"columns"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_entries",
				Help:      "Number of entries in the latest table catalog",
			},
			[]string{"columns"},
		),

		skippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_skipped_total",
				Help:      "Total number of catalog owners or tables skipped after a backend failure",
			},
			[]string{"kind", "op"},
		),
	}

	registry.MustRegister(
		cm.buildsTotal,
		cm.buildDuration,
		cm.entries,
		cm.skippedTotal,
	)

	return cm
}

// RecordBuild records a completed build.
func (cm *CatalogMetrics) RecordBuild(withColumns bool, entries int, duration time.Duration) {
	columns := strconv.FormatBool(withColumns)
	cm.buildsTotal.WithLabelValues(columns).Inc()
	cm.buildDuration.WithLabelValues(columns).Observe(duration.Seconds())
	cm.entries.WithLabelValues(columns).Set(float64(entries))
}

// RecordSkip records a skipped owner or table.
func (cm *CatalogMetrics) RecordSkip(kind, op string) {
	cm.skippedTotal.WithLabelValues(kind, op).Inc()
}
