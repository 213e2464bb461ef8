package metrics

import (
	"congress-hq/dashboard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics tracks backend state changes.
//
// Metrics:
//   - fixture_reloads_total: fixture reload attempts by result
//   - history_writes_total: scan history writes by result
type BackendMetrics struct {
	reloadsTotal       *prometheus.CounterVec
	historyWritesTotal *prometheus.CounterVec
}

// NewBackendMetrics creates and registers backend metrics.
func NewBackendMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BackendMetrics {
	bm := &BackendMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fixture_reloads_total",
				Help:      "Total number of fixture reload attempts",
			},
			[]string{"result"},
		),

		historyWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "history_writes_total",
				Help:      "Total number of scan history writes",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(bm.reloadsTotal, bm.historyWritesTotal)

	return bm
}

// RecordReload records a fixture reload attempt.
func (bm *BackendMetrics) RecordReload(ok bool) {
	bm.reloadsTotal.WithLabelValues(result(ok)).Inc()
}

// RecordHistoryWrite records a history write.
func (bm *BackendMetrics) RecordHistoryWrite(ok bool) {
	bm.historyWritesTotal.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
