package metrics

import (
	"time"

	"congress-hq/dashboard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ViolationMetrics tracks violation scans.
//
// Metrics:
//   - violation_scans_total: completed scans
//   - violation_scan_duration_seconds: scan duration histogram
//   - violation_scan_skipped: skipped policies or tables in the latest scan
//   - policies_with_violations: policies with any violation in the latest scan
//   - policy_violations: violation rows by policy and severity in the latest scan
type ViolationMetrics struct {
	scansTotal             prometheus.Counter
	scanDuration           prometheus.Histogram
	scanSkipped            prometheus.Gauge
	policiesWithViolations prometheus.Gauge
	policyViolations       *prometheus.GaugeVec
}

// NewViolationMetrics creates and registers violation metrics.
func NewViolationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ViolationMetrics {
	vm := &ViolationMetrics{
		scansTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "violation_scans_total",
				Help:      "Total number of violation scans",
			},
		),

		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "violation_scan_duration_seconds",
				Help:      "Duration of violation scans in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),

		scanSkipped: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "violation_scan_skipped",
				Help:      "Policies or tables skipped by the latest violation scan",
			},
		),

		policiesWithViolations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policies_with_violations",
				Help:      "Number of policies with violations in the latest scan",
			},
		),

		policyViolations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_violations",
				Help:      "Violation rows per policy and severity in the latest scan",
			},
			[]string{"policy", "severity"},
		),
	}

	registry.MustRegister(
		vm.scansTotal,
		vm.scanDuration,
		vm.scanSkipped,
		vm.policiesWithViolations,
		vm.policyViolations,
	)

	return vm
}

// RecordScan records a completed scan. counts maps policy label to severity
// to row count. Policies absent from counts are cleared.
func (vm *ViolationMetrics) RecordScan(counts map[string]map[string]int, skipped int, duration time.Duration) {
	vm.scansTotal.Inc()
	vm.scanDuration.Observe(duration.Seconds())
	vm.scanSkipped.Set(float64(skipped))
	vm.policiesWithViolations.Set(float64(len(counts)))

	vm.policyViolations.Reset()
	for policy, bySeverity := range counts {
		for severity, n := range bySeverity {
			vm.policyViolations.WithLabelValues(policy, severity).Set(float64(n))
		}
	}
}
