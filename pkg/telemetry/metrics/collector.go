package metrics

import (
	"sync"
	"time"

	"congress-hq/dashboard/pkg/config"
	"congress-hq/dashboard/pkg/violations"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxPolicyLabels bounds the number of distinct policy labels.
const DefaultMaxPolicyLabels = 1000

// OtherLabel replaces label values past the cardinality limit.
const OtherLabel = "other"

// Collector owns every dashboard metric and the registry they live in.
//
// It implements catalog.Recorder, violations.Recorder and fixture.Recorder,
// so it can be handed straight to those components.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	catalogMetrics   *CatalogMetrics
	violationMetrics *ViolationMetrics
	requestMetrics   *RequestMetrics
	backendMetrics   *BackendMetrics

	policyLimiter *CardinalityLimiter
}

// NewCollector creates a collector. If registry is nil a fresh registry is
// created. Empty namespace and subsystem fall back to the defaults.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	resolved := *cfg
	if resolved.Namespace == "" {
		resolved.Namespace = config.DefaultMetricsNamespace
	}
	if resolved.Subsystem == "" {
		resolved.Subsystem = config.DefaultMetricsSubsystem
	}

	c := &Collector{
		config:        &resolved,
		registry:      registry,
		policyLimiter: NewCardinalityLimiter(DefaultMaxPolicyLabels),
	}

	c.catalogMetrics = NewCatalogMetrics(&resolved, registry)
	c.violationMetrics = NewViolationMetrics(&resolved, registry)
	c.requestMetrics = NewRequestMetrics(&resolved, registry)
	c.backendMetrics = NewBackendMetrics(&resolved, registry)

	return c
}

// RecordCatalogBuild records one catalog build.
func (c *Collector) RecordCatalogBuild(withColumns bool, entries int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.catalogMetrics.RecordBuild(withColumns, entries, duration)
}

// RecordCatalogSkip records a catalog entry or owner left out of a build.
func (c *Collector) RecordCatalogSkip(kind, op string) {
	if !c.config.Enabled {
		return
	}
	c.catalogMetrics.RecordSkip(kind, op)
}

// RecordViolationScan records a violation scan and replaces the per-policy
// violation gauges with the scan's counts.
func (c *Collector) RecordViolationScan(report violations.Report, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	counts := make(map[string]map[string]int, len(report.Summaries))
	for _, s := range report.Summaries {
		policy := s.Name
		if !c.policyLimiter.Allow(policy) {
			policy = OtherLabel
		}
		if counts[policy] == nil {
			counts[policy] = make(map[string]int, 2)
		}
		counts[policy][violations.TableError] += s.Errors()
		counts[policy][violations.TableWarning] += s.Warnings()
	}

	c.violationMetrics.RecordScan(counts, len(report.Skipped), duration)
}

// RecordHTTPRequest records one served API request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(route, method, status, duration)
}

// RecordFixtureReload records a fixture reload attempt.
func (c *Collector) RecordFixtureReload(ok bool) {
	if !c.config.Enabled {
		return
	}
	c.backendMetrics.RecordReload(ok)
}

// RecordHistoryWrite records a scan written to (or rejected by) the history
// store.
func (c *Collector) RecordHistoryWrite(ok bool) {
	if !c.config.Enabled {
		return
	}
	c.backendMetrics.RecordHistoryWrite(ok)
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Values already seen
// are always allowed.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of values seen.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
