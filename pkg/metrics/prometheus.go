// Package metrics provides Prometheus metrics for the matching service.
package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for match requests.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeNotFound   = "not_found"
	OutcomeForbidden  = "forbidden"
	OutcomeDependency = "dependency"
)

// Result labels for cache refreshes.
const (
	RefreshOK    = "ok"
	RefreshError = "error"
)

var (
	defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}
	ratioBuckets          = []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1}
	scoreBuckets          = []float64{65, 70, 75, 80, 85, 90, 95, 100}
)

// Manager owns every metric of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       *prometheus.Registry

	// Matching
	matchRequests  *prometheus.CounterVec
	matchDuration  prometheus.Histogram
	jobsEvaluated  prometheus.Counter
	jobsExcluded   *prometheus.CounterVec
	jobsIncluded   prometheus.Counter
	coverageRatio  prometheus.Histogram
	matchScore     prometheus.Histogram
	publishedJobs  prometheus.Gauge
	dependencyErrs *prometheus.CounterVec

	// Mapping cache
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	cacheRefresh  *prometheus.CounterVec
	cacheDegraded prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry served on /metrics

var globalManager = NewManager(WithPrometheusRegistry(customRegistry)) //nolint:gochecknoglobals // singleton behind the Record* helpers

// NewManager creates a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "pcdmatch",
		subsystem:      "matching",
		latencyBuckets: defaultLatencyBuckets,
		constLabels:    map[string]string{},
		registry:       prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchRequests = auto.NewCounterVec(
		m.counterOpts("match_requests_total", "Match requests by outcome"),
		[]string{"outcome"},
	)
	m.matchDuration = auto.NewHistogram(
		m.histogramOpts("match_duration_milliseconds", "Time spent matching one candidate against the catalog", m.latencyBuckets),
	)
	m.jobsEvaluated = auto.NewCounter(m.counterOpts("jobs_evaluated_total", "Candidate/job pairs evaluated"))
	m.jobsExcluded = auto.NewCounterVec(
		m.counterOpts("jobs_excluded_total", "Pairs excluded, by the stage that rejected them"),
		[]string{"stage"},
	)
	m.jobsIncluded = auto.NewCounter(m.counterOpts("jobs_included_total", "Pairs that reached the result set before the threshold filter"))
	m.coverageRatio = auto.NewHistogram(
		m.histogramOpts("coverage_ratio", "Barrier coverage ratio of evaluated pairs", ratioBuckets),
	)
	m.matchScore = auto.NewHistogram(
		m.histogramOpts("match_total_score", "Total score of included pairs", scoreBuckets),
	)
	m.publishedJobs = auto.NewGauge(m.gaugeOpts("published_jobs", "Published jobs seen by the last match request"))
	m.dependencyErrs = auto.NewCounterVec(
		m.counterOpts("dependency_errors_total", "Collaborator load failures"),
		[]string{"collaborator"},
	)

	m.cacheHits = auto.NewCounter(m.counterOpts("mapping_cache_hits_total", "Barrier mapping lookups served from the cache"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("mapping_cache_misses_total", "Barrier mapping lookups that went to the database"))
	m.cacheRefresh = auto.NewCounterVec(
		m.counterOpts("mapping_cache_refresh_total", "Scheduled cache warm-ups by result"),
		[]string{"result"},
	)
	m.cacheDegraded = auto.NewCounter(m.counterOpts("mapping_cache_degraded_total", "Cache operations that failed and fell back to the database"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP error responses by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func (m *Manager) RecordMatchRequest(outcome string) { m.matchRequests.WithLabelValues(outcome).Inc() }
func (m *Manager) RecordMatchDuration(ms float64)    { m.matchDuration.Observe(ms) }
func (m *Manager) RecordJobsEvaluated(n int)         { m.jobsEvaluated.Add(float64(n)) }
func (m *Manager) RecordJobExcluded(stage string)    { m.jobsExcluded.WithLabelValues(stage).Inc() }
func (m *Manager) RecordJobIncluded()                { m.jobsIncluded.Inc() }
func (m *Manager) RecordCoverageRatio(ratio float64) { m.coverageRatio.Observe(ratio) }
func (m *Manager) RecordMatchScore(total float64)    { m.matchScore.Observe(total) }
func (m *Manager) UpdatePublishedJobs(n int)         { m.publishedJobs.Set(float64(n)) }
func (m *Manager) RecordDependencyError(collaborator string) {
	m.dependencyErrs.WithLabelValues(collaborator).Inc()
}
func (m *Manager) RecordMappingCacheHits(n int)   { m.cacheHits.Add(float64(n)) }
func (m *Manager) RecordMappingCacheMisses(n int) { m.cacheMisses.Add(float64(n)) }
func (m *Manager) RecordMappingCacheRefresh(result string) {
	m.cacheRefresh.WithLabelValues(result).Inc()
}
func (m *Manager) RecordMappingCacheDegraded() { m.cacheDegraded.Inc() }

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) { m.systemMemoryUsage.Set(float64(bytes)) }
func (m *Manager) UpdateSystemGoroutineCount(n int)     { m.systemGoroutineCount.Set(float64(n)) }

// Totals sums counters and gauges on the registry by short metric name
// (namespace and subsystem stripped), folding labels together. Histograms
// report their sample count.
func (m *Manager) Totals() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrObserveFailed, err)
	}
	prefix := m.namespace + "_" + m.subsystem + "_"
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		name := strings.TrimPrefix(mf.GetName(), prefix)
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				out[name] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[name] += metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				out[name] += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}

// RecordMatchRequest increments the request counter for an outcome.
func RecordMatchRequest(outcome string) { globalManager.RecordMatchRequest(outcome) }

// RecordMatchDuration records one match call in milliseconds.
func RecordMatchDuration(ms float64) { globalManager.RecordMatchDuration(ms) }

// RecordJobsEvaluated adds n evaluated pairs.
func RecordJobsEvaluated(n int) { globalManager.RecordJobsEvaluated(n) }

// RecordJobExcluded counts a pair rejected at stage.
func RecordJobExcluded(stage string) { globalManager.RecordJobExcluded(stage) }

// RecordJobIncluded counts a pair that passed every gate.
func RecordJobIncluded() { globalManager.RecordJobIncluded() }

// RecordCoverageRatio observes a coverage ratio.
func RecordCoverageRatio(ratio float64) { globalManager.RecordCoverageRatio(ratio) }

// RecordMatchScore observes the total score of an included pair.
func RecordMatchScore(total float64) { globalManager.RecordMatchScore(total) }

// UpdatePublishedJobs sets the published catalog size.
func UpdatePublishedJobs(n int) { globalManager.UpdatePublishedJobs(n) }

// RecordDependencyError counts a failed collaborator load.
func RecordDependencyError(collaborator string) { globalManager.RecordDependencyError(collaborator) }

// RecordMappingCacheHits adds n cache hits.
func RecordMappingCacheHits(n int) { globalManager.RecordMappingCacheHits(n) }

// RecordMappingCacheMisses adds n cache misses.
func RecordMappingCacheMisses(n int) { globalManager.RecordMappingCacheMisses(n) }

// RecordMappingCacheRefresh counts a warm-up run.
func RecordMappingCacheRefresh(result string) { globalManager.RecordMappingCacheRefresh(result) }

// RecordMappingCacheDegraded counts a cache failure that fell back to the database.
func RecordMappingCacheDegraded() { globalManager.RecordMappingCacheDegraded() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, ms)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(n int) { globalManager.UpdateSystemGoroutineCount(n) }

// Totals reports the global manager's totals.
func Totals() (map[string]float64, error) { return globalManager.Totals() }

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
