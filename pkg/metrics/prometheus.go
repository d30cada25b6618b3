// Package metrics provides Prometheus metrics for the job changes service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline Metrics - one run per uncached report
	pipelineRuns     prometheus.Counter
	pipelineDuration prometheus.Histogram

	// Data Quality Metrics - shape of the loaded table
	recordsLoaded        prometheus.Gauge
	recordsNoEventTime   prometheus.Gauge
	recordsUnknownType   prometheus.Gauge
	sourceMissing        prometheus.Gauge
	columnsMissing       prometheus.Gauge
	loadDuration         prometheus.Histogram
	loadFailures         *prometheus.CounterVec
	reloads              *prometheus.CounterVec
	snapshotVersion      prometheus.Gauge
	snapshotLastLoadUnix prometheus.Gauge

	// Report Cache Metrics
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheEntries prometheus.Gauge

	// Reload Queue Metrics
	queueSize        prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueCoalesced   prometheus.Counter
	watcherEvents    prometheus.Counter
	workerProcessing prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jobchanges",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// NewMetricsManager is an alias of NewManager.
func NewMetricsManager(opts ...Option) *Manager {
	return NewManager(opts...)
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) counter(n, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(n),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(n, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(n),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(n, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(n),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(n, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(n),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.pipelineRuns = m.counter("runs_total", "Total number of pipeline runs (uncached reports)")
	m.pipelineDuration = m.histogram("run_duration_milliseconds", "Histogram of pipeline run duration in milliseconds")

	m.recordsLoaded = m.gauge("records_loaded", "Number of records in the current snapshot")
	m.recordsNoEventTime = m.gauge("records_without_event_time", "Records in the current snapshot whose event time could not be resolved")
	m.recordsUnknownType = m.gauge("records_unknown_type", "Records in the current snapshot with an absent or unrecognized type")
	m.sourceMissing = m.gauge("source_missing", "1 when the configured data file was not found")
	m.columnsMissing = m.gauge("columns_missing", "Number of expected columns absent from the source")
	m.loadDuration = m.histogram("load_duration_milliseconds", "Histogram of data file load duration in milliseconds")
	m.loadFailures = m.counterVec("load_failures_total", "Total number of failed loads by reason", "reason")
	m.reloads = m.counterVec("reloads_total", "Total number of reloads by trigger", "reason")
	m.snapshotVersion = m.gauge("snapshot_version", "Version counter of the current snapshot")
	m.snapshotLastLoadUnix = m.gauge("snapshot_last_load_unix", "Unix timestamp of the last successful load")

	m.cacheHits = m.counter("report_cache_hits_total", "Total number of report cache hits")
	m.cacheMisses = m.counter("report_cache_misses_total", "Total number of report cache misses")
	m.cacheEntries = m.gauge("report_cache_entries", "Number of cached reports for the current snapshot")

	m.queueSize = m.gauge("reload_queue_size", "Pending reload requests (0 or 1)")
	m.queueEnqueued = m.counter("reload_queue_enqueued_total", "Total number of reload requests accepted")
	m.queueCoalesced = m.counter("reload_queue_coalesced_total", "Total number of reload requests merged into a pending one")
	m.watcherEvents = m.counter("watcher_events_total", "Total number of relevant file system events observed")
	m.workerProcessing = m.histogram("reload_processing_milliseconds", "Histogram of reload processing latency in milliseconds")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and error type",
		"component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and error type",
		"endpoint", "method", "error_type")
}

// Pipeline Metrics Functions.

// RecordPipelineRun increments the run counter and records its duration.
func RecordPipelineRun(d time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.pipelineRuns.Inc()
	globalManager.pipelineDuration.Observe(float64(d.Microseconds()) / 1000)
}

// Data Quality Metrics Functions.

// UpdateRecordsLoaded sets the number of loaded records.
func UpdateRecordsLoaded(count int) {
	globalManager.recordsLoaded.Set(float64(count))
}

// UpdateRecordsWithoutEventTime sets the number of records lacking an event time.
func UpdateRecordsWithoutEventTime(count int) {
	globalManager.recordsNoEventTime.Set(float64(count))
}

// UpdateRecordsUnknownType sets the number of records with an absent or unknown type.
func UpdateRecordsUnknownType(count int) {
	globalManager.recordsUnknownType.Set(float64(count))
}

// UpdateSourceMissing flags whether the data file was found.
func UpdateSourceMissing(missing bool) {
	v := 0.0
	if missing {
		v = 1
	}
	globalManager.sourceMissing.Set(v)
}

// UpdateColumnsMissing sets the number of expected columns absent from the source.
func UpdateColumnsMissing(count int) {
	globalManager.columnsMissing.Set(float64(count))
}

// RecordLoadDuration records a data file load duration.
func RecordLoadDuration(d time.Duration) {
	globalManager.loadDuration.Observe(float64(d.Microseconds()) / 1000)
}

// RecordLoadFailure increments the load failure counter for reason.
func RecordLoadFailure(reason string) {
	globalManager.loadFailures.WithLabelValues(reason).Inc()
}

// RecordReload increments the reload counter for reason.
func RecordReload(reason string) {
	globalManager.reloads.WithLabelValues(reason).Inc()
}

// UpdateSnapshot records the version and load time of the current snapshot.
func UpdateSnapshot(version uint64, loadedAt time.Time) {
	globalManager.snapshotVersion.Set(float64(version))
	globalManager.snapshotLastLoadUnix.Set(float64(loadedAt.Unix()))
}

// Report Cache Metrics Functions.

// RecordCacheHit increments the report cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the report cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateCacheEntries sets the number of cached reports.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// Reload Queue Metrics Functions.

// UpdateQueueSize sets the number of pending reload requests.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the accepted reload request counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueCoalesced increments the coalesced reload request counter.
func RecordQueueCoalesced() {
	globalManager.queueCoalesced.Inc()
}

// RecordWatcherEvent increments the file system event counter.
func RecordWatcherEvent() {
	globalManager.watcherEvents.Inc()
}

// RecordWorkerProcessingLatency records reload processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessing.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
