// Package metrics provides Prometheus metrics for the laurel readiness engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Analysis
	analyses        *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec
	criteriaMatched *prometheus.CounterVec
	batchItems      prometheus.Counter
	batchDuration   prometheus.Histogram
	batchCancelled  prometheus.Counter

	// Checklist state
	stateTransitions *prometheus.CounterVec
	storeLatency     *prometheus.HistogramVec
	storeConflicts   prometheus.Counter
	storeRecords     prometheus.Gauge

	// Readiness
	readinessRate *prometheus.GaugeVec
	awardsReady   prometheus.Gauge

	// Queue
	queueDepth         prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueDuplicates    prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // private registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "laurel",
		subsystem:        "readiness",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval reports how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.analyses = m.counterVec("analyses_total", "Content analyses by mode and outcome", "mode", "outcome")
	m.analysisLatency = m.histogramVec("analysis_latency_milliseconds", "Analysis latency in milliseconds", "mode")
	m.criteriaMatched = m.counterVec("criteria_matched_total", "Content-to-criterion matches at or above the threshold", "award")
	m.batchItems = m.counter("batch_items_total", "Content items processed by batch analysis")
	m.batchDuration = m.histogram("batch_duration_milliseconds", "Whole-corpus analysis duration in milliseconds")
	m.batchCancelled = m.counter("batch_cancelled_total", "Batch analyses stopped by cancellation")

	m.stateTransitions = m.counterVec("criterion_transitions_total", "Checklist state changes by kind", "award", "transition")
	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Checklist store operation latency in milliseconds", "op")
	m.storeConflicts = m.counter("store_conflicts_total", "Concurrent write conflicts detected and retried by the store")
	m.storeRecords = m.gauge("store_records", "Materialized criterion state records")

	m.readinessRate = m.gaugeVec("award_rate", "Satisfied criteria ratio per award", "award")
	m.awardsReady = m.gauge("awards_ready", "Awards classified as ready to apply")

	m.queueDepth = m.gauge("queue_depth", "Pending asynchronous analysis requests")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the analysis request queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Analysis requests enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Analysis requests dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Analysis requests rejected by a full or closed queue")
	m.queueDuplicates = m.counter("queue_duplicates_total", "Analysis submissions collapsed into a pending request")

	m.workerCount = m.gauge("worker_count", "Running analysis workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker request processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Failed asynchronous analyses")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_seconds", "HTTP request duration in seconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and kind", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordAnalysis counts one analysis and observes its latency.
func RecordAnalysis(mode, outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.analyses.WithLabelValues(mode, outcome).Inc()
	globalManager.analysisLatency.WithLabelValues(mode).Observe(latencyMs)
}

// RecordCriterionMatched counts a qualifying match for an award's criterion.
func RecordCriterionMatched(award string) {
	if !globalManager.enabled {
		return
	}
	globalManager.criteriaMatched.WithLabelValues(award).Inc()
}

// RecordBatch records a completed or cancelled whole-corpus pass.
func RecordBatch(items int, durationMs float64, cancelled bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.batchItems.Add(float64(items))
	globalManager.batchDuration.Observe(durationMs)
	if cancelled {
		globalManager.batchCancelled.Inc()
	}
}

// RecordCriterionTransition counts a state change such as "satisfied" or "override_set".
func RecordCriterionTransition(award, transition string) {
	if !globalManager.enabled {
		return
	}
	globalManager.stateTransitions.WithLabelValues(award, transition).Inc()
}

// RecordStoreLatency observes a store operation latency.
func RecordStoreLatency(op string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreConflict counts a detected write conflict.
func RecordStoreConflict() {
	if !globalManager.enabled {
		return
	}
	globalManager.storeConflicts.Inc()
}

// UpdateStoreRecords sets the number of materialized records.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// UpdateAwardRate sets the readiness rate of an award.
func UpdateAwardRate(award string, rate float64) {
	globalManager.readinessRate.WithLabelValues(award).Set(rate)
}

// UpdateAwardsReady sets the number of awards ready to apply.
func UpdateAwardsReady(count int) {
	globalManager.awardsReady.Set(float64(count))
}

// UpdateQueueDepth sets the current queue depth.
func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueDuplicate counts a submission collapsed by the dedupe window.
func RecordQueueDuplicate() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueDuplicates.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if !globalManager.enabled {
		return
	}
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RefreshInterval reports the refresh interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
