// Package metrics provides Prometheus metrics for the skillmatch recommendation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the skillmatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Core Business Metrics
	recommendations       prometheus.Counter
	recommendationLatency prometheus.Histogram
	employeesScored       prometheus.Counter
	scoringErrors         prometheus.Counter
	predictorErrors       *prometheus.CounterVec
	teamFallbacks         prometheus.Counter

	// Model and profile state
	profilesLoaded      prometheus.Gauge
	ensembleSize        prometheus.Gauge
	profileLoadDuration prometheus.Histogram
	profileLoadLastUnix prometheus.Gauge

	// Job Metrics
	jobsSubmitted prometheus.Counter
	jobsDuplicate prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	amqpMessages  *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue Metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "skillmatch",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
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

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.recommendations = auto.NewCounter(m.counterOpts(
		"recommendations_total", "Total number of recommendation requests served"))
	m.recommendationLatency = auto.NewHistogram(m.histogramOpts(
		"recommendation_latency_milliseconds", "Histogram of end-to-end ranking latency in milliseconds"))
	m.employeesScored = auto.NewCounter(m.counterOpts(
		"employees_scored_total", "Total number of employee scores computed"))
	m.scoringErrors = auto.NewCounter(m.counterOpts(
		"scoring_errors_total", "Total number of recommendation requests failed by a scoring error"))
	m.predictorErrors = auto.NewCounterVec(m.counterOpts(
		"predictor_errors_total", "Total number of predictor failures by predictor"),
		[]string{"predictor"})
	m.teamFallbacks = auto.NewCounter(m.counterOpts(
		"team_fallbacks_total", "Total number of team labels encoded with the fallback code"))

	// Model and profile state
	m.profilesLoaded = auto.NewGauge(m.gaugeOpts(
		"profiles_loaded", "Number of employee profiles in the active snapshot"))
	m.ensembleSize = auto.NewGauge(m.gaugeOpts(
		"ensemble_size", "Number of predictors in the active ensemble"))
	m.profileLoadDuration = auto.NewHistogram(m.histogramOpts(
		"profile_load_duration_milliseconds", "Profile snapshot load duration in milliseconds"))
	m.profileLoadLastUnix = auto.NewGauge(m.gaugeOpts(
		"profile_load_last_unix", "Unix timestamp of the last profile snapshot load"))

	// Job Metrics
	m.jobsSubmitted = auto.NewCounter(m.counterOpts(
		"jobs_submitted_total", "Total number of asynchronous recommendation jobs accepted"))
	m.jobsDuplicate = auto.NewCounter(m.counterOpts(
		"jobs_duplicate_total", "Total number of job submissions that reused an existing job id"))
	m.jobsCompleted = auto.NewCounter(m.counterOpts(
		"jobs_completed_total", "Total number of jobs finished successfully"))
	m.jobsFailed = auto.NewCounter(m.counterOpts(
		"jobs_failed_total", "Total number of jobs finished with an error"))
	m.amqpMessages = auto.NewCounterVec(m.counterOpts(
		"amqp_messages_total", "Total number of broker messages by outcome"),
		[]string{"outcome"})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	// Queue Metrics
	m.queueSize = auto.NewGauge(m.gaugeOpts(
		"queue_size", "Current size of the job queue (backlog indicator)"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts(
		"queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts(
		"queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts(
		"queue_enqueue_total", "Total number of jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts(
		"queue_dequeue_total", "Total number of jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts(
		"queue_enqueue_errors_total", "Total number of enqueue errors"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogramOpts(
		"queue_processing_latency_milliseconds", "Queue processing latency in milliseconds"))

	// Worker Metrics
	m.workerCount = auto.NewGauge(m.gaugeOpts(
		"worker_count", "Configured number of job workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts(
		"worker_active_count", "Number of workers currently processing a job"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts(
		"worker_processing_latency_milliseconds", "Worker job processing latency in milliseconds"))
	m.workerErrorRate = auto.NewCounter(m.counterOpts(
		"worker_errors_total", "Total number of worker errors"))

	// Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts(
		"errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts(
		"errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts(
		"error_latency_milliseconds", "Latency of operations that resulted in errors"),
		[]string{"component", "error_type"})

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count", "Number of goroutines"))
	gcOpts := m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds")
	gcOpts.Buckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	m.systemGCPauseTime = auto.NewHistogram(gcOpts)
}

// RecordRecommendation increments the served recommendations counter.
func RecordRecommendation() {
	globalManager.recommendations.Inc()
}

// RecordRecommendationLatency records ranking latency in milliseconds.
func RecordRecommendationLatency(latencyMs float64) {
	globalManager.recommendationLatency.Observe(latencyMs)
}

// RecordEmployeesScored adds n computed employee scores.
func RecordEmployeesScored(n int) {
	globalManager.employeesScored.Add(float64(n))
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordPredictorError increments the failure counter of one predictor.
func RecordPredictorError(predictor string) {
	globalManager.predictorErrors.WithLabelValues(predictor).Inc()
}

// RecordTeamFallback increments the fallback encoding counter.
func RecordTeamFallback() {
	globalManager.teamFallbacks.Inc()
}

// UpdateProfilesLoaded sets the number of profiles in the active snapshot.
func UpdateProfilesLoaded(count int) {
	globalManager.profilesLoaded.Set(float64(count))
}

// UpdateEnsembleSize sets the number of predictors in the active ensemble.
func UpdateEnsembleSize(count int) {
	globalManager.ensembleSize.Set(float64(count))
}

// RecordProfileLoad records a profile snapshot load and its duration.
func RecordProfileLoad(durationMs float64, unix int64) {
	globalManager.profileLoadDuration.Observe(durationMs)
	globalManager.profileLoadLastUnix.Set(float64(unix))
}

// RecordJobSubmitted increments the accepted jobs counter.
func RecordJobSubmitted() {
	globalManager.jobsSubmitted.Inc()
}

// RecordJobDuplicate increments the duplicate job submissions counter.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// RecordJobCompleted increments the completed jobs counter.
func RecordJobCompleted() {
	globalManager.jobsCompleted.Inc()
}

// RecordJobFailed increments the failed jobs counter.
func RecordJobFailed() {
	globalManager.jobsFailed.Inc()
}

// RecordAMQPMessage counts a broker message by outcome (accepted, requeued, rejected).
func RecordAMQPMessage(outcome string) {
	globalManager.amqpMessages.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
