// Package metrics provides Prometheus metrics for the touchgest daemon.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// actionLatencyBuckets covers shell commands from a few milliseconds up to
// the default action timeout.
var actionLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the daemon.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Recognition pipeline
	touchEvents    *prometheus.CounterVec
	gestures       *prometheus.CounterVec
	idleCycles     prometheus.Counter
	slotsDown      prometheus.Gauge
	gestureTravel  prometheus.Histogram
	ruleMatches    prometheus.Counter
	ruleMisses     prometheus.Counter
	rulesLoaded    prometheus.Gauge
	calibSamples   *prometheus.CounterVec
	calibRejected  prometheus.Counter
	calibStage     prometheus.Gauge
	calibCompleted prometheus.Counter

	// Action execution
	actionsExecuted prometheus.Counter
	actionsFailed   prometheus.Counter
	actionsDropped  prometheus.Counter
	actionLatency   prometheus.Histogram
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueUtil       prometheus.Gauge
	workerCount     prometheus.Gauge

	// HTTP status surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "touchgest",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
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
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.touchEvents = auto.NewCounterVec(m.counterOpts("touch_events_total", "Normalized touch events applied to the slot tracker"), []string{"kind"})
	m.gestures = auto.NewCounterVec(m.counterOpts("gestures_total", "Recognized gestures by type, direction and finger count"), []string{"type", "direction", "fingers"})
	m.idleCycles = auto.NewCounter(m.counterOpts("idle_cycles_total", "Classification cycles with no completed contact"))
	m.slotsDown = auto.NewGauge(m.gaugeOpts("slots_down", "Contacts currently on the panel"))
	m.gestureTravel = auto.NewHistogram(m.histogramOpts("gesture_travel_units", "Path length of single-finger gestures in device units", []float64{1, 5, 10, 20, 50, 100, 200, 500}))
	m.ruleMatches = auto.NewCounter(m.counterOpts("rule_matches_total", "Gestures that matched a configured rule"))
	m.ruleMisses = auto.NewCounter(m.counterOpts("rule_misses_total", "Gestures with no matching rule"))
	m.rulesLoaded = auto.NewGauge(m.gaugeOpts("rules_loaded", "Number of rules in the active rule set"))
	m.calibSamples = auto.NewCounterVec(m.counterOpts("calibration_samples_total", "Accepted calibration swipes by edge"), []string{"stage"})
	m.calibRejected = auto.NewCounter(m.counterOpts("calibration_rejected_total", "Calibration cycles rejected for using more than one finger"))
	m.calibStage = auto.NewGauge(m.gaugeOpts("calibration_stage", "Current calibration stage index (4 when finished)"))
	m.calibCompleted = auto.NewCounter(m.counterOpts("calibrations_completed_total", "Calibration sessions that produced bounds"))

	m.actionsExecuted = auto.NewCounter(m.counterOpts("actions_executed_total", "Action commands that exited successfully"))
	m.actionsFailed = auto.NewCounter(m.counterOpts("actions_failed_total", "Action commands that failed or timed out"))
	m.actionsDropped = auto.NewCounter(m.counterOpts("actions_dropped_total", "Actions dropped because the queue was full or closed"))
	m.actionLatency = auto.NewHistogram(m.histogramOpts("action_latency_milliseconds", "Action command run time in milliseconds", actionLatencyBuckets))
	m.queueSize = auto.NewGauge(m.gaugeOpts("action_queue_size", "Actions waiting for an executor"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("action_queue_capacity", "Maximum number of queued actions"))
	m.queueUtil = auto.NewGauge(m.gaugeOpts("action_queue_utilization_ratio", "Queued actions divided by capacity"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("executor_workers", "Number of action executor workers"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "Status server requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "Status server request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and error type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordTouchEvent counts one normalized touch event.
func RecordTouchEvent(kind string) {
	globalManager.touchEvents.WithLabelValues(kind).Inc()
}

// RecordGesture counts one recognized gesture.
func RecordGesture(gestureType, direction string, fingers int) {
	globalManager.gestures.WithLabelValues(gestureType, direction, strconv.Itoa(fingers)).Inc()
}

// RecordIdleCycle counts a cycle that drained nothing.
func RecordIdleCycle() {
	globalManager.idleCycles.Inc()
}

// UpdateSlotsDown sets the number of contacts on the panel.
func UpdateSlotsDown(n int) {
	globalManager.slotsDown.Set(float64(n))
}

// RecordGestureTravel observes the path length of a single-finger gesture.
func RecordGestureTravel(units float64) {
	globalManager.gestureTravel.Observe(units)
}

// RecordRuleMatch counts a gesture that matched a rule.
func RecordRuleMatch() {
	globalManager.ruleMatches.Inc()
}

// RecordRuleMiss counts a gesture without a rule.
func RecordRuleMiss() {
	globalManager.ruleMisses.Inc()
}

// UpdateRulesLoaded sets the size of the active rule set.
func UpdateRulesLoaded(n int) {
	globalManager.rulesLoaded.Set(float64(n))
}

// RecordCalibrationSample counts an accepted calibration swipe.
func RecordCalibrationSample(stage string) {
	globalManager.calibSamples.WithLabelValues(stage).Inc()
}

// RecordCalibrationRejected counts a multi-finger calibration cycle.
func RecordCalibrationRejected() {
	globalManager.calibRejected.Inc()
}

// UpdateCalibrationStage sets the current calibration stage index.
func UpdateCalibrationStage(stage int) {
	globalManager.calibStage.Set(float64(stage))
}

// RecordCalibrationCompleted counts a finished calibration session.
func RecordCalibrationCompleted() {
	globalManager.calibCompleted.Inc()
}

// RecordActionExecuted counts a successful action command.
func RecordActionExecuted() {
	globalManager.actionsExecuted.Inc()
}

// RecordActionFailed counts a failed action command.
func RecordActionFailed() {
	globalManager.actionsFailed.Inc()
}

// RecordActionDropped counts an action that never reached an executor.
func RecordActionDropped() {
	globalManager.actionsDropped.Inc()
}

// RecordActionLatency records action run time in milliseconds.
func RecordActionLatency(latencyMs float64) {
	globalManager.actionLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current action queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum action queue length.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the action queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtil.Set(utilization)
}

// UpdateWorkerCount sets the number of executor workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry the global metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
