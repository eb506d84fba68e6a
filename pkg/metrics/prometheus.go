// Package metrics provides Prometheus metrics for the transcript API client.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error kinds used as the "kind" label of request_errors_total.
const (
	ErrorKindStatus    = "status"
	ErrorKindTransport = "transport"
	ErrorKindBuild     = "build"
)

// Probe outcomes used as the "result" label of probe_calls_total.
const (
	ProbeResultSuccess = "success"
	ProbeResultFailure = "failure"
)

const millisecondsPerSecond = 1000

// Manager manages all Prometheus metrics for the API client.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Request metrics, one series per client operation.
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	inFlight        prometheus.Gauge

	// Probe metrics
	probeCalls    *prometheus.CounterVec
	probeWorkers  prometheus.Gauge
	probeDuration prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "transcript",
		subsystem:        "client",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.requests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("requests_total"),
			Help:        "Total number of API requests by operation, method and status code",
			ConstLabels: constLabels,
		},
		[]string{"operation", "method", "status_code"},
	)

	m.requestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("request_duration_milliseconds"),
			Help:        "API request round trip duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"operation", "method"},
	)

	m.requestErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("request_errors_total"),
			Help:        "Total number of failed API requests by operation and error kind",
			ConstLabels: constLabels,
		},
		[]string{"operation", "kind"},
	)

	m.inFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("requests_in_flight"),
		Help:        "Number of API requests currently awaiting a response",
		ConstLabels: constLabels,
	})

	m.probeCalls = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("probe_calls_total"),
			Help:        "Total number of probe calls by result",
			ConstLabels: constLabels,
		},
		[]string{"result"},
	)

	m.probeWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("probe_workers"),
		Help:        "Number of workers used by the last probe run",
		ConstLabels: constLabels,
	})

	m.probeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("probe_run_duration_milliseconds"),
		Help:        "Wall clock duration of probe runs in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})
}

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

// RequestStarted marks a request as in flight. The returned func must be
// called exactly once when the request completes.
func (m *Manager) RequestStarted() func() {
	if !m.Enabled() {
		return func() {}
	}
	m.inFlight.Inc()
	return m.inFlight.Dec
}

// ObserveRequest records a completed round trip. statusCode is 0 when no
// response was received.
func (m *Manager) ObserveRequest(operation, method string, statusCode int, took time.Duration) {
	if !m.Enabled() {
		return
	}
	m.requests.WithLabelValues(operation, method, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(operation, method).Observe(toMillis(took))
}

// RecordRequestError increments the error counter for operation and kind.
func (m *Manager) RecordRequestError(operation, kind string) {
	if !m.Enabled() {
		return
	}
	m.requestErrors.WithLabelValues(operation, kind).Inc()
}

// RecordProbeCall counts a single probe call outcome.
func (m *Manager) RecordProbeCall(result string) {
	if !m.Enabled() {
		return
	}
	m.probeCalls.WithLabelValues(result).Inc()
}

// ObserveProbeRun records the worker count and duration of a probe run.
func (m *Manager) ObserveProbeRun(workers int, took time.Duration) {
	if !m.Enabled() {
		return
	}
	m.probeWorkers.Set(float64(workers))
	m.probeDuration.Observe(toMillis(took))
}

func toMillis(d time.Duration) float64 {
	return d.Seconds() * millisecondsPerSecond
}

// Default returns the global metrics manager.
func Default() *Manager {
	return globalManager
}

// RecordRequest records a request on the global manager.
func RecordRequest(operation, method string, statusCode int, took time.Duration) {
	globalManager.ObserveRequest(operation, method, statusCode, took)
}

// RecordRequestError records a request error on the global manager.
func RecordRequestError(operation, kind string) {
	globalManager.RecordRequestError(operation, kind)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteToFile writes the current state of the custom registry in the text
// exposition format.
func WriteToFile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return errors.Join(ErrExport, err)
	}
	return nil
}
