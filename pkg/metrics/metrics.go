// Package metrics holds the Prometheus instruments for conversions and the
// HTTP service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Conversion metrics
	conversionsTotal   *prometheus.CounterVec
	conversionDuration prometheus.Histogram
	recordsWritten     *prometheus.CounterVec
	bytesWritten       prometheus.Counter
	devicesTotal       prometheus.Counter
	measurementsTotal  prometheus.Counter

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec
}

// New creates the metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		conversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv2stdf_conversions_total",
				Help: "Total number of conversions",
			},
			[]string{"status"},
		),

		conversionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "csv2stdf_conversion_duration_seconds",
				Help:    "Conversion duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		recordsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv2stdf_records_written_total",
				Help: "Total number of STDF records written",
			},
			[]string{"record"},
		),

		bytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "csv2stdf_bytes_written_total",
				Help: "Total number of STDF bytes written",
			},
		),

		devicesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "csv2stdf_devices_total",
				Help: "Total number of devices converted",
			},
		),

		measurementsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "csv2stdf_measurements_total",
				Help: "Total number of measurements converted",
			},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv2stdf_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "csv2stdf_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "csv2stdf_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv2stdf_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordConversion records a finished conversion
func (m *Metrics) RecordConversion(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.conversionsTotal.WithLabelValues(status(success)).Inc()
	m.conversionDuration.Observe(duration.Seconds())
}

// RecordRecord records one written STDF record of the given type
func (m *Metrics) RecordRecord(name string, size int) {
	if m == nil {
		return
	}
	m.recordsWritten.WithLabelValues(name).Inc()
	m.bytesWritten.Add(float64(size))
}

// RecordLot records the device and measurement counts of a converted lot
func (m *Metrics) RecordLot(devices, measurements int) {
	if m == nil {
		return
	}
	m.devicesTotal.Add(float64(devices))
	m.measurementsTotal.Add(float64(measurements))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	if m == nil {
		return
	}
	m.authRequestsTotal.WithLabelValues(status(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Record request in flight
		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Create response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// WriteTextfile writes every metric to path in the text exposition format,
// for the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func status(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
