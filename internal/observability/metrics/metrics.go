package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "restaurant_api_"

	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds the collectors for resolution-engine operations and
// outbound enrichment calls. A nil *Metrics is valid and records nothing.
type Metrics struct {
	operationTotal   *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec

	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "operations_total",
				Help: "Total resolution operations by operation and result code",
			},
			[]string{"operation", "result"},
		),
		operationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "operation_latency_seconds",
				Help:    "Resolution operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_requests_total",
				Help: "Total outbound enrichment requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upstream_latency_seconds",
				Help:    "Outbound enrichment request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.operationTotal, m.operationLatency,
			m.upstreamTotal, m.upstreamLatency,
			m.httpRequests, m.httpLatency,
		)
	}
	return m
}

// ObserveOperation records one engine operation. result is ResultSuccess or
// an error code.
func (m *Metrics) ObserveOperation(operation, result string, started time.Time) {
	if m == nil {
		return
	}
	m.operationTotal.WithLabelValues(operation, result).Inc()
	m.operationLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveUpstream(endpoint, result string, started time.Time) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(endpoint, result).Inc()
	m.upstreamLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveHTTP(route, method string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(time.Since(started).Seconds())
}
