package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics holds the HTTP metrics of a service.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewServerMetrics creates and registers HTTP metrics on reg.
func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shareit",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shareit",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "route"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// BookingMetrics counts booking lifecycle outcomes.
type BookingMetrics struct {
	Transitions *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
}

// NewBookingMetrics creates and registers booking metrics on reg.
func NewBookingMetrics(reg prometheus.Registerer, service string) *BookingMetrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shareit",
		Subsystem: service,
		Name:      "booking_transitions_total",
		Help:      "Booking status changes by resulting status.",
	}, []string{"status"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shareit",
		Subsystem: service,
		Name:      "booking_failures_total",
		Help:      "Failed booking operations by operation and error code.",
	}, []string{"operation", "code"})

	reg.MustRegister(transitions, rejections)
	return &BookingMetrics{Transitions: transitions, Rejections: rejections}
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
