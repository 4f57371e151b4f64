package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	overdue         prometheus.Gauge
	overdueAmount   prometheus.Gauge
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "societyhub_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "societyhub_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "societyhub_vendor_payment_transitions_total",
		Help: "Vendor payment status transitions by source and target status.",
	}, []string{"from", "to"})
	overdue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "societyhub_vendor_payments_overdue",
		Help: "Vendor payments past due at the last overdue scan.",
	})
	overdueAmount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "societyhub_vendor_payments_overdue_amount",
		Help: "Net amount of vendor payments past due at the last overdue scan.",
	})
	registry.MustRegister(requests, duration, transitions, overdue, overdueAmount)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		transitions:     transitions,
		overdue:         overdue,
		overdueAmount:   overdueAmount,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer exposes the registry so other packages can publish collectors on /metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return nil
	}
	return m.registry
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObservePaymentTransition counts a committed status change.
func (m *Metrics) ObservePaymentTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// SetOverdue publishes the result of an overdue scan.
func (m *Metrics) SetOverdue(count int, amount float64) {
	if m == nil {
		return
	}
	m.overdue.Set(float64(count))
	m.overdueAmount.Set(amount)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
