package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the service's Prometheus metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	paymentsRecorded *prometheus.CounterVec
	amountCollected  prometheus.Counter
	periodsClosed    prometheus.Counter
	loansIssued      prometheus.Counter
}

// New creates a registry with the HTTP and business metrics registered
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shg_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shg_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shg_payments_recorded_total",
		Help: "Contribution payments recorded by resulting status.",
	}, []string{"status"})
	collected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shg_amount_collected_total",
		Help: "Sum of amounts collected in closed periods.",
	})
	closed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shg_periods_closed_total",
		Help: "Periods closed.",
	})
	loans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shg_loans_issued_total",
		Help: "Loans issued to members.",
	})

	registry.MustRegister(requests, duration, payments, collected, closed, loans)

	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		paymentsRecorded: payments,
		amountCollected:  collected,
		periodsClosed:    closed,
		loansIssued:      loans,
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware counts and times every request by its route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// PaymentRecorded counts a payment submission
func (m *Metrics) PaymentRecorded(status string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(status).Inc()
}

// PeriodClosed counts a close and the amount it collected
func (m *Metrics) PeriodClosed(collected float64) {
	if m == nil {
		return
	}
	m.periodsClosed.Inc()
	if collected > 0 {
		m.amountCollected.Add(collected)
	}
}

// LoanIssued counts a new loan
func (m *Metrics) LoanIssued() {
	if m == nil {
		return
	}
	m.loansIssued.Inc()
}

// Registerer exposes the registry for additional collectors
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
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
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unknown"
}
