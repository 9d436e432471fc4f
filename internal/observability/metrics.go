package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	backendRequestsTotal  *prometheus.CounterVec
	backendLatencySeconds *prometheus.HistogramVec
	viewRefreshesTotal    *prometheus.CounterVec
	viewRefreshSeconds    *prometheus.HistogramVec
	sessionEventsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the dashboard shell.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_requests_total",
			Help: "Total number of dashboard shell requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_latency_seconds",
			Help:    "Latency distribution for dashboard shell requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_errors_total",
			Help: "Total number of error responses returned by the dashboard shell.",
		}, []string{"method", "route", "status"})

		backendRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of calls made to the analytics backend.",
		}, []string{"endpoint", "status"})

		backendLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency distribution for analytics backend calls.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"endpoint"})

		viewRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_view_refreshes_total",
			Help: "Dashboard view refreshes by outcome.",
		}, []string{"view", "outcome"})

		viewRefreshSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_view_refresh_seconds",
			Help:    "Time taken by dashboard view refreshes.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"view"})

		sessionEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_session_events_total",
			Help: "Session starts and ends.",
		}, []string{"event"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			backendRequestsTotal, backendLatencySeconds,
			viewRefreshesTotal, viewRefreshSeconds,
			sessionEventsTotal,
		)
	})
}

// HTTPRequests exposes the counter for shell requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for shell requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for shell error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SessionEvents exposes the session event counter.
func SessionEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return sessionEventsTotal
}

// Recorder satisfies the backend client and view observer hooks.
type Recorder struct{}

// NewRecorder registers the collectors and returns a Recorder.
func NewRecorder() Recorder {
	RegisterMetrics()
	return Recorder{}
}

// ObserveBackendRequest records one backend call. status 0 means no response.
func (Recorder) ObserveBackendRequest(endpoint string, status int, duration time.Duration) {
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	backendRequestsTotal.WithLabelValues(endpoint, statusLabel).Inc()
	backendLatencySeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveViewRefresh records how one view refresh ended.
func (Recorder) ObserveViewRefresh(view, outcome string, duration time.Duration) {
	viewRefreshesTotal.WithLabelValues(view, outcome).Inc()
	viewRefreshSeconds.WithLabelValues(view).Observe(duration.Seconds())
}

// ObserveSessionEvent counts a session transition such as "login" or "logout".
func (Recorder) ObserveSessionEvent(event string) {
	sessionEventsTotal.WithLabelValues(event).Inc()
}
