package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "propdesk", Name: "http_requests_total", Help: "Number of HTTP requests by method and status."},
		[]string{"method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "propdesk", Name: "http_request_duration_seconds", Help: "HTTP request latency by method.", Buckets: prometheus.DefBuckets},
		[]string{"method"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "propdesk", Name: "login_attempts_total", Help: "Number of login attempts by outcome."},
		[]string{"outcome"},
	)
	UploadsStored = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "propdesk", Name: "uploads_stored_total", Help: "Number of uploaded files written to the document store."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(UploadsStored)
}
