package http

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourbook",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "pattern", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tourbook",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "pattern"})

	sessionRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tourbook",
		Subsystem: "auth",
		Name:      "session_rejections_total",
		Help:      "Requests rejected because the session token was stale or invalid.",
	})
)

func observeRequest(method, pattern string, status int, seconds float64) {
	requestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, pattern).Observe(seconds)
}
