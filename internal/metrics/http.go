package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(httpRequests, httpLatencyMs)
}

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendbot_http_requests_total",
			Help: "HTTP requests per route pattern, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendbot_http_request_duration_ms",
			Help:    "HTTP request latency distribution in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"route", "method"},
	)
)

// ObserveHTTP records one served request.
func ObserveHTTP(route, method string, status int, took time.Duration) {
	httpRequests.WithLabelValues(norm(route), method, strconv.Itoa(status)).Inc()
	httpLatencyMs.WithLabelValues(norm(route), method).Observe(float64(took.Milliseconds()))
}
