package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(replies, replyLatencyMs, preferenceUpdates, journalOps, authEvents)
}

var (
	replies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendbot_replies_total",
			Help: "Generated replies per generator, preference and outcome.",
		},
		[]string{"generator", "preference", "success"},
	)

	replyLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendbot_reply_latency_ms",
			Help:    "Reply generation latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 15000},
		},
		[]string{"generator"},
	)

	preferenceUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendbot_preference_updates_total",
			Help: "Friend preference changes per new value.",
		},
		[]string{"preference"},
	)

	journalOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendbot_journal_operations_total",
			Help: "Journal operations per kind.",
		},
		[]string{"op"},
	)

	authEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendbot_auth_events_total",
			Help: "Registrations and logins per outcome.",
		},
		[]string{"event", "success"},
	)
)

func ObserveReply(generator, preference string, took time.Duration, success bool) {
	replies.WithLabelValues(norm(generator), norm(preference), strconv.FormatBool(success)).Inc()
	replyLatencyMs.WithLabelValues(norm(generator)).Observe(float64(took.Milliseconds()))
}

func PreferenceUpdated(preference string) {
	preferenceUpdates.WithLabelValues(norm(preference)).Inc()
}

func JournalOp(op string) {
	journalOps.WithLabelValues(op).Inc()
}

func AuthEvent(event string, success bool) {
	authEvents.WithLabelValues(event, strconv.FormatBool(success)).Inc()
}
