// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fairway"

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messages",
			Name:      "delivered_total",
			Help:      "Messages handed to a provider, by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	dispatchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "runs_total",
			Help:      "Scheduled dispatch runs by result.",
		},
		[]string{"result"},
	)

	dispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "run_duration_seconds",
			Help:      "Duration of scheduled dispatch runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	aiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Generation requests by kind and status.",
		},
		[]string{"kind", "status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		messages,
		dispatchRuns,
		dispatchDuration,
		aiRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func IncInFlight() { httpInFlight.Inc() }
func DecInFlight() { httpInFlight.Dec() }

// ObserveHTTP records one finished request. path should be the route template.
func ObserveHTTP(method, path string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordMessages counts delivered and failed messages for a channel.
func RecordMessages(channel string, success, fail int) {
	if success > 0 {
		messages.WithLabelValues(channel, "success").Add(float64(success))
	}
	if fail > 0 {
		messages.WithLabelValues(channel, "failure").Add(float64(fail))
	}
}

// RecordDispatch records a scheduled run.
func RecordDispatch(err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	dispatchRuns.WithLabelValues(result).Inc()
	dispatchDuration.Observe(d.Seconds())
}

// RecordAI counts a generation request.
func RecordAI(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	aiRequests.WithLabelValues(kind, status).Inc()
}
