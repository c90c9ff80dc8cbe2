// Package metrics holds the Prometheus collectors of the service. They are
// registered on a private registry exposed by Handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webscout_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webscout_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	searchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webscout_search_total",
		Help: "Search calls by outcome",
	}, []string{"outcome"})

	searchResults = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webscout_search_results_total",
		Help: "Search results returned",
	})

	fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webscout_fetch_total",
		Help: "Fetch calls by outcome",
	}, []string{"outcome"})

	toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webscout_tool_calls_total",
		Help: "MCP tool calls by tool and status",
	}, []string{"tool", "status"})
)

func init() {
	registry.MustRegister(requestsTotal, requestDuration, searchTotal, searchResults, fetchTotal, toolCalls)
}

// RecordRequest increments the request counter and observes latency.
func RecordRequest(method, path string, status int, latency time.Duration) {
	requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, path).Observe(latency.Seconds())
}

// RecordSearch records a finished search. Outcome is "ok", "empty" or "error".
func RecordSearch(outcome string, results int) {
	searchTotal.WithLabelValues(outcome).Inc()
	if results > 0 {
		searchResults.Add(float64(results))
	}
}

// RecordFetch records a finished fetch. Outcome is "ok", "invalid" or "error".
func RecordFetch(outcome string) {
	fetchTotal.WithLabelValues(outcome).Inc()
}

// RecordToolCall records an MCP tool invocation.
func RecordToolCall(tool string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	toolCalls.WithLabelValues(tool, status).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
