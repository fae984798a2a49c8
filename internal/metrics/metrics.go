package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// assistant_dispatch_outcomes_total{outcome=ANSWERED|STORE_UNAVAILABLE|PERMISSION_DENIED|...}
	DispatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_dispatch_outcomes_total",
		Help: "Personal data requests by terminal outcome",
	}, []string{"outcome"})

	// assistant_router_latency_seconds (histogram): intent classification duration
	RouterLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "assistant_router_latency_seconds",
		Help:    "Latency of the intent classification call in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// assistant_tool_calls_total{tool=get_user_specific_data|...}
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_tool_calls_total",
		Help: "Number of tool invocations made by the chat agent",
	}, []string{"tool"})

	// assistant_http_requests_total{method,status}
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_http_requests_total",
		Help: "HTTP requests served, by method and status code",
	}, []string{"method", "status"})
)

// RecordOutcome increments the dispatch outcome counter.
func RecordOutcome(outcome string) {
	DispatchOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveRouterLatency records how long one classification call took.
func ObserveRouterLatency(d time.Duration) {
	RouterLatency.Observe(d.Seconds())
}

// RecordToolCall increments the tool invocation counter.
func RecordToolCall(tool string) {
	ToolCalls.WithLabelValues(tool).Inc()
}

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(method string, status int) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
