package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	queriesTotal          *prometheus.CounterVec
	accessDeniedTotal     *prometheus.CounterVec
	retrievalFailureCount prometheus.Counter
	groundingMissCount    prometheus.Counter
	chatConnectionsTotal  prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the chatbot.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatbot_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chatbot_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatbot_http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatbot_queries_total",
			Help: "Questions processed, labelled by classified intent.",
		}, []string{"intent"})

		accessDeniedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatbot_access_denied_total",
			Help: "Questions refused by the access policy, labelled by caller role.",
		}, []string{"role"})

		retrievalFailureCount = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatbot_retrieval_failures_total",
			Help: "Document index calls that failed or timed out.",
		})

		groundingMissCount = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatbot_grounding_misses_total",
			Help: "Answers refused because no grounding context was retrieved.",
		})

		chatConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatbot_ws_connections_total",
			Help: "Websocket chat connections accepted.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			queriesTotal,
			accessDeniedTotal,
			retrievalFailureCount,
			groundingMissCount,
			chatConnectionsTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Queries exposes the per-intent question counter.
func Queries() *prometheus.CounterVec {
	RegisterMetrics()
	return queriesTotal
}

// AccessDenied exposes the per-role refusal counter.
func AccessDenied() *prometheus.CounterVec {
	RegisterMetrics()
	return accessDeniedTotal
}

// RetrievalFailures exposes the retrieval failure counter.
func RetrievalFailures() prometheus.Counter {
	RegisterMetrics()
	return retrievalFailureCount
}

// GroundingMisses exposes the empty-grounding counter.
func GroundingMisses() prometheus.Counter {
	RegisterMetrics()
	return groundingMissCount
}

// ChatConnections exposes the websocket connection counter.
func ChatConnections() prometheus.Counter {
	RegisterMetrics()
	return chatConnectionsTotal
}

// MetricsHandler serves the Prometheus scrape endpoint. Collectors are
// registered here so /metrics is complete even before the first question.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
