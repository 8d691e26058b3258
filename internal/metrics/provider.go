package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model provider and recall engine Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdex",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paperdex",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdex",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"model"},
	)

	ExpansionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdex",
			Name:      "query_expansions_total",
			Help:      "Query expansion outcomes",
		},
		[]string{"status"}, // "success" / "malformed" / "error"
	)

	EmbeddingsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdex",
			Name:      "embeddings_generated_total",
			Help:      "Embeddings generated lazily during searches",
		},
		[]string{"kind"}, // "main" / "concept" / "generic"
	)

	RecallSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paperdex",
			Name:      "recall_search_duration_seconds",
			Help:      "End-to-end recall search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"profile"},
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers provider and recall metrics. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(ExpansionsTotal)
	prometheus.MustRegister(EmbeddingsGeneratedTotal)
	prometheus.MustRegister(RecallSearchDuration)
	providerMetricsRegistered = true
}
