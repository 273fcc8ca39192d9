package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query engine Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "queries_total",
			Help:      "Total number of item queries by execution path",
		},
		[]string{"path", "status"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "curator",
			Name:      "query_duration_seconds",
			Help:      "Item query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"path"},
	)

	QueryTruncationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "query_truncations_total",
			Help:      "Queries whose candidate fetch hit the fetch cap",
		},
	)

	CandidateSetSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "curator",
			Name:      "query_candidate_set_size",
			Help:      "Candidate set size fetched for in-memory queries",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTruncationsTotal)
	prometheus.MustRegister(CandidateSetSize)
	queryMetricsRegistered = true
}
