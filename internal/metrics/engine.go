package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search and indexing Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of searches by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	SearchDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_degraded_total",
			Help:      "Searches whose semantic branch was dropped because the query embedding failed",
		},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10},
		},
		[]string{"mode"},
	)

	SearchCandidatesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_candidates_skipped_total",
			Help:      "Stored vectors skipped during the similarity scan",
		},
		[]string{"reason"},
	)

	DocumentsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Total number of indexing attempts by outcome",
		},
		[]string{"source", "status"},
	)

	IndexTerms = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_terms",
			Help:      "Distinct terms written per indexed document",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	IngestMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_messages_total",
			Help:      "Kafka index events by outcome",
		},
		[]string{"outcome"},
	)

	IndexDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_duration_seconds",
			Help:      "Time to index one document",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var registerEngine sync.Once

// RegisterEngineMetrics registers search and indexing metrics with the
// default registry. Safe to call more than once.
func RegisterEngineMetrics() {
	registerEngine.Do(func() {
		prometheus.MustRegister(
			SearchRequestsTotal,
			SearchDegradedTotal,
			SearchResults,
			SearchCandidatesSkippedTotal,
			DocumentsIndexedTotal,
			IndexTerms,
			IndexDuration,
			IngestMessagesTotal,
		)
	})
}
