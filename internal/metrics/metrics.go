package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FiltersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "towerdash_filters_total",
			Help: "Filter requests by outcome (ok, empty, truncated, invalid)",
		},
		[]string{"outcome"},
	)

	DocumentsRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "towerdash_documents_rendered_total",
			Help: "Total PDF documents rendered",
		},
	)

	DocumentBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "towerdash_document_bytes",
			Help:    "Size of rendered PDF documents in bytes",
			Buckets: prometheus.ExponentialBuckets(2048, 2, 10),
		},
	)

	RecordsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "towerdash_records_loaded_total",
			Help: "Tower records loaded from a source",
		},
		[]string{"source"},
	)

	SourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "towerdash_source_errors_total",
			Help: "Failed loads from a source",
		},
		[]string{"source"},
	)

	NarrativesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "towerdash_narratives_total",
			Help: "Narratives produced by mode (static, openai, fallback, cached)",
		},
		[]string{"mode"},
	)
)
