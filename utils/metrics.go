package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MetricDatasetRowsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datalab",
			Name:      "dataset_rows_inserted_total",
			Help:      "Rows written to datasets, by origin of the rows",
		},
		[]string{"origin"},
	)

	MetricComparisonLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datalab",
			Name:      "comparison_duration_seconds",
			Help:      "Time to resolve and compare two scenarios",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	MetricProjectedColumns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datalab",
			Name:      "projection_columns_total",
			Help:      "Columns handed to the forecaster, by outcome",
		},
		[]string{"outcome"},
	)

	MetricProjectionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datalab",
			Name:      "projection_duration_seconds",
			Help:      "Time to fit and extend every column of a projection",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)

	MetricCsvCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datalab",
			Name:      "csv_cache_lookups_total",
			Help:      "Csv reads served from the cache or from the file",
		},
		[]string{"result"},
	)
)
