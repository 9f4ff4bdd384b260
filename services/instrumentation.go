package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// datasetLoads counts loader calls by result: hit, miss or error.
	datasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_dataset_loads_total",
		Help: "Dataset loader calls by cache result",
	}, []string{"result"})

	// cleanedRows reports the size of the most recently cleaned table.
	cleanedRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_cleaned_rows",
		Help: "Rows in the most recently cleaned table",
	})

	// pipelineRuns counts dashboard recomputations by outcome.
	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_pipeline_runs_total",
		Help: "Dashboard pipeline runs by outcome",
	}, []string{"outcome"})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_pipeline_duration_seconds",
		Help:    "Filter, aggregate and persona selection time in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	undefinedDistances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_undefined_distances_total",
		Help: "Filtered rows whose distance to the reference point was undefined",
	})
)

const (
	outcomeOK           = "ok"
	outcomeNoMatches    = "no_matches"
	outcomeEmptyDataset = "empty_dataset"
	outcomeError        = "error"
)
