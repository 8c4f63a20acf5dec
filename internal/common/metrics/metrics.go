// Package metrics exposes Prometheus collectors for the query pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_queries_processed_total",
			Help: "Total number of queries processed, by response mode",
		},
		[]string{"mode"},
	)

	QueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_queries_failed_total",
			Help: "Total number of queries that failed hard",
		},
		[]string{"stage"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of each reasoning stage in seconds",
		},
		[]string{"stage"},
	)

	GraphLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_lookups_total",
			Help: "Total number of graph lookups executed, by category",
		},
		[]string{"category"},
	)

	InferenceCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_calls_total",
			Help: "Total number of inference calls, by stage and status",
		},
		[]string{"stage", "status"},
	)
)
