// Package metrics provides Prometheus metrics collection
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Order saga metrics
	OrdersCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_completed_total",
			Help: "Total number of orders completed by the fulfillment saga",
		},
	)

	OrdersRolledBack = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_rolled_back_total",
			Help: "Total number of orders compensated back to pending",
		},
	)

	OrdersOutOfStock = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_out_of_stock_total",
			Help: "Total number of order completions aborted by a stock shortage",
		},
	)

	// Settlement batch metrics
	SettlementJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_job_runs_total",
			Help: "Total number of settlement job runs by outcome",
		},
		[]string{"job", "outcome"}, // outcome: success, failure, skipped_lock
	)

	SettlementJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_job_duration_seconds",
			Help:    "Duration of settlement job runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800},
		},
		[]string{"job"},
	)

	SettlementRowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_rows_written_total",
			Help: "Total number of settlement rows written by granularity",
		},
		[]string{"granularity"},
	)

	SettlementPaymentsUnmatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_payments_unmatched_total",
			Help: "Total number of approved payments left unsettled because they had no brand amounts",
		},
	)

	SettlementBrandsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_brands_skipped_total",
			Help: "Total number of brands skipped due to data-access failures",
		},
		[]string{"job"},
	)
)
