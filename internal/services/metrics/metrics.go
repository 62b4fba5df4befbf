// Package metrics holds the Prometheus collectors for ranking, catalog and profile operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RankRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_match_rank_requests_total",
			Help: "Total number of ranking requests by entry point",
		},
		[]string{"source"},
	)

	RankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vehicle_match_rank_duration_seconds",
			Help:    "Duration of ranking a catalog in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"source"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vehicle_match_catalog_vehicles",
			Help: "Number of vehicles in the active catalog",
		},
	)

	CatalogErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicle_match_catalog_errors_total",
			Help: "Total number of catalog documents or records rejected during normalization",
		},
	)

	ProfileOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_match_profile_operations_total",
			Help: "Total number of profile store operations",
		},
		[]string{"op", "result"},
	)
)

// ObserveRank records one ranking call that started at start.
func ObserveRank(source string, start time.Time) {
	RankRequests.WithLabelValues(source).Inc()
	RankDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

// ObserveProfileOp records the outcome of a profile load or save.
func ObserveProfileOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ProfileOps.WithLabelValues(op, result).Inc()
}
