// Package metrics provides optional Prometheus metrics for filter set
// compilation and request-time evaluation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all collectors. Pass one instance through Config to enable
// instrumentation; a nil *Metrics disables it.
type Metrics struct {
	// CompilationsTotal counts compiled filter sets.
	CompilationsTotal prometheus.Counter

	// EvaluationsTotal counts filter evaluations by filter set and status.
	EvaluationsTotal *prometheus.CounterVec

	// EvaluationDuration observes evaluation latency by filter set.
	EvaluationDuration *prometheus.HistogramVec

	// BatchFlushesTotal counts batch loader flushes.
	BatchFlushesTotal prometheus.Counter

	// BatchGroupsPerFlush observes distinct filter trees per flush.
	BatchGroupsPerFlush prometheus.Histogram
}

// New creates and registers all collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CompilationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sqlfilter_compilations_total",
			Help: "Total number of compiled filter sets",
		}),
		EvaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlfilter_evaluations_total",
			Help: "Total number of filter evaluations",
		}, []string{"filter_set", "status"}),
		EvaluationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sqlfilter_evaluation_duration_seconds",
			Help:    "Duration of filter evaluations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"filter_set"}),
		BatchFlushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sqlfilter_batch_flushes_total",
			Help: "Total number of batch loader flushes",
		}),
		BatchGroupsPerFlush: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sqlfilter_batch_groups_per_flush",
			Help:    "Distinct filter trees fetched per batch flush",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),
	}
}
