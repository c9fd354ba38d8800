package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RowsCompared = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "da_rows_compared_total",
			Help: "Number of rows examined by the comparator",
		},
		[]string{"table"},
	)
	ChangeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "da_change_events_total",
			Help: "Change events by table and type",
		},
		[]string{"table", "type"},
	)
	TablesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "da_tables_skipped_total",
			Help: "Tables skipped during a comparison run",
		},
		[]string{"reason"},
	)
	SinkWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "da_sink_write_errors_total",
			Help: "Audit sink writes that exhausted their retries",
		},
	)
	ComparisonDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "da_comparison_duration_seconds",
			Help:    "Wall time of per-table comparisons",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)
)

// Register adds all collectors to the registry.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		RowsCompared,
		ChangeEvents,
		TablesSkipped,
		SinkWriteErrors,
		ComparisonDuration,
	)
}
