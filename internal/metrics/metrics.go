package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TasksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lgflow_tasks_created_total",
			Help: "Total number of tasks created by request type.",
		},
		[]string{"req_type"},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lgflow_transitions_total",
			Help: "Total number of workflow transitions by decision and outcome.",
		},
		[]string{"role", "decision", "outcome"},
	)

	TasksDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lgflow_tasks_deleted_total",
			Help: "Total number of tasks removed by administrators.",
		},
	)

	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lgflow_store_operations_total",
			Help: "Total number of table store operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	StoreOperationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lgflow_store_operation_duration_seconds",
			Help:    "Duration of whole-table store operations in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	SaveConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lgflow_save_conflicts_total",
			Help: "Total number of saves rejected because another writer changed the table.",
		},
		[]string{"reason"},
	)

	CoercedCellsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lgflow_coerced_cells_total",
			Help: "Total number of numeric cells that failed to parse and were read as zero.",
		},
		[]string{"column"},
	)

	TableRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lgflow_table_rows",
			Help: "Number of rows in the task table at the last load.",
		},
	)

	BackupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lgflow_backups_total",
			Help: "Total number of scheduled table exports by outcome.",
		},
		[]string{"outcome"},
	)
)

// All lists every lgflow collector.
var All = []prometheus.Collector{
	TasksCreatedTotal,
	TransitionsTotal,
	TasksDeletedTotal,
	StoreOperationsTotal,
	StoreOperationDurationSeconds,
	SaveConflictsTotal,
	CoercedCellsTotal,
	TableRows,
	BackupsTotal,
}

var registerOnce sync.Once

// Register registers all custom lgflow metrics with the default Prometheus registry.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(All...)
	})
}

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "succeeded"
}
