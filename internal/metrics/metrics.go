package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carbutrack_pipeline_runs_total",
			Help: "Total number of pipeline runs started",
		},
	)

	PipelineFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carbutrack_pipeline_failures_total",
			Help: "Total number of pipeline runs that ended in error",
		},
	)

	PipelineLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carbutrack_pipeline_last_run_timestamp",
			Help: "Unix timestamp of the last completed pipeline run",
		},
	)

	PipelineLastDurationSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carbutrack_pipeline_last_duration_seconds",
			Help: "Duration of the last completed pipeline run",
		},
	)

	StageRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "carbutrack_stage_records",
			Help: "Record count produced by each pipeline stage in the last run",
		},
		[]string{"stage"},
	)

	RowsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carbutrack_rows_persisted_total",
			Help: "Per-row persistence outcomes (inserted, skipped, failed)",
		},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carbutrack_http_requests_total",
			Help: "Total HTTP requests by path and status code",
		},
		[]string{"path", "code"},
	)
)

// UpdateRunMetrics records the outcome of one pipeline run.
func UpdateRunMetrics(startedAt time.Time, err error) {
	PipelineLastDurationSeconds.Set(time.Since(startedAt).Seconds())
	PipelineLastRun.Set(float64(time.Now().Unix()))
	if err != nil {
		PipelineFailuresTotal.Inc()
	}
}
