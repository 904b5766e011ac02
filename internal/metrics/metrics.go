package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is safe:
// every method no-ops, so tests and library callers can skip registration.
type Metrics struct {
	RunsTotal       prometheus.Counter
	RowsProcessed   *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	ValidationCount *prometheus.CounterVec
	DecisionCount   *prometheus.CounterVec
	SchemaErrors    prometheus.Counter
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "voltscan_runs_total",
			Help: "Completed pipeline runs.",
		}),
		RowsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voltscan_rows_processed_total",
			Help: "Rows processed per stage.",
		}, []string{"stage"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voltscan_stage_duration_seconds",
			Help:    "Wall time per pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		ValidationCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voltscan_validation_status_total",
			Help: "Validation outcomes by status and family.",
		}, []string{"status", "family"}),
		DecisionCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voltscan_decision_status_total",
			Help: "Acceptance outcomes by status.",
		}, []string{"status"}),
		SchemaErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "voltscan_schema_errors_total",
			Help: "Aborted runs due to schema contract violations.",
		}),
	}
}

// ObserveStage records one stage's row count and duration.
func (m *Metrics) ObserveStage(stage string, rows int, seconds float64) {
	if m == nil {
		return
	}
	m.RowsProcessed.WithLabelValues(stage).Add(float64(rows))
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// CountValidation records one validation outcome.
func (m *Metrics) CountValidation(status, family string) {
	if m == nil {
		return
	}
	m.ValidationCount.WithLabelValues(status, family).Inc()
}

// CountDecision records one acceptance outcome.
func (m *Metrics) CountDecision(status string) {
	if m == nil {
		return
	}
	m.DecisionCount.WithLabelValues(status).Inc()
}

// CountRun records a completed run.
func (m *Metrics) CountRun() {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
}

// CountSchemaError records an aborted run.
func (m *Metrics) CountSchemaError() {
	if m == nil {
		return
	}
	m.SchemaErrors.Inc()
}
