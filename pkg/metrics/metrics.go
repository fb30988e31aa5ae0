// Package metrics defines the Prometheus collectors for the scan pipeline and
// the serving boundary.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// StageBuckets covers whole pipeline stages, which run from sub-second (empty
// drop list) to many minutes (probing hundreds of domains).
var StageBuckets = []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800} //nolint: gochecknoglobals

// Metrics holds all scanner Prometheus collectors.
type Metrics struct {
	// Pipeline metrics
	DropRecordsFetched  *prometheus.CounterVec
	AvailabilityResults *prometheus.CounterVec
	IndexVerdicts       *prometheus.CounterVec
	SourceErrors        *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec

	// Scan lifecycle metrics
	ScanRuns      *prometheus.CounterVec
	ScanRunning   prometheus.Gauge
	ReportDomains prometheus.Gauge
}

// New creates and registers all collectors on the given registerer. Tests pass
// a fresh prometheus.NewRegistry so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DropRecordsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapback_drop_records_fetched_total",
			Help: "Drop list records fetched from the registry, by top level domain",
		}, []string{"tld"}),

		AvailabilityResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapback_availability_results_total",
			Help: "DNS availability probe outcomes (available, registered, unknown)",
		}, []string{"outcome"}),

		IndexVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapback_index_verdicts_total",
			Help: "Content index verdicts by status and the source that produced them",
		}, []string{"status", "source"}),

		SourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapback_source_errors_total",
			Help: "Upstream source failures by source name",
		}, []string{"source"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snapback_stage_duration_seconds",
			Help:    "Wall time of each pipeline stage",
			Buckets: StageBuckets,
		}, []string{"stage"}),

		ScanRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapback_scan_runs_total",
			Help: "Completed scan runs by outcome (success, failure)",
		}, []string{"outcome"}),

		ScanRunning: factory.NewGauge(prometheus.GaugeOpts{
			Name: "snapback_scan_running",
			Help: "Whether a scan is currently in progress (0 or 1)",
		}),

		ReportDomains: factory.NewGauge(prometheus.GaugeOpts{
			Name: "snapback_report_domains",
			Help: "Number of valuable domains in the most recent report",
		}),
	}
}

// ObserveStage records the wall time of a completed pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordSourceError counts a failed call against an upstream source.
func (m *Metrics) RecordSourceError(source string) {
	m.SourceErrors.WithLabelValues(source).Inc()
}

// RecordScanRun counts a finished scan run and clears the running gauge.
func (m *Metrics) RecordScanRun(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}

	m.ScanRuns.WithLabelValues(outcome).Inc()
	m.ScanRunning.Set(0)
}

// ScanStarted flips the running gauge on.
func (m *Metrics) ScanStarted() {
	m.ScanRunning.Set(1)
}
