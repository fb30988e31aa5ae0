package metrics_test

import (
	"snapback/pkg/metrics"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	m := metrics.New(reg)
	require.NotNil(t, m)

	m.DropRecordsFetched.WithLabelValues("se").Add(5)
	m.AvailabilityResults.WithLabelValues("available").Inc()
	m.IndexVerdicts.WithLabelValues("present", "wayback").Inc()
	m.ObserveStage("availability", 3*time.Second)

	require.InDelta(t, 5, testutil.ToFloat64(m.DropRecordsFetched.WithLabelValues("se")), 0.001)
	require.InDelta(t, 1, testutil.ToFloat64(m.AvailabilityResults.WithLabelValues("available")), 0.001)
}

func TestNewWithFreshRegistryDoesNotCollide(t *testing.T) {
	// Constructing twice against separate registries must not panic.
	require.NotPanics(t, func() {
		metrics.New(prometheus.NewRegistry())
		metrics.New(prometheus.NewRegistry())
	})
}

func TestRecordScanRun(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ScanStarted()
	require.InDelta(t, 1, testutil.ToFloat64(m.ScanRunning), 0.001)

	m.RecordScanRun(true)
	require.InDelta(t, 0, testutil.ToFloat64(m.ScanRunning), 0.001)
	require.InDelta(t, 1, testutil.ToFloat64(m.ScanRuns.WithLabelValues("success")), 0.001)

	m.RecordScanRun(false)
	require.InDelta(t, 1, testutil.ToFloat64(m.ScanRuns.WithLabelValues("failure")), 0.001)
}

func TestRecordSourceError(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.RecordSourceError("wayback")
	m.RecordSourceError("wayback")

	require.InDelta(t, 2, testutil.ToFloat64(m.SourceErrors.WithLabelValues("wayback")), 0.001)
}
