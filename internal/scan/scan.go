// Package scan owns the single process-wide scan lifecycle. At most one scan
// runs at a time; a second start attempt is rejected, never queued or merged.
// The run executes on a background goroutine and publishes progress only
// through the status snapshot.
package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"snapback/internal/pipeline"
	"snapback/pkg/domain"
	"snapback/pkg/logger"
	"snapback/pkg/metrics"
	"snapback/pkg/serrors"

	"go.uber.org/zap"
)

// Runner executes one scan. Satisfied by pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (*pipeline.Result, error)
}

// Coordinator guards the scan lifecycle: Idle -> Running -> Idle. The
// Idle->Running transition is a compare-and-set under the state mutex, which
// is what enforces mutual exclusion between concurrent start attempts.
type Coordinator struct {
	runner  Runner
	metrics *metrics.Metrics

	mu              sync.Mutex
	running         bool
	message         string
	lastCompletedAt *time.Time

	now func() time.Time
}

// New creates a Coordinator in the Idle state. metrics may be nil.
func New(runner Runner, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		runner:  runner,
		metrics: m,
		now:     time.Now,
	}
}

// Start launches a scan for the given target date (empty means tomorrow) on a
// background goroutine and returns the status snapshot taken right after the
// transition. When a run is already in flight it returns a conflict error and
// leaves the in-flight run's state untouched. The started run is not bound to
// ctx's cancellation; it always runs to completion or failure.
func (c *Coordinator) Start(ctx context.Context, targetDate string) (domain.ScanStatus, error) {
	if targetDate != "" {
		if _, err := time.Parse(domain.DateFormat, targetDate); err != nil {
			return domain.ScanStatus{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid target date %q", targetDate)
		}
	}

	label := targetDate
	if label == "" {
		label = "tomorrow"
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()

		return domain.ScanStatus{}, serrors.With(serrors.ErrConflict, "scan already running")
	}
	c.running = true
	c.message = fmt.Sprintf("Scanning domains for %s...", label)
	status := c.snapshotLocked()
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.ScanStarted()
	}

	// the run outlives the caller's request: detach from its cancellation but
	// keep its logger
	runCtx := logger.WithLogger(context.Background(), logger.Get(ctx))
	go c.run(runCtx, targetDate)

	return status, nil
}

// Status returns a snapshot of the current scan state.
func (c *Coordinator) Status() domain.ScanStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// run executes the scan and records its outcome. Panics are converted into a
// failure message so a broken probe can never take the host process down.
func (c *Coordinator) run(ctx context.Context, targetDate string) {
	var err error
	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "scan panicked", zap.Any("panic", p))
			err = fmt.Errorf("panic: %v", p)
		}
		c.complete(err)
	}()

	var res *pipeline.Result
	res, err = c.runner.Run(ctx, pipeline.RunOptions{TargetDate: targetDate})
	if err != nil {
		logger.Error(ctx, "scan failed", zap.Error(err))

		return
	}

	logger.Info(ctx, "scan completed", zap.Int("domains", res.Report.TotalDomains))
}

func (c *Coordinator) complete(err error) {
	now := c.now().UTC()

	c.mu.Lock()
	c.running = false
	if err != nil {
		c.message = fmt.Sprintf("Scan failed: %s", err)
	} else {
		c.message = "Scan completed successfully"
		c.lastCompletedAt = &now
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordScanRun(err == nil)
	}
}

func (c *Coordinator) snapshotLocked() domain.ScanStatus {
	status := domain.ScanStatus{
		Running: c.running,
		Message: c.message,
	}
	if c.lastCompletedAt != nil {
		t := *c.lastCompletedAt
		status.LastCompletedAt = &t
	}

	return status
}
