// Package pacing provides a small primitive for spacing successive outbound
// requests by a fixed interval, so probe traffic against third-party services
// stays polite.
package pacing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a fixed minimum interval between successive operations. The
// first Wait returns immediately; every subsequent Wait blocks until the
// configured interval since the previous release has elapsed. A zero or
// negative interval disables pacing entirely.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration

	// now and sleep are swapped out in tests to drive a virtual clock.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Pacer that spaces operations by the given interval.
func New(interval time.Duration) *Pacer {
	p := &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}

	if interval <= 0 {
		p.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return p
}

// Wait blocks until the pacer releases the next slot or the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("could not pace operation: %w", err)
	}

	reservation := p.limiter.ReserveN(p.now(), 1)
	if !reservation.OK() {
		return errors.New("could not pace operation: reservation rejected")
	}

	delay := reservation.DelayFrom(p.now())
	if delay <= 0 {
		return nil
	}

	if err := p.sleep(ctx, delay); err != nil {
		reservation.CancelAt(p.now())

		return fmt.Errorf("could not pace operation: %w", err)
	}

	return nil
}

// Interval returns the configured spacing between operations.
func (p *Pacer) Interval() time.Duration { return p.interval }

// sleepContext sleeps for d unless ctx is canceled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
