// Package indexsignal probes domains for evidence of historically indexed
// content. Sources form an ordered fallback chain: each either delivers a
// definitive verdict or abstains with an error, and the first verdict wins.
package indexsignal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"snapback/pkg/domain"
	"snapback/pkg/logger"
	"snapback/pkg/metrics"
	"snapback/pkg/pacing"
)

// Source is one index-signal strategy. A non-nil error means the source
// abstained (unreachable upstream, unusable response) and the next source in
// the chain should be consulted.
type Source interface {
	// Name identifies the source in verdicts, logs and metrics.
	Name() string
	// Probe inspects one domain name and returns a definitive verdict or an
	// abstention error.
	Probe(ctx context.Context, name string) (domain.IndexVerdict, error)
}

// Chain tries sources in a fixed precedence order and paces batch probing so
// no two consecutive external calls land within the configured interval.
type Chain struct {
	sources  []Source
	interval time.Duration
	metrics  *metrics.Metrics // optional
	now      func() time.Time
}

// NewChain constructs a Chain over the given sources, tried in argument
// order. interval is the fixed delay enforced between two consecutive
// per-domain probes in ProbeAll. metrics may be nil.
func NewChain(interval time.Duration, m *metrics.Metrics, sources ...Source) *Chain {
	return &Chain{
		sources:  sources,
		interval: interval,
		metrics:  m,
		now:      time.Now,
	}
}

// Probe walks the chain for one domain. Source abstentions are logged and
// counted, then the next source is consulted; if every source abstains the
// verdict is Unknown with no source identifier and no page count. Probe never
// returns an error: chain exhaustion is an answer, not a failure.
func (c *Chain) Probe(ctx context.Context, name string) domain.IndexVerdict {
	for _, src := range c.sources {
		verdict, err := src.Probe(ctx, name)
		if err != nil {
			logger.Warn(ctx, "index source abstained",
				zap.String("source", src.Name()),
				zap.String("domain", name),
				zap.Error(err))
			if c.metrics != nil {
				c.metrics.RecordSourceError(src.Name())
			}

			continue
		}

		logger.Debug(ctx, "index verdict",
			zap.String("source", src.Name()),
			zap.String("domain", name),
			zap.String("status", string(verdict.Indexed)))

		return verdict
	}

	return domain.IndexVerdict{Indexed: domain.IndexUnknown}
}

// ProbeAll probes every candidate sequentially, annotating index verdicts and
// CheckedAt in place. Consecutive probes are separated by the chain's
// interval; there is no delay before the first probe or after the last. Order
// and count are always preserved. If the context is canceled mid-batch the
// remaining candidates keep their Unknown verdicts.
func (c *Chain) ProbeAll(ctx context.Context, candidates []domain.Candidate) []domain.Candidate {
	pacer := pacing.New(c.interval)

	for i := range candidates {
		if err := pacer.Wait(ctx); err != nil {
			logger.Warn(ctx, "index probing aborted",
				zap.Int("remaining", len(candidates)-i),
				zap.Error(err))

			return candidates
		}

		verdict := c.Probe(ctx, candidates[i].Name)
		candidates[i].Indexed = verdict.Indexed
		candidates[i].EstimatedPages = verdict.EstimatedPages
		candidates[i].IndexSource = verdict.Source
		candidates[i].CheckedAt = c.now().UTC()
	}

	return candidates
}
