package pipeline

import (
	"context"

	"snapback/pkg/domain"
)

// Prober annotates candidates with DNS availability verdicts. Implementations
// must preserve order and count.
type Prober interface {
	ProbeAll(ctx context.Context, candidates []domain.Candidate) []domain.Candidate
}

// Indexer annotates candidates with content-index verdicts. Implementations
// must preserve order and count.
type Indexer interface {
	ProbeAll(ctx context.Context, candidates []domain.Candidate) []domain.Candidate
}

// ReportStore persists an assembled report pair keyed by target date.
type ReportStore interface {
	Save(rep domain.Report, date string) (string, string, error)
}
