// Package droplist defines the abstraction for registry drop-list sources and
// the date selection applied to their records.
package droplist

import (
	"context"
	"snapback/pkg/domain"
	"time"
)

// Source is the abstraction for registry drop-list providers. Implementations
// fetch the complete upcoming-release list for one namespace.
type Source interface {
	// DropList fetches every pending-release record for the given TLD.
	DropList(ctx context.Context, tld domain.TLD) ([]domain.DropRecord, error)
}

// SelectByDate returns the records whose release date equals date exactly.
// The date must be in domain.DateFormat; no other representation of the same
// calendar day matches. Record order is preserved.
func SelectByDate(records []domain.DropRecord, date string) []domain.DropRecord {
	out := make([]domain.DropRecord, 0, len(records))
	for _, rec := range records {
		if rec.ReleaseAt == date {
			out = append(out, rec)
		}
	}

	return out
}

// Tomorrow returns the calendar date one day after now, in UTC. Scans target
// tomorrow's drops by default: releases happen at a fixed early-UTC hour, so
// scanning the evening before gives lead time while site content is still
// probeable.
func Tomorrow(now time.Time) string {
	return now.UTC().AddDate(0, 0, 1).Format(domain.DateFormat)
}
