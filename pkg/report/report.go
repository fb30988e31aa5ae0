// Package report turns probed candidates into the ranked CSV and JSON report
// pair and owns the on-disk report store.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"snapback/pkg/domain"
)

// csvColumns is the fixed CSV column order. It matches the JSON field set of
// domain.ReportRecord.
var csvColumns = []string{ //nolint: gochecknoglobals
	"domain", "tld", "release_date", "available",
	"indexed", "estimated_pages", "index_source", "checked_at",
}

// FilterValuable keeps the candidates worth reporting: indexed content must
// be Present and any known page count must reach minPages (inclusive). A
// missing page count passes the threshold; Absent and Unknown verdicts are
// dropped unconditionally.
func FilterValuable(candidates []domain.Candidate, minPages int) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Indexed != domain.IndexPresent {
			continue
		}
		if c.EstimatedPages != nil && *c.EstimatedPages < minPages {
			continue
		}
		out = append(out, c)
	}

	return out
}

// Assemble maps candidates to canonical report records and applies the final
// ranking exactly once: estimated pages descending (unknown counts as zero),
// then domain name ascending. Both output formats are rendered from the
// resulting record list, so they agree row for row by construction.
func Assemble(candidates []domain.Candidate, generatedAt time.Time) domain.Report {
	records := make([]domain.ReportRecord, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, domain.ReportRecord{
			Domain:         c.Name,
			TLD:            c.TLD,
			ReleaseDate:    c.ReleaseAt,
			Available:      c.Available,
			Indexed:        c.Indexed,
			EstimatedPages: c.EstimatedPages,
			IndexSource:    c.IndexSource,
			CheckedAt:      c.CheckedAt,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		pi, pj := pagesOrZero(records[i]), pagesOrZero(records[j])
		if pi != pj {
			return pi > pj
		}

		return records[i].Domain < records[j].Domain
	})

	return domain.Report{
		GeneratedAt:  generatedAt.UTC(),
		TotalDomains: len(records),
		Domains:      records,
	}
}

func pagesOrZero(rec domain.ReportRecord) int {
	if rec.EstimatedPages == nil {
		return 0
	}

	return *rec.EstimatedPages
}

// WriteCSV renders the report as CSV: one header row, then one row per
// record in the report's order.
func WriteCSV(w io.Writer, rep domain.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("could not write csv header: %w", err)
	}

	for _, rec := range rep.Domains {
		pages := ""
		if rec.EstimatedPages != nil {
			pages = strconv.Itoa(*rec.EstimatedPages)
		}
		checkedAt := ""
		if !rec.CheckedAt.IsZero() {
			checkedAt = rec.CheckedAt.Format(time.RFC3339)
		}

		row := []string{
			rec.Domain,
			string(rec.TLD),
			rec.ReleaseDate,
			string(rec.Available),
			string(rec.Indexed),
			pages,
			rec.IndexSource,
			checkedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("could not write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("could not flush csv: %w", err)
	}

	return nil
}

// Summary renders the human-readable digest printed after a run.
func Summary(rep domain.Report) string {
	indexed := 0
	withPages := 0
	maxPages := 0
	for _, rec := range rep.Domains {
		if rec.Indexed == domain.IndexPresent {
			indexed++
		}
		if rec.EstimatedPages != nil && *rec.EstimatedPages > 0 {
			withPages++
			if *rec.EstimatedPages > maxPages {
				maxPages = *rec.EstimatedPages
			}
		}
	}

	var b strings.Builder
	b.WriteString("Domain Scan Summary\n")
	b.WriteString("==================\n")
	fmt.Fprintf(&b, "Total domains scanned: %d\n", rep.TotalDomains)
	fmt.Fprintf(&b, "Indexed in search engines: %d\n", indexed)
	fmt.Fprintf(&b, "With page count data: %d\n", withPages)
	if withPages > 0 {
		fmt.Fprintf(&b, "Highest page count: %d\n", maxPages)
	}

	if len(rep.Domains) > 0 {
		b.WriteString("\nTop domains by indexed pages:\n")
		top := rep.Domains
		if len(top) > 5 {
			top = top[:5]
		}
		for _, rec := range top {
			pages := "?"
			if rec.EstimatedPages != nil {
				pages = strconv.Itoa(*rec.EstimatedPages)
			}
			fmt.Fprintf(&b, "  - %s: %s pages\n", rec.Domain, pages)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
