package site_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"snapback/pkg/domain"
	"snapback/pkg/report"
	"snapback/pkg/site"
)

var testNow = time.Date(2026, 1, 14, 19, 0, 0, 0, time.UTC)

func intp(n int) *int { return &n }

func candidate(name string, pages *int, indexed domain.IndexStatus) domain.Candidate {
	return domain.Candidate{
		Name:           name,
		TLD:            domain.TLDSe,
		ReleaseAt:      "2026-01-15",
		Available:      domain.AvailabilityAvailable,
		Indexed:        indexed,
		EstimatedPages: pages,
		IndexSource:    "archive",
		CheckedAt:      testNow,
	}
}

func saveReport(t *testing.T, store *report.Store, date string, candidates ...domain.Candidate) {
	t.Helper()

	_, _, err := store.Save(report.Assemble(candidates, testNow), date)
	require.NoError(t, err)
}

func TestBuildRendersIndexAndReportPages(t *testing.T) {
	store := report.NewStore(t.TempDir())
	saveReport(t, store, "2026-01-14", candidate("resa.nu", intp(3), domain.IndexPresent))
	saveReport(t, store, "2026-01-15",
		candidate("bokhandel.se", intp(120), domain.IndexPresent),
		candidate("fiske.se", nil, domain.IndexPresent),
	)

	out := t.TempDir()
	builder, err := site.NewBuilder(store, out)
	require.NoError(t, err)

	pages, err := builder.Build()
	require.NoError(t, err)
	require.Equal(t, 2, pages)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), "Latest Scan Results (2026-01-15)")
	require.Contains(t, string(index), "bokhandel.se")
	require.Contains(t, string(index), "fiske.se")
	require.Contains(t, string(index), `href="report-2026-01-14.html"`)
	require.NotContains(t, string(index), "resa.nu")

	page, err := os.ReadFile(filepath.Join(out, "report-2026-01-15.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "Report for 2026-01-15")
	require.Contains(t, string(page), `href="../reports/2026-01-15.csv"`)
	require.Contains(t, string(page), `href="../reports/2026-01-15.json"`)
	require.Contains(t, string(page), "badge-success")

	older, err := os.ReadFile(filepath.Join(out, "report-2026-01-14.html"))
	require.NoError(t, err)
	require.Contains(t, string(older), "resa.nu")
}

func TestBuildEmptyStore(t *testing.T) {
	store := report.NewStore(filepath.Join(t.TempDir(), "reports"))

	out := t.TempDir()
	builder, err := site.NewBuilder(store, out)
	require.NoError(t, err)

	pages, err := builder.Build()
	require.NoError(t, err)
	require.Zero(t, pages)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), "No Reports Available")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestBuildTruncatesIndexTable(t *testing.T) {
	candidates := make([]domain.Candidate, 0, 60)
	for i := 0; i < 60; i++ {
		candidates = append(candidates,
			candidate(fmt.Sprintf("d%02d.se", i), intp(7), domain.IndexPresent))
	}

	store := report.NewStore(t.TempDir())
	saveReport(t, store, "2026-01-15", candidates...)

	out := t.TempDir()
	builder, err := site.NewBuilder(store, out)
	require.NoError(t, err)

	_, err = builder.Build()
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), "Showing top 50 of 60 domains")
	require.Contains(t, string(index), "d00.se")
	require.NotContains(t, string(index), "d59.se")

	page, err := os.ReadFile(filepath.Join(out, "report-2026-01-15.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "d59.se")
}

func TestBuildCountsIndexedDomains(t *testing.T) {
	store := report.NewStore(t.TempDir())
	saveReport(t, store, "2026-01-15",
		candidate("ett.se", intp(10), domain.IndexPresent),
		candidate("tva.se", intp(5), domain.IndexPresent),
	)

	out := t.TempDir()
	builder, err := site.NewBuilder(store, out)
	require.NoError(t, err)

	_, err = builder.Build()
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), `<div class="stat-value">2</div>`)
	require.Contains(t, string(index), "Indexed Domains")
}
