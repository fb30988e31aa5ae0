// Package site renders the stored reports into a static HTML site: an index
// page over the latest report plus one page per historical report. The output
// is self-contained and can be published from any plain file host.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"snapback/pkg/domain"
)

// templates contains the embedded page templates.
//
//go:embed templates/*.gohtml
var templates embed.FS

// topDomainCount caps the table on the index page; per-date pages carry the
// full record list.
const topDomainCount = 50

// ReportSource is the report access the builder needs. Satisfied by
// report.Store.
type ReportSource interface {
	List() ([]string, error)
	Load(date string) (domain.Report, error)
}

// Builder renders the site into an output directory.
type Builder struct {
	reports ReportSource
	outDir  string
	tmpl    *template.Template
}

// NewBuilder creates a Builder that writes the generated pages to outDir. The
// directory is created on the first build.
func NewBuilder(reports ReportSource, outDir string) (*Builder, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("could not parse templates: %w", err)
	}

	return &Builder{
		reports: reports,
		outDir:  outDir,
		tmpl:    tmpl,
	}, nil
}

// indexData feeds the index page template.
type indexData struct {
	// Dates lists every stored report, newest first.
	Dates []string
	// LatestDate and Latest describe the newest report; Latest is nil when the
	// store is empty.
	LatestDate string
	Latest     *domain.Report
	// IndexedCount is the number of records in the latest report with a
	// Present index verdict.
	IndexedCount int
	// TopDomains is the (possibly truncated) record list shown on the index
	// page; Truncated marks whether rows were cut.
	TopDomains []domain.ReportRecord
	Truncated  bool
}

// reportData feeds one per-date report page.
type reportData struct {
	Date   string
	Report domain.Report
}

// Build renders index.html plus one report-<date>.html per stored report and
// returns the number of report pages written. An empty store still produces
// an index page.
func (b *Builder) Build() (int, error) {
	dates, err := b.reports.List()
	if err != nil {
		return 0, fmt.Errorf("could not list reports: %w", err)
	}

	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return 0, fmt.Errorf("could not create output directory: %w", err)
	}

	data := indexData{Dates: dates}
	if len(dates) > 0 {
		latest, err := b.reports.Load(dates[0])
		if err != nil {
			return 0, fmt.Errorf("could not load latest report: %w", err)
		}

		data.LatestDate = dates[0]
		data.Latest = &latest
		data.IndexedCount = countIndexed(latest)
		data.TopDomains = latest.Domains
		if len(data.TopDomains) > topDomainCount {
			data.TopDomains = data.TopDomains[:topDomainCount]
			data.Truncated = true
		}
	}

	if err := b.render("index", "index.html", data); err != nil {
		return 0, err
	}

	pages := 0
	for _, date := range dates {
		rep, err := b.reports.Load(date)
		if err != nil {
			return pages, fmt.Errorf("could not load report %s: %w", date, err)
		}

		filename := fmt.Sprintf("report-%s.html", date)
		if err := b.render("report", filename, reportData{Date: date, Report: rep}); err != nil {
			return pages, err
		}
		pages++
	}

	return pages, nil
}

// render executes one named template fully in memory, then writes the page,
// so a failed render never leaves a truncated file behind.
func (b *Builder) render(name, filename string, data any) error {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("could not render %s: %w", filename, err)
	}

	if err := os.WriteFile(filepath.Join(b.outDir, filename), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", filename, err)
	}

	return nil
}

func countIndexed(rep domain.Report) int {
	n := 0
	for _, rec := range rep.Domains {
		if rec.Indexed == domain.IndexPresent {
			n++
		}
	}

	return n
}
