package domain

import "time"

// ReportRecord is the canonical per-domain output row. The JSON tags double
// as the CSV column names; both renderings share this field set and order.
type ReportRecord struct {
	Domain         string       `json:"domain"`
	TLD            TLD          `json:"tld"`
	ReleaseDate    string       `json:"release_date"`
	Available      Availability `json:"available"`
	Indexed        IndexStatus  `json:"indexed"`
	EstimatedPages *int         `json:"estimated_pages"`
	IndexSource    string       `json:"index_source"`
	CheckedAt      time.Time    `json:"checked_at"`
}

// Report is the assembled result of one scan: a single deterministically
// ordered record list that both output formats are rendered from.
type Report struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	TotalDomains int            `json:"total_domains"`
	Domains      []ReportRecord `json:"domains"`
}

// ScanStatus is the externally visible state of the scan coordinator, as
// returned by the status endpoint.
type ScanStatus struct {
	// Running reports whether a scan is currently executing.
	Running bool `json:"running"`
	// Message is the most recent lifecycle message ("Scan completed
	// successfully", "Scan failed: ...", or empty before the first run).
	Message string `json:"message"`
	// LastCompletedAt is when the last successful scan finished; nil before
	// the first successful run.
	LastCompletedAt *time.Time `json:"last_completed_at"`
}
