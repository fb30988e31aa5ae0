package domain

import "time"

// DateFormat is the calendar-date layout used throughout the system: drop
// lists publish release dates as plain UTC dates and reports are keyed by
// the same form.
const DateFormat = "2006-01-02"

// TLD identifies one of the supported top-level domain namespaces.
type TLD string

const (
	// TLDSe is the Swedish .se namespace.
	TLDSe TLD = "se"
	// TLDNu is the .nu namespace (also operated by the Swedish registry).
	TLDNu TLD = "nu"
)

// AllTLDs returns every namespace the scanner covers, in scan order.
func AllTLDs() []TLD {
	return []TLD{TLDSe, TLDNu}
}

// DropRecord is one raw entry from a registry drop list: a domain scheduled
// to be released on ReleaseAt. Records are immutable once fetched.
type DropRecord struct {
	// Name is the fully-qualified domain name, e.g. "example.se".
	Name string `json:"name"`
	// ReleaseAt is the release date in DateFormat. It is kept as the wire
	// string because the filter stage matches dates by exact equality.
	ReleaseAt string `json:"release_at"`
	// TLD is the namespace the record was fetched from.
	TLD TLD `json:"tld"`
}

// Availability is the tri-state verdict of a DNS availability probe. It is
// deliberately not a bool: a probe that cannot reach a conclusion must stay
// distinguishable from "registered" all the way into the report output.
type Availability string

const (
	// AvailabilityUnknown means no probe has reached a conclusion yet.
	AvailabilityUnknown Availability = "unknown"
	// AvailabilityRegistered means the name resolved (or exists in the zone).
	AvailabilityRegistered Availability = "registered"
	// AvailabilityAvailable means no record type produced a conclusive hit.
	AvailabilityAvailable Availability = "available"
)

// IndexStatus is the tri-state verdict of a content-index probe.
type IndexStatus string

const (
	// IndexUnknown means every index source abstained.
	IndexUnknown IndexStatus = "unknown"
	// IndexPresent means at least one source found historical content.
	IndexPresent IndexStatus = "present"
	// IndexAbsent means a source answered definitively with zero content.
	IndexAbsent IndexStatus = "absent"
)

// IndexVerdict is the outcome of probing one domain against the index-signal
// source chain.
type IndexVerdict struct {
	// Indexed is the tri-state index conclusion.
	Indexed IndexStatus
	// EstimatedPages is the number of distinct pages the answering source
	// attributed to the domain. Nil when no count could be derived, which is
	// only meaningful alongside Indexed == IndexPresent.
	EstimatedPages *int
	// Source names the source that produced the verdict; empty when the whole
	// chain abstained.
	Source string
}

// Candidate is a drop record enriched by the probe stages. Probe stages
// mutate candidates in place and never drop or reorder them; only filter
// stages shrink the list.
type Candidate struct {
	// Name, TLD and ReleaseAt are carried over from the originating DropRecord.
	Name      string
	TLD       TLD
	ReleaseAt string

	// Available is set by the availability probe stage.
	Available Availability
	// Indexed, EstimatedPages and IndexSource are set by the index-signal stage.
	Indexed        IndexStatus
	EstimatedPages *int
	IndexSource    string

	// CheckedAt is when probing completed for this candidate.
	CheckedAt time.Time
}

// NewCandidate creates a Candidate from a raw drop record with both probe
// verdicts explicitly Unknown.
func NewCandidate(rec DropRecord) Candidate {
	return Candidate{
		Name:      rec.Name,
		TLD:       rec.TLD,
		ReleaseAt: rec.ReleaseAt,
		Available: AvailabilityUnknown,
		Indexed:   IndexUnknown,
	}
}

// NewCandidates maps a slice of drop records to candidates, preserving order.
func NewCandidates(recs []DropRecord) []Candidate {
	out := make([]Candidate, 0, len(recs))
	for _, rec := range recs {
		out = append(out, NewCandidate(rec))
	}

	return out
}
