// Package model defines the domain records that flow between the species
// lister, the recency scanner, the cache store, and the report writers.
package model

import "time"

// SpeciesSummary is one taxon observed by the target user, as returned by the
// species-counts listing. Immutable once read; recomputed every run.
type SpeciesSummary struct {
	TaxonID    int64  `json:"taxon_id"`
	Rank       string `json:"rank"`
	Name       string `json:"name"`
	CommonName string `json:"common_name,omitempty"`
	UserCount  int    `json:"user_count"`
}

// DisplayName returns the common name when known, otherwise the scientific name.
func (s SpeciesSummary) DisplayName() string {
	if s.CommonName != "" {
		return s.CommonName
	}
	return s.Name
}

// RecencyRecord is the outcome of one bounded recency scan for a taxon: the
// most recent observation by someone other than the target user, if one was
// found within the scan window. A zero-value record means the scan completed
// without a qualifying observation. Once a taxon has a record in the cache
// store it is never re-scanned, even if the live answer has since changed.
type RecencyRecord struct {
	ObservedAt    string `json:"observed_at,omitempty"` // RFC3339, UTC-normalized
	ObservationID int64  `json:"observation_id,omitempty"`
	ObserverLogin string `json:"observer_login,omitempty"`
}

// Empty reports whether the scan found no qualifying observation.
func (r RecencyRecord) Empty() bool {
	return r.ObservedAt == "" && r.ObservationID == 0 && r.ObserverLogin == ""
}

// EnrichedRecord joins a species summary with its global observation count
// and its recency record. One row per output table entry.
type EnrichedRecord struct {
	Species     SpeciesSummary `json:"species"`
	GlobalCount int            `json:"global_count"`
	Recency     RecencyRecord  `json:"recency"`
}

// Report is the final output of a rarity run: two independently ranked
// top-N slices over the same enriched records.
type Report struct {
	RunID         string           `json:"run_id"`
	UserLogin     string           `json:"user_login"`
	UserName      string           `json:"user_name,omitempty"`
	GeneratedAt   time.Time        `json:"generated_at"`
	SpeciesTotal  int              `json:"species_total"`
	ScannedNew    int              `json:"scanned_new"`
	CacheHits     int              `json:"cache_hits"`
	LeastObserved []EnrichedRecord `json:"least_observed"`
	OldestSeen    []EnrichedRecord `json:"oldest_seen"`
}
