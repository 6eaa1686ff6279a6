package rarity

import (
	"sort"
	"strings"
	"time"

	"github.com/inat-tools/rarities/internal/model"
)

// DefaultTopN is how many rows each ranking keeps.
const DefaultTopN = 20

// BuildEnriched joins the species listing with global counts and recency
// records. Taxa absent from either map get zero-valued fields, which the
// rankings treat as "least observed" and "never seen by others".
func BuildEnriched(species []model.SpeciesSummary, counts map[int64]int, recency map[int64]model.RecencyRecord) []model.EnrichedRecord {
	rows := make([]model.EnrichedRecord, 0, len(species))
	for _, sp := range species {
		rows = append(rows, model.EnrichedRecord{
			Species:     sp,
			GlobalCount: counts[sp.TaxonID],
			Recency:     recency[sp.TaxonID],
		})
	}
	return rows
}

// LeastObserved ranks rows by ascending global observation count, breaking
// ties by scientific name, then taxon id so the order is total. Returns at
// most n rows.
func LeastObserved(rows []model.EnrichedRecord, n int) []model.EnrichedRecord {
	ranked := make([]model.EnrichedRecord, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.GlobalCount != b.GlobalCount {
			return a.GlobalCount < b.GlobalCount
		}
		if a.Species.Name != b.Species.Name {
			return a.Species.Name < b.Species.Name
		}
		return a.Species.TaxonID < b.Species.TaxonID
	})

	return limitRows(ranked, n)
}

// OldestSeen ranks rows by how long ago anyone else last observed the taxon,
// oldest first, with the same name-then-id tie break. Rows without a recency
// timestamp are excluded: "never seen by others" is a statement about scan
// depth, not about time, so it cannot be placed on this axis.
func OldestSeen(rows []model.EnrichedRecord, n int) []model.EnrichedRecord {
	ranked := make([]model.EnrichedRecord, 0, len(rows))
	for _, r := range rows {
		if r.Recency.ObservedAt != "" {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if c := compareChrono(a.Recency.ObservedAt, b.Recency.ObservedAt); c != 0 {
			return c < 0
		}
		if a.Species.Name != b.Species.Name {
			return a.Species.Name < b.Species.Name
		}
		return a.Species.TaxonID < b.Species.TaxonID
	})

	return limitRows(ranked, n)
}

// compareChrono orders two timestamps chronologically when both parse as
// RFC 3339, falling back to a plain string compare for anything that slipped
// through normalization.
func compareChrono(a, b string) int {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	if errA == nil && errB == nil {
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func limitRows(rows []model.EnrichedRecord, n int) []model.EnrichedRecord {
	if n <= 0 || n > len(rows) {
		return rows
	}
	return rows[:n]
}
