// Package rarity computes a user's rarity report: which of their species are
// globally least observed, and which nobody else has seen for the longest
// time. It joins the platform's species listing, taxon totals, and a bounded
// recency scan into two deterministic rankings.
package rarity

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/inat-tools/rarities/pkg/inat"
)

// DefaultBatchSize is how many taxon ids are resolved per counts request.
const DefaultBatchSize = 200

// FetchGlobalCounts resolves global observation totals for the given taxa,
// batchSize ids per request. A batch that fails or resolves no taxa at all
// falls back to the query-form lookup; if that also comes up empty, the
// batch's taxa default to zero with a warning rather than aborting the run.
// The returned error is only ever a context cancellation.
func FetchGlobalCounts(ctx context.Context, api inat.Client, ids []int64, batchSize int) (map[int64]int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	counts := make(map[int64]int, len(ids))
	for start := 0; start < len(ids); start += batchSize {
		if err := ctx.Err(); err != nil {
			return counts, eris.Wrap(err, "rarity: fetching global counts")
		}

		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		taxa, err := api.TaxaByIDs(ctx, chunk)
		if err != nil || len(taxa) == 0 {
			zap.L().Warn("rarity: taxa batch unusable, retrying via query form",
				zap.Int("batch_start", start),
				zap.Int("batch_len", len(chunk)),
				zap.Error(err))
			taxa, err = api.SearchTaxa(ctx, chunk)
		}
		if err != nil {
			zap.L().Warn("rarity: taxa query form failed, counts default to zero",
				zap.Int("batch_start", start),
				zap.Int("batch_len", len(chunk)),
				zap.Error(err))
			continue
		}

		for _, t := range taxa {
			counts[t.ID] = t.ObservationsCount
		}
	}

	var missing int
	for _, id := range ids {
		if _, ok := counts[id]; !ok {
			counts[id] = 0
			missing++
		}
	}
	if missing > 0 {
		zap.L().Warn("rarity: some taxa had no resolvable global count",
			zap.Int("missing", missing),
			zap.Int("total", len(ids)))
	}
	return counts, nil
}
