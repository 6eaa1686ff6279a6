package rarity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/inat-tools/rarities/internal/model"
	"github.com/inat-tools/rarities/internal/store"
	"github.com/inat-tools/rarities/pkg/inat"
)

// Params are the per-run knobs. Zero values fall back to the package
// defaults.
type Params struct {
	Login     string
	BatchSize int
	MaxPages  int
	TopN      int
}

// Pipeline wires the API client and the recency cache into one report run.
// Everything executes sequentially: the shared rate limiter inside the
// client is the only pacing the platform asks of us, and ordering keeps
// runs reproducible.
type Pipeline struct {
	api   inat.Client
	cache store.Store
}

func New(api inat.Client, cache store.Store) *Pipeline {
	return &Pipeline{api: api, cache: cache}
}

// Run produces the rarity report for one user: resolve the account, list
// their species, fetch global totals, scan recency for anything not already
// cached, and rank the results both ways.
func (p *Pipeline) Run(ctx context.Context, params Params) (*model.Report, error) {
	start := time.Now()
	log := zap.L().With(zap.String("login", params.Login))
	log.Info("rarity: starting report run")

	user, err := p.api.UserByLogin(ctx, params.Login)
	if err != nil {
		return nil, eris.Wrapf(err, "rarity: resolving user %q", params.Login)
	}

	speciesCounts, err := p.api.ListUserSpecies(ctx, user.Login)
	if err != nil {
		return nil, eris.Wrapf(err, "rarity: listing species for %q", user.Login)
	}
	log.Info("rarity: species listed", zap.Int("species", len(speciesCounts)))

	summaries := make([]model.SpeciesSummary, 0, len(speciesCounts))
	ids := make([]int64, 0, len(speciesCounts))
	for _, sc := range speciesCounts {
		summaries = append(summaries, model.SpeciesSummary{
			TaxonID:    sc.Taxon.ID,
			Rank:       sc.Taxon.Rank,
			Name:       sc.Taxon.Name,
			CommonName: sc.Taxon.PreferredCommonName,
			UserCount:  sc.Count,
		})
		ids = append(ids, sc.Taxon.ID)
	}

	counts, err := FetchGlobalCounts(ctx, p.api, ids, params.BatchSize)
	if err != nil {
		return nil, err
	}
	log.Info("rarity: global counts fetched", zap.Int("taxa", len(counts)))

	scanner := NewScanner(p.api, user.Login, params.MaxPages)
	recency := make(map[int64]model.RecencyRecord, len(ids))
	var cacheHits, scanned int
	for _, id := range ids {
		cached, err := p.cache.Get(ctx, id)
		if err != nil {
			return nil, eris.Wrapf(err, "rarity: reading cache for taxon %d", id)
		}
		if cached != nil {
			recency[id] = *cached
			cacheHits++
			continue
		}

		rec, err := scanner.Scan(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Put(ctx, id, rec); err != nil {
			return nil, eris.Wrapf(err, "rarity: caching scan of taxon %d", id)
		}
		recency[id] = rec
		scanned++

		if scanned%100 == 0 {
			log.Info("rarity: recency scan progress",
				zap.Int("scanned", scanned),
				zap.Int("remaining", len(ids)-cacheHits-scanned))
		}
	}
	if err := p.cache.Flush(ctx); err != nil {
		return nil, eris.Wrap(err, "rarity: flushing cache")
	}
	log.Info("rarity: recency resolved",
		zap.Int("cache_hits", cacheHits),
		zap.Int("scanned", scanned))

	topN := params.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	rows := BuildEnriched(summaries, counts, recency)

	report := &model.Report{
		RunID:         uuid.New().String(),
		UserLogin:     user.Login,
		UserName:      user.Name,
		GeneratedAt:   time.Now().UTC(),
		SpeciesTotal:  len(summaries),
		ScannedNew:    scanned,
		CacheHits:     cacheHits,
		LeastObserved: LeastObserved(rows, topN),
		OldestSeen:    OldestSeen(rows, topN),
	}

	log.Info("rarity: report ready",
		zap.String("run_id", report.RunID),
		zap.Int("species", report.SpeciesTotal),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}
