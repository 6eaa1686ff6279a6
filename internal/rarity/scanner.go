package rarity

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/inat-tools/rarities/internal/model"
	"github.com/inat-tools/rarities/pkg/inat"
)

const (
	// DefaultMaxScanPages bounds how deep a recency scan digs before giving
	// up on finding a non-excluded observer.
	DefaultMaxScanPages = 8

	// scanPageSize keeps scan responses small; most taxa resolve on the
	// first page.
	scanPageSize = 10
)

// Scanner finds, per taxon, the most recent observation made by anyone other
// than the excluded user. The scan walks observations newest-first and stops
// at the first qualifying hit, a short page, or the page bound.
type Scanner struct {
	api      inat.Client
	exclude  string
	maxPages int
	perPage  int
}

func NewScanner(api inat.Client, excludeLogin string, maxPages int) *Scanner {
	if maxPages <= 0 {
		maxPages = DefaultMaxScanPages
	}
	return &Scanner{
		api:      api,
		exclude:  excludeLogin,
		maxPages: maxPages,
		perPage:  scanPageSize,
	}
}

// Scan returns the recency record for taxonID. An empty record with a nil
// error means the bounded scan saw only the excluded user's observations;
// callers cache that outcome like any other so the taxon is not rescanned.
func (s *Scanner) Scan(ctx context.Context, taxonID int64) (model.RecencyRecord, error) {
	for page := 1; page <= s.maxPages; page++ {
		res, err := s.api.SearchObservations(ctx, inat.ObservationQuery{
			TaxonID: taxonID,
			OrderBy: "observed_on",
			Order:   "desc",
			Page:    page,
			PerPage: s.perPage,
		})
		if err != nil {
			return model.RecencyRecord{}, eris.Wrapf(err, "rarity: scanning taxon %d page %d", taxonID, page)
		}

		for _, obs := range res.Results {
			if obs.User != nil && strings.EqualFold(obs.User.Login, s.exclude) {
				continue
			}
			return recordFromObservation(obs), nil
		}

		if len(res.Results) < s.perPage {
			// A short page means the listing is exhausted.
			return model.RecencyRecord{}, nil
		}
	}

	zap.L().Debug("rarity: scan page bound reached without another observer",
		zap.Int64("taxon_id", taxonID),
		zap.Int("max_pages", s.maxPages))
	return model.RecencyRecord{}, nil
}

func recordFromObservation(obs inat.Observation) model.RecencyRecord {
	rec := model.RecencyRecord{
		ObservedAt:    normalizeObservedAt(obs),
		ObservationID: obs.ID,
	}
	if obs.User != nil {
		rec.ObserverLogin = obs.User.Login
	}
	return rec
}

// normalizeObservedAt renders the observation's timestamp as RFC 3339 in
// UTC so cached values sort chronologically. Date-only observations pin to
// midnight UTC; records with no parseable time come back empty.
func normalizeObservedAt(obs inat.Observation) string {
	if obs.TimeObservedAt != "" {
		if ts, err := time.Parse(time.RFC3339, obs.TimeObservedAt); err == nil {
			return ts.UTC().Format(time.RFC3339)
		}
	}
	if obs.ObservedOn != "" {
		if d, err := time.Parse("2006-01-02", obs.ObservedOn); err == nil {
			return d.UTC().Format(time.RFC3339)
		}
	}
	return ""
}
