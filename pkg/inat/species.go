package inat

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// speciesPageSize is the maximum page size the species-counts endpoint
// accepts; larger values are silently clamped server-side anyway.
const speciesPageSize = 200

func (c *httpClient) ListUserSpecies(ctx context.Context, login string) ([]SpeciesCount, error) {
	var all []SpeciesCount
	for page := 1; ; page++ {
		q := url.Values{
			"user_login": {login},
			"per_page":   {strconv.Itoa(speciesPageSize)},
			"page":       {strconv.Itoa(page)},
		}
		var resp speciesCountsResponse
		if err := c.getJSON(ctx, "/observations/species_counts", q, &resp); err != nil {
			return nil, eris.Wrapf(err, "inat: species counts for %q page %d", login, page)
		}
		if len(resp.Results) == 0 {
			break
		}
		for _, sc := range resp.Results {
			if sc.Taxon == nil || sc.Taxon.ID == 0 {
				zap.L().Debug("inat: skipping species count without taxon",
					zap.String("login", login),
					zap.Int("page", page))
				continue
			}
			all = append(all, sc)
		}
	}
	return all, nil
}
