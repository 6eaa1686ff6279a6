package rarity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inat-tools/rarities/internal/model"
	"github.com/inat-tools/rarities/internal/store"
	"github.com/inat-tools/rarities/pkg/inat"
)

func newTestCache(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewJSONFile(filepath.Join(t.TempDir(), "test.recency.json"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

// reportFixtureAPI serves three species with distinct count and recency
// shapes: one rare and seen long ago, one common and seen recently, one
// that nobody but the target user has observed.
func reportFixtureAPI(t *testing.T, scannedTaxa *[]int64) *fakeAPI {
	t.Helper()
	return &fakeAPI{
		userByLogin: func(_ context.Context, login string) (*inat.User, error) {
			assert.Equal(t, "mira_l", login)
			return &inat.User{ID: 7, Login: "Mira_L", Name: "Mira"}, nil
		},
		listUserSpecies: func(_ context.Context, login string) ([]inat.SpeciesCount, error) {
			assert.Equal(t, "Mira_L", login, "listing must use the resolved login")
			return []inat.SpeciesCount{
				{Count: 2, Taxon: &inat.Taxon{ID: 10, Rank: "species", Name: "Rarissima minima", PreferredCommonName: "Least Skipper"}},
				{Count: 9, Taxon: &inat.Taxon{ID: 20, Rank: "species", Name: "Vulgaris maxima"}},
				{Count: 1, Taxon: &inat.Taxon{ID: 30, Rank: "species", Name: "Solitaria mea"}},
			}, nil
		},
		taxaByIDs: func(_ context.Context, ids []int64) ([]inat.Taxon, error) {
			return []inat.Taxon{
				{ID: 10, ObservationsCount: 5},
				{ID: 20, ObservationsCount: 100000},
				{ID: 30, ObservationsCount: 12},
			}, nil
		},
		searchObservations: func(_ context.Context, q inat.ObservationQuery) (*inat.ObservationPage, error) {
			if scannedTaxa != nil {
				*scannedTaxa = append(*scannedTaxa, q.TaxonID)
			}
			switch q.TaxonID {
			case 10:
				return &inat.ObservationPage{Results: []inat.Observation{
					{ID: 501, ObservedOn: "2020-05-05", User: &inat.User{Login: "wandering_wren"}},
				}}, nil
			case 20:
				return &inat.ObservationPage{Results: []inat.Observation{
					{ID: 601, ObservedOn: "2025-06-15", User: &inat.User{Login: "mira_l"}},
					{ID: 602, TimeObservedAt: "2025-06-14T09:31:02-07:00", ObservedOn: "2025-06-14", User: &inat.User{Login: "casual_carl"}},
				}}, nil
			case 30:
				return &inat.ObservationPage{Results: []inat.Observation{
					{ID: 701, ObservedOn: "2025-03-01", User: &inat.User{Login: "Mira_L"}},
				}}, nil
			default:
				t.Fatalf("unexpected scan of taxon %d", q.TaxonID)
				return nil, nil
			}
		},
	}
}

func TestPipelineRun_FullRun(t *testing.T) {
	cache := newTestCache(t)
	p := New(reportFixtureAPI(t, nil), cache)

	report, err := p.Run(context.Background(), Params{Login: "mira_l"})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "Mira_L", report.UserLogin)
	assert.Equal(t, "Mira", report.UserName)
	assert.Equal(t, 3, report.SpeciesTotal)
	assert.Equal(t, 3, report.ScannedNew)
	assert.Zero(t, report.CacheHits)

	// Ascending global count: 5, 12, 100000.
	require.Len(t, report.LeastObserved, 3)
	assert.Equal(t, int64(10), report.LeastObserved[0].Species.TaxonID)
	assert.Equal(t, int64(30), report.LeastObserved[1].Species.TaxonID)
	assert.Equal(t, int64(20), report.LeastObserved[2].Species.TaxonID)

	// Taxon 30 has no other observer, so only two rows qualify.
	require.Len(t, report.OldestSeen, 2)
	assert.Equal(t, int64(10), report.OldestSeen[0].Species.TaxonID)
	assert.Equal(t, "2020-05-05T00:00:00Z", report.OldestSeen[0].Recency.ObservedAt)
	assert.Equal(t, int64(20), report.OldestSeen[1].Species.TaxonID)
	assert.Equal(t, "2025-06-14T16:31:02Z", report.OldestSeen[1].Recency.ObservedAt)

	// Every species landed in the cache, including the empty record.
	n, err := cache.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cached, err := cache.Get(context.Background(), 30)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.True(t, cached.Empty())
}

func TestPipelineRun_ResumeUsesCacheVerbatim(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	// A previous run cached taxon 10 with an answer the live API no longer
	// gives. Resume must trust the cache and skip the scan entirely.
	stale := model.RecencyRecord{
		ObservedAt:    "2018-01-01T00:00:00Z",
		ObservationID: 1,
		ObserverLogin: "cached_observer",
	}
	require.NoError(t, cache.Put(ctx, 10, stale))

	var scanned []int64
	p := New(reportFixtureAPI(t, &scanned), cache)

	report, err := p.Run(ctx, Params{Login: "mira_l"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.CacheHits)
	assert.Equal(t, 2, report.ScannedNew)
	assert.NotContains(t, scanned, int64(10), "cached taxa are never rescanned")

	require.NotEmpty(t, report.OldestSeen)
	assert.Equal(t, int64(10), report.OldestSeen[0].Species.TaxonID)
	assert.Equal(t, stale, report.OldestSeen[0].Recency)
}

func TestPipelineRun_RankingsAreReproducible(t *testing.T) {
	first, err := New(reportFixtureAPI(t, nil), newTestCache(t)).Run(context.Background(), Params{Login: "mira_l"})
	require.NoError(t, err)

	second, err := New(reportFixtureAPI(t, nil), newTestCache(t)).Run(context.Background(), Params{Login: "mira_l"})
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.LeastObserved, second.LeastObserved)
	assert.Equal(t, first.OldestSeen, second.OldestSeen)
}

func TestPipelineRun_EmptyAccount(t *testing.T) {
	api := &fakeAPI{
		listUserSpecies: func(_ context.Context, login string) ([]inat.SpeciesCount, error) {
			return nil, nil
		},
	}

	report, err := New(api, newTestCache(t)).Run(context.Background(), Params{Login: "nobody"})
	require.NoError(t, err)

	assert.Zero(t, report.SpeciesTotal)
	assert.Empty(t, report.LeastObserved)
	assert.Empty(t, report.OldestSeen)
}

func TestPipelineRun_UnknownUserFails(t *testing.T) {
	api := &fakeAPI{
		userByLogin: func(_ context.Context, login string) (*inat.User, error) {
			return nil, eris.Errorf("inat: user %q not found", login)
		},
	}

	_, err := New(api, newTestCache(t)).Run(context.Background(), Params{Login: "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPipelineRun_ScanErrorAborts(t *testing.T) {
	api := reportFixtureAPI(t, nil)
	api.searchObservations = func(_ context.Context, q inat.ObservationQuery) (*inat.ObservationPage, error) {
		return nil, eris.New("scan exploded")
	}

	_, err := New(api, newTestCache(t)).Run(context.Background(), Params{Login: "mira_l"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan exploded")
}
