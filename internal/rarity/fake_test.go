package rarity

import (
	"context"

	"github.com/inat-tools/rarities/pkg/inat"
)

// fakeAPI implements inat.Client with per-method hooks so each test wires
// only the calls it expects. Unwired methods return empty results.
type fakeAPI struct {
	listUserSpecies    func(ctx context.Context, login string) ([]inat.SpeciesCount, error)
	taxaByIDs          func(ctx context.Context, ids []int64) ([]inat.Taxon, error)
	searchTaxa         func(ctx context.Context, ids []int64) ([]inat.Taxon, error)
	taxon              func(ctx context.Context, id int64) (*inat.Taxon, error)
	searchObservations func(ctx context.Context, q inat.ObservationQuery) (*inat.ObservationPage, error)
	observation        func(ctx context.Context, id int64) (*inat.Observation, error)
	observationsByIDs  func(ctx context.Context, ids []int64) ([]inat.Observation, error)
	userByLogin        func(ctx context.Context, login string) (*inat.User, error)
}

func (f *fakeAPI) ListUserSpecies(ctx context.Context, login string) ([]inat.SpeciesCount, error) {
	if f.listUserSpecies == nil {
		return nil, nil
	}
	return f.listUserSpecies(ctx, login)
}

func (f *fakeAPI) TaxaByIDs(ctx context.Context, ids []int64) ([]inat.Taxon, error) {
	if f.taxaByIDs == nil {
		return nil, nil
	}
	return f.taxaByIDs(ctx, ids)
}

func (f *fakeAPI) SearchTaxa(ctx context.Context, ids []int64) ([]inat.Taxon, error) {
	if f.searchTaxa == nil {
		return nil, nil
	}
	return f.searchTaxa(ctx, ids)
}

func (f *fakeAPI) Taxon(ctx context.Context, id int64) (*inat.Taxon, error) {
	if f.taxon == nil {
		return &inat.Taxon{ID: id}, nil
	}
	return f.taxon(ctx, id)
}

func (f *fakeAPI) SearchObservations(ctx context.Context, q inat.ObservationQuery) (*inat.ObservationPage, error) {
	if f.searchObservations == nil {
		return &inat.ObservationPage{}, nil
	}
	return f.searchObservations(ctx, q)
}

func (f *fakeAPI) Observation(ctx context.Context, id int64) (*inat.Observation, error) {
	if f.observation == nil {
		return &inat.Observation{ID: id}, nil
	}
	return f.observation(ctx, id)
}

func (f *fakeAPI) ObservationsByIDs(ctx context.Context, ids []int64) ([]inat.Observation, error) {
	if f.observationsByIDs == nil {
		return nil, nil
	}
	return f.observationsByIDs(ctx, ids)
}

func (f *fakeAPI) UserByLogin(ctx context.Context, login string) (*inat.User, error) {
	if f.userByLogin == nil {
		return &inat.User{Login: login}, nil
	}
	return f.userByLogin(ctx, login)
}
