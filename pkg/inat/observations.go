package inat

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// ObservationQuery narrows an observation search. Zero-valued fields are
// omitted from the request, letting the API apply its own defaults.
type ObservationQuery struct {
	TaxonID int64
	OrderBy string
	Order   string
	Page    int
	PerPage int
}

func (q ObservationQuery) values() url.Values {
	vals := url.Values{}
	if q.TaxonID > 0 {
		vals.Set("taxon_id", strconv.FormatInt(q.TaxonID, 10))
	}
	if q.OrderBy != "" {
		vals.Set("order_by", q.OrderBy)
	}
	if q.Order != "" {
		vals.Set("order", q.Order)
	}
	if q.Page > 0 {
		vals.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		vals.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return vals
}

func (c *httpClient) SearchObservations(ctx context.Context, q ObservationQuery) (*ObservationPage, error) {
	var resp ObservationPage
	if err := c.getJSON(ctx, "/observations", q.values(), &resp); err != nil {
		return nil, eris.Wrapf(err, "inat: observation search taxon %d page %d", q.TaxonID, q.Page)
	}
	return &resp, nil
}

func (c *httpClient) Observation(ctx context.Context, id int64) (*Observation, error) {
	var resp ObservationPage
	if err := c.getJSON(ctx, "/observations/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, eris.Wrapf(err, "inat: observation %d", id)
	}
	if len(resp.Results) == 0 {
		return nil, eris.Errorf("inat: observation %d not found", id)
	}
	return &resp.Results[0], nil
}

func (c *httpClient) ObservationsByIDs(ctx context.Context, ids []int64) ([]Observation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var resp ObservationPage
	if err := c.getJSON(ctx, "/observations/"+joinIDs(ids), nil, &resp); err != nil {
		return nil, eris.Wrapf(err, "inat: observations batch of %d", len(ids))
	}
	return resp.Results, nil
}
