package inat

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

func (c *httpClient) TaxaByIDs(ctx context.Context, ids []int64) ([]Taxon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var resp taxaResponse
	if err := c.getJSON(ctx, "/taxa/"+joinIDs(ids), nil, &resp); err != nil {
		return nil, eris.Wrapf(err, "inat: taxa batch of %d", len(ids))
	}
	return resp.Results, nil
}

func (c *httpClient) SearchTaxa(ctx context.Context, ids []int64) ([]Taxon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{
		"taxon_id": {joinIDs(ids)},
		"per_page": {strconv.Itoa(len(ids))},
	}
	var resp taxaResponse
	if err := c.getJSON(ctx, "/taxa", q, &resp); err != nil {
		return nil, eris.Wrapf(err, "inat: taxa search of %d", len(ids))
	}
	return resp.Results, nil
}

func (c *httpClient) Taxon(ctx context.Context, id int64) (*Taxon, error) {
	taxa, err := c.TaxaByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(taxa) == 0 {
		return nil, eris.Errorf("inat: taxon %d not found", id)
	}
	return &taxa[0], nil
}

func joinIDs(ids []int64) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	return sb.String()
}
