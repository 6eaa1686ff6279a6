package inat

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

func (c *httpClient) UserByLogin(ctx context.Context, login string) (*User, error) {
	q := url.Values{
		"q":        {login},
		"per_page": {"10"},
	}
	var resp usersResponse
	if err := c.getJSON(ctx, "/users/autocomplete", q, &resp); err != nil {
		return nil, eris.Wrapf(err, "inat: resolving user %q", login)
	}
	for i := range resp.Results {
		if strings.EqualFold(resp.Results[i].Login, login) {
			return &resp.Results[i], nil
		}
	}
	return nil, eris.Errorf("inat: user %q not found", login)
}
