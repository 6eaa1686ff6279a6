// Package inat provides a typed, rate-limited client for the iNaturalist
// API v1. Every request passes through a shared limiter so the process as a
// whole stays under the API's courtesy ceiling, and transient failures are
// retried with exponential backoff, honoring Retry-After when the server
// sends one.
package inat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/inat-tools/rarities/internal/resilience"
)

const (
	defaultBaseURL   = "https://api.inaturalist.org/v1"
	defaultUserAgent = "rarities/0.3.0 (+https://github.com/inat-tools/rarities)"
	defaultMinDelay  = time.Second
	defaultTimeout   = 30 * time.Second

	// maxErrorBody caps how much of a failed response body is kept in the
	// error message.
	maxErrorBody = 512
)

// Client is the API surface the rest of the tool consumes. Implementations
// must be safe for sequential reuse; methods block until the shared rate
// limiter admits the request.
type Client interface {
	// ListUserSpecies pages through the user's species counts until the API
	// returns an empty page, skipping entries without a usable taxon.
	ListUserSpecies(ctx context.Context, login string) ([]SpeciesCount, error)

	// TaxaByIDs fetches a batch of taxa using the comma-joined path form.
	TaxaByIDs(ctx context.Context, ids []int64) ([]Taxon, error)

	// SearchTaxa fetches the same taxa through the query-parameter form,
	// which some deployments tolerate better for long id lists.
	SearchTaxa(ctx context.Context, ids []int64) ([]Taxon, error)

	// Taxon fetches a single taxon by id.
	Taxon(ctx context.Context, id int64) (*Taxon, error)

	// SearchObservations runs one page of an observation search.
	SearchObservations(ctx context.Context, q ObservationQuery) (*ObservationPage, error)

	// Observation fetches a single observation by id.
	Observation(ctx context.Context, id int64) (*Observation, error)

	// ObservationsByIDs fetches a batch of observations in one request.
	ObservationsByIDs(ctx context.Context, ids []int64) ([]Observation, error)

	// UserByLogin resolves a login to an account, matching case-insensitively.
	UserByLogin(ctx context.Context, login string) (*User, error)
}

// APIError is a definitive non-2xx answer from the API: the request reached
// the server and the server said no in a way retrying will not fix.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inat: GET %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

func newAPIError(reqURL string, status int, body []byte) *APIError {
	return &APIError{URL: reqURL, StatusCode: status, Body: truncateBody(body)}
}

func truncateBody(b []byte) string {
	if len(b) <= maxErrorBody {
		return string(b)
	}
	return string(b[:maxErrorBody]) + "..."
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *httpClient) {
		c.http = h
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithMinDelay sets the minimum spacing between consecutive requests. Zero
// disables client-side pacing entirely.
func WithMinDelay(d time.Duration) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetry replaces the retry policy applied to transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// NewClient builds a Client with sensible defaults: the public API root, a
// one-second minimum delay between requests, and the standard retry policy.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(defaultMinDelay), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a rate-limited GET with retries and returns the raw body.
func (c *httpClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	cfg := c.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("inat", path)
	}

	body, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return c.once(ctx, reqURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "inat: GET %s", path)
	}
	return body, nil
}

// once issues a single request attempt, classifying the outcome for the
// retry layer: transport errors and retryable statuses come back as
// transient, everything else is final.
func (c *httpClient) once(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "inat: waiting for rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "inat: building request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(err, 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(err, resp.StatusCode)
	}

	if resilience.RetryableStatus(resp.StatusCode) {
		te := &resilience.TransientError{
			Err:        newAPIError(reqURL, resp.StatusCode, body),
			StatusCode: resp.StatusCode,
		}
		if hint, ok := resilience.ParseRetryAfter(resp.Header.Get("Retry-After")); ok {
			te.RetryAfter = hint
		}
		return nil, te
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(reqURL, resp.StatusCode, body)
	}
	return body, nil
}

// getJSON fetches and decodes a JSON response. Bodies that do not parse are
// a final failure carrying the offending payload, not a retry candidate.
func (c *httpClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "inat: decoding %s response: %s", path, truncateBody(body))
	}
	return nil
}
