package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	episodesEndpoint = "episodes"
	userAgent        = "podcastr/1.0"
	maxErrorBody     = 4 << 10
)

// Client talks to the remote episodes service.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithRateLimit caps outgoing requests to perSecond, allowing bursts of burst.
// A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET request for endpoint relative to the base URL and returns the body.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	target := c.baseURL.JoinPath(endpoint)
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, NewAPIError(endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// ListEpisodes fetches episode records selected by q, in the order the service returns them.
func (c *Client) ListEpisodes(ctx context.Context, q ListQuery) ([]RawEpisode, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("_limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		params.Set("_sort", q.Sort)
	}
	if q.Order != "" {
		params.Set("_order", q.Order)
	}

	data, err := c.Get(ctx, episodesEndpoint, params)
	if err != nil {
		return nil, err
	}

	// Numbers stay json.Number so large ids survive decoding exactly.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var episodes []RawEpisode
	if err := dec.Decode(&episodes); err != nil {
		return nil, fmt.Errorf("decoding episodes: %w", err)
	}
	return episodes, nil
}
