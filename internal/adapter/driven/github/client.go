// Package github implements the RepositoryDataSource port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepositoryDataSource = (*Client)(nil)

const (
	maxPerPage           = 100
	defaultMaxRetries    = 2
	defaultRetryInterval = 500 * time.Millisecond
	lowRateThreshold     = 100
)

// Client implements the driven.RepositoryDataSource port using the go-github library.
type Client struct {
	gh            *gh.Client
	maxRetries    uint64
	retryInterval time.Duration
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching; 304s do not count against quota)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when token is non-empty)
//
// Server errors and transport failures are retried with exponential backoff.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{
		gh:            client,
		maxRetries:    defaultMaxRetries,
		retryInterval: defaultRetryInterval,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
// Retries use a short interval so tests stay fast.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:            client,
		maxRetries:    defaultMaxRetries,
		retryInterval: time.Millisecond,
	}, nil
}

// call runs fn with retries. 404s, rate limits, and other client errors are
// permanent; 5xx and transport errors are retried up to maxRetries times.
func (c *Client) call(ctx context.Context, endpoint string, fn func() (*gh.Response, error)) error {
	op := func() error {
		resp, err := fn()
		logRateLimit(resp, endpoint)
		if err == nil {
			return nil
		}
		return classifyError(ctx, resp, err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
}

// classifyError maps a go-github error to port sentinels and decides whether
// it is worth retrying.
func classifyError(ctx context.Context, resp *gh.Response, err error) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError

	switch {
	case ctx.Err() != nil:
		return backoff.Permanent(err)
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return backoff.Permanent(fmt.Errorf("%w: %w", driven.ErrRateLimited, err))
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(fmt.Errorf("%w: %w", driven.ErrNotFound, err))
	case resp != nil && resp.StatusCode >= http.StatusInternalServerError:
		return err
	case resp != nil:
		return backoff.Permanent(err)
	default:
		return err
	}
}

// paginate follows Link headers until limit items are collected or the last
// page is reached. page must be the ListOptions that fetch sends.
func paginate[T any](ctx context.Context, c *Client, endpoint string, limit int, page *gh.ListOptions, fetch func() ([]T, *gh.Response, error)) ([]T, error) {
	if limit <= 0 {
		limit = maxPerPage
	}
	page.PerPage = min(limit, maxPerPage)

	all := make([]T, 0, page.PerPage)
	for {
		var items []T
		var resp *gh.Response

		err := c.call(ctx, endpoint, func() (*gh.Response, error) {
			var err error
			items, resp, err = fetch()
			return resp, err
		})
		if err != nil {
			return nil, fmt.Errorf("listing %s (page %d): %w", endpoint, page.Page, err)
		}

		all = append(all, items...)
		if len(all) >= limit {
			return all[:limit], nil
		}
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		page.Page = resp.NextPage
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < lowRateThreshold {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
