package registry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzhttp"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Fetcher retrieves one page of the registry listing. A single call is a
// single attempt; retrying is the caller's business.
type Fetcher interface {
	// FetchPage returns the raw response body for the given 1-based page
	FetchPage(ctx context.Context, page int) ([]byte, error)
}

// StatusError is returned when the registry answers with a non-2xx status
type StatusError struct {
	Page       int
	StatusCode int
	Response   *http.Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("page %d: unexpected status %d", e.Page, e.StatusCode)
}

// HTTPFetcherOptions configures an HTTPFetcher
type HTTPFetcherOptions struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// HTTPFetcher implements Fetcher against the crates.io listing API
type HTTPFetcher struct {
	baseURL string
	client  *resty.Client
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a fetcher sharing one connection pool and one rate
// limiter between all page tasks
func NewHTTPFetcher(opts HTTPFetcherOptions) *HTTPFetcher {
	// Pooled transport from retryablehttp, with gzip/zstd response decoding
	pooled := retryablehttp.NewClient().HTTPClient.Transport

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetQueryParam("per_page", strconv.Itoa(models.PerPage)).
		SetTransport(gzhttp.Transport(pooled)).
		SetLogger(logrus.StandardLogger())

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &HTTPFetcher{
		baseURL: opts.BaseURL,
		client:  client,
		limiter: limiter,
	}
}

// FetchPage issues GET {base}?per_page=100&page={page}
func (f *HTTPFetcher) FetchPage(ctx context.Context, page int) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		Get(f.baseURL)
	if err != nil {
		return nil, err
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &StatusError{
			Page:       page,
			StatusCode: resp.StatusCode(),
			Response:   resp.RawResponse,
		}
	}

	return resp.Body(), nil
}
