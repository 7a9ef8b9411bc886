package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(url string) *HTTPFetcher {
	return NewHTTPFetcher(HTTPFetcherOptions{
		BaseURL:   url,
		UserAgent: "rustman-db-test",
		Timeout:   5 * time.Second,
	})
}

func TestHTTPFetcherRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rustman-db-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "17", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"crates":[]}`))
	}))
	defer srv.Close()

	body, err := newTestFetcher(srv.URL).FetchPage(context.Background(), 17)
	require.NoError(t, err)
	assert.JSONEq(t, `{"crates":[]}`, string(body))
}

func TestHTTPFetcherGzipBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte(`{"crates":[{"name":"rand","max_version":"0.8.5","description":"rng"}]}`))
		gz.Close()
	}))
	defer srv.Close()

	body, err := newTestFetcher(srv.URL).FetchPage(context.Background(), 1)
	require.NoError(t, err)

	crates, _, err := ParsePage(body)
	require.NoError(t, err)
	require.Len(t, crates, 1)
	assert.Equal(t, "rand", crates[0].Name)
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).FetchPage(context.Background(), 5)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, 5, statusErr.Page)
}

func TestHTTPFetcherRetriedThroughPolicy(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"crates":[]}`))
	}))
	defer srv.Close()

	_, err := FetchWithRetry(context.Background(), newTestFetcher(srv.URL), 1, DefaultRetryPolicy())
	require.NoError(t, err)
	assert.Equal(t, 3, hits)
}
