package registry

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyFetcher fails the first `failures` calls
type flakyFetcher struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyFetcher) FetchPage(ctx context.Context, page int) ([]byte, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	return []byte(`{"crates":[]}`), nil
}

func TestFetchWithRetryRecovers(t *testing.T) {
	f := &flakyFetcher{failures: 9}

	body, err := FetchWithRetry(context.Background(), f, 3, DefaultRetryPolicy())
	require.NoError(t, err)
	assert.Equal(t, `{"crates":[]}`, string(body))
	assert.Equal(t, int32(10), f.calls.Load())
}

func TestFetchWithRetryExhausted(t *testing.T) {
	f := &flakyFetcher{failures: 1000}

	var seen []int
	policy := DefaultRetryPolicy()
	policy.OnAttempt = func(page, attempt int, err error) {
		assert.Equal(t, 42, page)
		assert.Error(t, err)
		seen = append(seen, attempt)
	}

	_, err := FetchWithRetry(context.Background(), f, 42, policy)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrNetwork))
	assert.Contains(t, err.Error(), "page 42")
	assert.Equal(t, int32(DefaultMaxAttempts), f.calls.Load())
	assert.Len(t, seen, DefaultMaxAttempts)

	var dbErr *models.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, 42, dbErr.Page)
}

func TestFetchWithRetryStopsOnCancel(t *testing.T) {
	f := &flakyFetcher{failures: 1000}
	ctx, cancel := context.WithCancel(context.Background())

	policy := RetryPolicy{MaxAttempts: 10, WaitMin: time.Hour, WaitMax: time.Hour}
	policy.OnAttempt = func(page, attempt int, err error) { cancel() }

	_, err := FetchWithRetry(ctx, f, 1, policy)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestBackoffExponential(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, WaitMin: 10 * time.Millisecond, WaitMax: 40 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, backoff(policy, 0, errors.New("eof")))
	assert.Equal(t, 20*time.Millisecond, backoff(policy, 1, errors.New("eof")))
	assert.Equal(t, 40*time.Millisecond, backoff(policy, 5, errors.New("eof")))
	assert.Zero(t, backoff(DefaultRetryPolicy(), 3, errors.New("eof")))
}

func TestBackoffHonoursRetryAfter(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Retry-After": []string{"2"}},
	}
	err := &StatusError{Page: 7, StatusCode: resp.StatusCode, Response: resp}

	assert.Equal(t, 2*time.Second, backoff(DefaultRetryPolicy(), 0, err))
}
