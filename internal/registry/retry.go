package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultMaxAttempts is the number of tries a page gets before the whole
// update is abandoned
const DefaultMaxAttempts = 10

// RetryPolicy bounds the attempts made for a single page
type RetryPolicy struct {
	MaxAttempts int
	WaitMin     time.Duration
	WaitMax     time.Duration

	// OnAttempt, when set, is called after every attempt with its outcome
	OnAttempt func(page, attempt int, err error)
}

// DefaultRetryPolicy retries immediately, up to DefaultMaxAttempts times
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts}
}

// FetchWithRetry calls f.FetchPage until it succeeds or the policy's attempt
// cap is reached. Exhaustion yields an ErrNetwork DatabaseError for the page;
// context cancellation is returned as is.
func FetchWithRetry(ctx context.Context, f Fetcher, page int, policy RetryPolicy) ([]byte, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		body, err := f.FetchPage(ctx, page)
		if policy.OnAttempt != nil {
			policy.OnAttempt(page, attempt+1, err)
		}
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		logrus.Debugf("page %d: attempt %d/%d failed: %v", page, attempt+1, attempts, err)

		if attempt+1 == attempts {
			break
		}
		if err := sleep(ctx, backoff(policy, attempt, err)); err != nil {
			return nil, err
		}
	}

	return nil, &models.DatabaseError{
		Type: models.ErrNetwork,
		Page: page,
		Err:  fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr),
	}
}

// backoff delegates to retryablehttp so Retry-After on 429/503 is honoured
func backoff(policy RetryPolicy, attempt int, err error) time.Duration {
	var resp *http.Response
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		resp = statusErr.Response
	}
	if resp == nil && policy.WaitMax <= 0 {
		return 0
	}
	return retryablehttp.DefaultBackoff(policy.WaitMin, policy.WaitMax, attempt, resp)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
