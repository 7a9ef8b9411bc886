package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sigmaSd/rustman-database/internal/metrics"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sigmaSd/rustman-database/internal/registry"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Default page range. The registry total is never consulted: pages past the
// end come back empty and crates past the last page are not seen.
const (
	DefaultFirstPage = 1
	DefaultLastPage  = 299
)

// Updater rebuilds a collection by fetching every page of a fixed range
// concurrently
type Updater struct {
	fetcher     registry.Fetcher
	policy      registry.RetryPolicy
	firstPage   int
	lastPage    int
	concurrency int
	metrics     *metrics.Metrics
}

// UpdaterOption customizes an Updater
type UpdaterOption func(*Updater)

// WithPageRange sets the inclusive page range
func WithPageRange(first, last int) UpdaterOption {
	return func(u *Updater) {
		u.firstPage = first
		u.lastPage = last
	}
}

// WithRetryPolicy sets the per-page retry policy
func WithRetryPolicy(policy registry.RetryPolicy) UpdaterOption {
	return func(u *Updater) {
		u.policy = policy
	}
}

// WithConcurrency caps the number of pages in flight; 0 runs every page at once
func WithConcurrency(n int) UpdaterOption {
	return func(u *Updater) {
		u.concurrency = n
	}
}

// WithMetrics records pipeline metrics into m
func WithMetrics(m *metrics.Metrics) UpdaterOption {
	return func(u *Updater) {
		u.metrics = m
	}
}

// NewUpdater creates an updater for pages 1..299 with the default retry policy
func NewUpdater(fetcher registry.Fetcher, opts ...UpdaterOption) *Updater {
	u := &Updater{
		fetcher:   fetcher,
		policy:    registry.DefaultRetryPolicy(),
		firstPage: DefaultFirstPage,
		lastPage:  DefaultLastPage,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.metrics == nil {
		u.metrics = metrics.New()
	}
	return u
}

// Update clears agg and refills it from the registry. Any page that exhausts
// its retries or returns a malformed body aborts the whole update and cancels
// the pages still in flight; agg then holds leftovers, not a snapshot.
func (u *Updater) Update(ctx context.Context, agg *Aggregator) error {
	if u.firstPage < 1 || u.lastPage < u.firstPage {
		return &models.DatabaseError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("invalid page range %d:%d", u.firstPage, u.lastPage),
		}
	}

	log := logrus.WithFields(logrus.Fields{
		"run":   uuid.NewString(),
		"pages": u.lastPage - u.firstPage + 1,
	})
	log.Info("Starting database update...")
	start := time.Now()

	agg.Clear()

	// Page tasks hand their crates to a single collector goroutine
	results := make(chan []models.Crate)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for batch := range results {
			agg.PushAll(batch)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	if u.concurrency > 0 {
		g.SetLimit(u.concurrency)
	}

	policy := u.policy
	onAttempt := policy.OnAttempt
	policy.OnAttempt = func(page, attempt int, err error) {
		u.metrics.ObserveAttempt(err)
		if onAttempt != nil {
			onAttempt(page, attempt, err)
		}
	}

	for page := u.firstPage; page <= u.lastPage; page++ {
		page := page
		g.Go(func() error {
			return u.runPage(gctx, page, policy, results)
		})
	}

	err := g.Wait()
	close(results)
	<-collected

	if err != nil {
		if ctx.Err() != nil && !isDatabaseError(err) {
			err = &models.DatabaseError{
				Type: models.ErrCanceled,
				Err:  fmt.Errorf("update canceled: %w", err),
			}
		}
		log.WithError(err).Error("Database update failed")
		return err
	}

	elapsed := time.Since(start)
	u.metrics.Records.Set(float64(agg.Len()))
	u.metrics.UpdateDuration.Observe(elapsed.Seconds())

	log.WithFields(logrus.Fields{
		"records":  agg.Len(),
		"duration": elapsed.Round(time.Millisecond),
	}).Info("Database update completed")

	return nil
}

// runPage fetches, parses and forwards one page
func (u *Updater) runPage(ctx context.Context, page int, policy registry.RetryPolicy, results chan<- []models.Crate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := registry.FetchWithRetry(ctx, u.fetcher, page, policy)
	if err != nil {
		return err
	}

	crates, dropped, err := registry.ParsePage(body)
	if err != nil {
		return &models.DatabaseError{
			Type: models.ErrMalformedResponse,
			Page: page,
			Err:  err,
		}
	}

	u.metrics.PagesFetched.Inc()
	u.metrics.RecordsDropped.Add(float64(dropped))
	logrus.Debugf("page %d: %d crates, %d without version", page, len(crates), dropped)

	select {
	case results <- crates:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isDatabaseError(err error) bool {
	var dbErr *models.DatabaseError
	return errors.As(err, &dbErr)
}
