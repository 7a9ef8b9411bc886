package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sigmaSd/rustman-database/internal/database"
	"github.com/sigmaSd/rustman-database/internal/metrics"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sigmaSd/rustman-database/internal/registry"
	"github.com/sigmaSd/rustman-database/internal/signer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewUpdateCmd creates the update command
func NewUpdateCmd(cfg *models.DatabaseConfig) *cobra.Command {
	pages := fmt.Sprintf("%d:%d", cfg.FirstPage, cfg.LastPage)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Rebuild the database from the registry",
		Long: `Fetches every page of the configured range concurrently, rebuilds the
crate collection from scratch and saves it. Nothing is written if any page
fails after all retries or returns a malformed body.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			first, last, err := parsePageRange(pages)
			if err != nil {
				return err
			}
			cfg.FirstPage, cfg.LastPage = first, last

			if err := cfg.Validate(); err != nil {
				return err
			}

			logrus.Debugf("Configuration: %+v", redact(*cfg))

			return runUpdate(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Registry listing endpoint")
	cmd.Flags().StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent sent with every request")
	cmd.Flags().StringVar(&pages, "pages", pages, "Inclusive page range FIRST:LAST")

	cmd.Flags().IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Attempts per page before the update is aborted")
	cmd.Flags().DurationVar(&cfg.RetryWaitMin, "retry-wait-min", cfg.RetryWaitMin, "Minimum wait between attempts")
	cmd.Flags().DurationVar(&cfg.RetryWaitMax, "retry-wait-max", cfg.RetryWaitMax, "Maximum wait between attempts")
	cmd.Flags().DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Per-request timeout")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Pages fetched at once (0 = all)")
	cmd.Flags().Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "Request rate limit (0 = unlimited)")

	cmd.Flags().StringVarP(&cfg.GPGKeyPath, "gpg-key", "k", cfg.GPGKeyPath, "Sign the database with this OpenPGP private key")
	cmd.Flags().StringVarP(&cfg.GPGPassphrase, "gpg-passphrase", "p", cfg.GPGPassphrase, "GPG key passphrase")

	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address while updating")

	return cmd
}

func runUpdate(ctx context.Context, cfg *models.DatabaseConfig) error {
	m := metrics.New()
	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr, m)
		defer stop()
	}

	var opts []database.Option
	if cfg.GPGKeyPath != "" {
		gpgSigner, err := signer.NewGPGSigner(cfg.GPGKeyPath, cfg.GPGPassphrase)
		if err != nil {
			return &models.DatabaseError{
				Type: models.ErrInvalidConfig,
				Path: cfg.GPGKeyPath,
				Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
			}
		}
		logrus.Info("GPG signer initialized")
		opts = append(opts, database.WithSigner(gpgSigner))
	}

	fetcher := registry.NewHTTPFetcher(registry.HTTPFetcherOptions{
		BaseURL:           cfg.BaseURL,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	updater := database.NewUpdater(fetcher,
		database.WithPageRange(cfg.FirstPage, cfg.LastPage),
		database.WithConcurrency(cfg.Concurrency),
		database.WithMetrics(m),
		database.WithRetryPolicy(registry.RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			WaitMin:     cfg.RetryWaitMin,
			WaitMax:     cfg.RetryWaitMax,
		}),
	)

	db := database.New(updater, opts...)
	if err := db.Update(ctx); err != nil {
		return err
	}

	return db.Save(cfg.DatabasePath)
}

// serveMetrics exposes /metrics until the returned stop function is called
func serveMetrics(addr string, m *metrics.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logrus.Infof("Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Warnf("Metrics server stopped: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// parsePageRange parses FIRST:LAST
func parsePageRange(s string) (int, int, error) {
	firstStr, lastStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, &models.DatabaseError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("page range %q must look like FIRST:LAST", s),
		}
	}

	first, err := strconv.Atoi(strings.TrimSpace(firstStr))
	if err != nil {
		return 0, 0, &models.DatabaseError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("invalid first page: %w", err)}
	}
	last, err := strconv.Atoi(strings.TrimSpace(lastStr))
	if err != nil {
		return 0, 0, &models.DatabaseError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("invalid last page: %w", err)}
	}
	return first, last, nil
}

func redact(cfg models.DatabaseConfig) models.DatabaseConfig {
	if cfg.GPGPassphrase != "" {
		cfg.GPGPassphrase = "***"
	}
	return cfg
}
