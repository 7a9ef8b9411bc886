package models

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// PerPage is the registry page size. The listing endpoint is always queried
// with this value.
const PerPage = 100

// DatabaseConfig contains configuration for building and querying the database
type DatabaseConfig struct {
	// Local files
	DatabasePath  string `envconfig:"DATABASE" default:"database.toml"`
	BlacklistPath string `envconfig:"BLACKLIST" default:"blacklist"`

	// Registry
	BaseURL   string `envconfig:"BASE_URL" default:"https://crates.io/api/v1/crates"`
	UserAgent string `envconfig:"USER_AGENT" default:"https://github.com/sigmaSd/rustman"`
	FirstPage int    `envconfig:"FIRST_PAGE" default:"1"`
	LastPage  int    `envconfig:"LAST_PAGE" default:"299"`

	// Fetching
	MaxAttempts       int           `envconfig:"MAX_ATTEMPTS" default:"10"`
	RetryWaitMin      time.Duration `envconfig:"RETRY_WAIT_MIN" default:"0s"`
	RetryWaitMax      time.Duration `envconfig:"RETRY_WAIT_MAX" default:"0s"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	Concurrency       int           `envconfig:"CONCURRENCY" default:"0"` // 0 = one goroutine per page
	RequestsPerSecond float64       `envconfig:"RPS" default:"0"`         // 0 = unlimited

	// Signing
	GPGKeyPath    string `envconfig:"GPG_KEY"`
	GPGPassphrase string `envconfig:"GPG_PASSPHRASE"`

	// Observability
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// LoadConfig reads RUSTMAN_* environment variables on top of the defaults
func LoadConfig() (*DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := envconfig.Process("rustman", &cfg); err != nil {
		return nil, &DatabaseError{
			Type: ErrInvalidConfig,
			Err:  fmt.Errorf("failed to load config: %w", err),
		}
	}
	return &cfg, nil
}

// Validate checks the fetch parameters
func (c *DatabaseConfig) Validate() error {
	if c.FirstPage < 1 || c.LastPage < c.FirstPage {
		return &DatabaseError{
			Type: ErrInvalidConfig,
			Err:  fmt.Errorf("invalid page range %d:%d", c.FirstPage, c.LastPage),
		}
	}
	if c.MaxAttempts < 1 {
		return &DatabaseError{
			Type: ErrInvalidConfig,
			Err:  fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts),
		}
	}
	if c.BaseURL == "" {
		return &DatabaseError{
			Type: ErrInvalidConfig,
			Err:  fmt.Errorf("base url is required"),
		}
	}
	if c.RetryWaitMax < c.RetryWaitMin {
		c.RetryWaitMax = c.RetryWaitMin
	}
	return nil
}

// Pages returns the number of pages in the configured range
func (c *DatabaseConfig) Pages() int {
	return c.LastPage - c.FirstPage + 1
}
