// Package fetcher provides the browser-backed fetching used by the CLI and
// the factory that assembles a fetcher from configuration.
package fetcher

import (
	"time"

	"github.com/jmylchreest/auctionwatch/pkg/fetcher"
)

// Config holds configuration for the dynamic fetcher.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	Headless  bool
	Settle    time.Duration // Wait after the body is ready, for late scripts
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: fetcher.DefaultUserAgent,
		Timeout:   60 * time.Second,
		Headless:  true,
		Settle:    4 * time.Second,
	}
}
