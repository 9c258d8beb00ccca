// Package fetcher defines the interface for rendering auction pages into text.
// Implementations range from a plain HTTP fetch to a headless browser; the
// polling loop only depends on the Fetcher interface.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	WaitForSelector string        // CSS selector to wait for (dynamic fetchers)
	WaitDuration    time.Duration // Additional wait after load
	Headers         map[string]string
}

// Content represents fetched page data.
type Content struct {
	URL         string
	HTML        string
	Text        string // Visible text, one line per block element
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Mode selects a fetching strategy.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

// ParseMode converts a config string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeStatic, ModeDynamic:
		return m, nil
	default:
		return "", fmt.Errorf("unknown fetch mode: %q", s)
	}
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrAntiBot).
var (
	// ErrAntiBot indicates the site's anti-bot protection served a challenge page.
	ErrAntiBot = errors.New("anti-bot protection detected")
	// ErrChallengeTimeout indicates a timeout while waiting for the page to render.
	ErrChallengeTimeout = errors.New("challenge timeout")
)
