package fetcher

import (
	"context"
	"errors"
	"strings"

	"github.com/jmylchreest/auctionwatch/internal/logger"
)

// AutoFetcher tries a static fetch first and falls back to a rendering
// fetcher when the page looks like it needs JavaScript.
type AutoFetcher struct {
	static  Fetcher
	dynamic Fetcher
}

// NewAuto creates a fetcher that auto-detects JS requirements.
func NewAuto(static, dynamic Fetcher) *AutoFetcher {
	return &AutoFetcher{static: static, dynamic: dynamic}
}

// Fetch tries static first, then falls back to dynamic if needed.
func (f *AutoFetcher) Fetch(ctx context.Context, url string, opts Options) (Content, error) {
	content, err := f.static.Fetch(ctx, url, opts)
	if err != nil {
		logger.Debug("static fetch failed, retrying with renderer", "url", url, "error", err)
		return f.dynamic.Fetch(ctx, url, opts)
	}

	if NeedsJavaScript(content) {
		logger.Debug("page needs javascript, retrying with renderer", "url", url)
		return f.dynamic.Fetch(ctx, url, opts)
	}

	return content, nil
}

// NeedsJavaScript checks if a page appears to require JS rendering.
func NeedsJavaScript(content Content) bool {
	html := strings.ToLower(content.HTML)
	text := strings.ToLower(content.Text)

	spaMarkers := []string{
		"<div id=\"root\"></div>",   // React
		"<div id=\"app\"></div>",    // Vue
		"<app-root></app-root>",     // Angular
		"<div id=\"__next\"></div>", // Next.js
		"<div id=\"__nuxt\"></div>", // Nuxt.js
		"<div data-reactroot",
		"ng-app",
		"v-cloak",
	}
	for _, marker := range spaMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}

	// Very little text usually means a loading shell.
	if len(strings.TrimSpace(content.Text)) < 100 {
		for _, indicator := range []string{"loading", "please wait", "javascript required", "enable javascript"} {
			if strings.Contains(text, indicator) {
				return true
			}
		}
	}

	if noscript := extractBetween(html, "<noscript>", "</noscript>"); noscript != "" {
		for _, indicator := range []string{"javascript", "enable", "required", "browser"} {
			if strings.Contains(noscript, indicator) {
				return true
			}
		}
	}

	return false
}

// extractBetween extracts content between two markers.
func extractBetween(s, start, end string) string {
	startIdx := strings.Index(s, start)
	if startIdx == -1 {
		return ""
	}
	startIdx += len(start)

	endIdx := strings.Index(s[startIdx:], end)
	if endIdx == -1 {
		return ""
	}
	return s[startIdx : startIdx+endIdx]
}

// Close releases all fetcher resources.
func (f *AutoFetcher) Close() error {
	return errors.Join(f.static.Close(), f.dynamic.Close())
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return string(ModeAuto)
}
