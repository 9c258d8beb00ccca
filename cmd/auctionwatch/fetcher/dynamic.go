package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/auctionwatch/internal/logger"
	"github.com/jmylchreest/auctionwatch/pkg/fetcher"
)

// DynamicFetcher uses chromedp for JavaScript-rendered pages. One browser
// process is shared; every fetch gets its own tab.
type DynamicFetcher struct {
	config    Config
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamicFetcher creates a new dynamic fetcher with a browser allocator.
// The browser itself starts lazily on the first fetch.
func NewDynamicFetcher(cfg Config) (*DynamicFetcher, error) {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)

	// chromedp's default lookup misses some installs
	if chromePath := FindChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("dynamic fetcher created",
		"headless", cfg.Headless,
		"settle", cfg.Settle,
		"timeout", cfg.Timeout)

	return &DynamicFetcher{
		config:    cfg,
		allocCtx:  allocCtx,
		cancelCtx: cancelAlloc,
	}, nil
}

// Fetch retrieves page content using a headless browser.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts fetcher.Options) (fetcher.Content, error) {
	result := fetcher.Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	// Stop the tab if the caller gives up.
	stop := context.AfterFunc(ctx, cancelBrowser)
	defer stop()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	settle := opts.WaitDuration
	if settle == 0 {
		settle = f.config.Settle
	}

	var html, title string
	actions := []chromedp.Action{chromedp.Navigate(targetURL)}

	if opts.WaitForSelector != "" {
		actions = append(actions, chromedp.WaitReady(opts.WaitForSelector))
	} else {
		// WaitVisible polls forever on some pages
		actions = append(actions, chromedp.WaitReady("body"))
	}
	if settle > 0 {
		actions = append(actions, chromedp.Sleep(settle))
	}
	actions = append(actions,
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
	)

	logger.Debug("chromedp executing actions",
		"url", targetURL,
		"action_count", len(actions),
		"timeout", timeout,
		"settle", settle)

	if err := chromedp.Run(timeoutCtx, actions...); err != nil {
		if logger.Logger().Enabled(ctx, slog.LevelDebug) {
			f.saveScreenshot(browserCtx)
		}
		if ctx.Err() != nil {
			return result, fmt.Errorf("browser fetch cancelled: %w", ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "deadline exceeded") {
			logger.Warn("browser timeout - possible anti-bot protection", "url", targetURL)
			return result, fmt.Errorf("%w: %v", fetcher.ErrChallengeTimeout, err)
		}
		return result, fmt.Errorf("browser automation failed: %w", err)
	}

	result.HTML = html
	result.Title = title
	result.StatusCode = 200 // chromedp doesn't easily expose status codes

	if challenge := detectChallengePage(title, html); challenge != "" {
		logger.Warn("challenge page detected", "url", targetURL, "type", challenge)
		return result, fmt.Errorf("%w: %s", fetcher.ErrAntiBot, challenge)
	}

	if err := fetcher.ParseContent(&result); err != nil {
		return result, fmt.Errorf("failed to parse content: %w", err)
	}

	logger.Debug("dynamic fetch complete",
		"url", targetURL,
		"title", title,
		"text_size", len(result.Text))

	return result, nil
}

// saveScreenshot writes a screenshot of the failed tab to the temp dir.
func (f *DynamicFetcher) saveScreenshot(browserCtx context.Context) {
	captureCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	defer cancel()

	var screenshot []byte
	if err := chromedp.Run(captureCtx, chromedp.CaptureScreenshot(&screenshot)); err != nil {
		return
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("auctionwatch-debug-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, screenshot, 0o644); err == nil {
		logger.Debug("debug screenshot saved", "path", path)
	}
}

// challengeTextLimit is the visible text size below which a page carrying a
// CAPTCHA widget is treated as a challenge rather than a form on a real page.
const challengeTextLimit = 200

// detectChallengePage checks if the page content indicates a challenge/CAPTCHA page.
func detectChallengePage(title, html string) string {
	titleLower := strings.ToLower(title)
	htmlLower := strings.ToLower(html)

	// Cloudflare interstitials
	if strings.Contains(titleLower, "just a moment") ||
		strings.Contains(titleLower, "attention required") ||
		strings.Contains(htmlLower, "cf-challenge") ||
		strings.Contains(htmlLower, "cf_chl_opt") {
		return "cloudflare"
	}

	// Generic bot detection pages
	if strings.Contains(titleLower, "access denied") ||
		strings.Contains(titleLower, "bot detection") ||
		strings.Contains(htmlLower, "robot or human") {
		return "anti-bot"
	}

	widget := captchaWidget(htmlLower)
	if widget == "" {
		return ""
	}
	text, err := fetcher.TextFromHTML(html)
	if err == nil && len(strings.TrimSpace(text)) >= challengeTextLimit {
		logger.Debug("captcha widget on content page", "type", widget)
		return ""
	}
	return widget
}

func captchaWidget(htmlLower string) string {
	switch {
	case strings.Contains(htmlLower, "challenges.cloudflare.com/turnstile"),
		strings.Contains(htmlLower, "cf-turnstile"):
		return "cloudflare-turnstile"
	case strings.Contains(htmlLower, "hcaptcha.com"),
		strings.Contains(htmlLower, "h-captcha"):
		return "hcaptcha"
	case strings.Contains(htmlLower, "google.com/recaptcha"),
		strings.Contains(htmlLower, "g-recaptcha"):
		return "recaptcha"
	}
	return ""
}

// Close shuts down the browser.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return string(fetcher.ModeDynamic)
}
