package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits requests per hostname. Several counties often
// share one auction platform, so pacing is per host rather than global.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

// NewHostLimiter creates a limiter allowing reqPerSec requests per host.
// A non-positive rate disables pacing.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	r := rate.Limit(reqPerSec)
	if reqPerSec <= 0 {
		r = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: r,
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

// WaitURL blocks until a request to raw's host is allowed.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}

// Paced wraps a Fetcher so that every fetch first waits on a HostLimiter.
type Paced struct {
	next    Fetcher
	limiter *HostLimiter
}

// NewPaced wraps next with per-host pacing.
func NewPaced(next Fetcher, limiter *HostLimiter) *Paced {
	return &Paced{next: next, limiter: limiter}
}

// Fetch waits for the host's turn, then delegates.
func (p *Paced) Fetch(ctx context.Context, targetURL string, opts Options) (Content, error) {
	if err := p.limiter.WaitURL(ctx, targetURL); err != nil {
		return Content{URL: targetURL}, fmt.Errorf("rate limit wait: %w", err)
	}
	return p.next.Fetch(ctx, targetURL, opts)
}

// Close closes the wrapped fetcher.
func (p *Paced) Close() error {
	return p.next.Close()
}

// Type returns the wrapped fetcher's type.
func (p *Paced) Type() string {
	return p.next.Type()
}
