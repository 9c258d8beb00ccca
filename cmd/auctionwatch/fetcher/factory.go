package fetcher

import (
	"fmt"

	"github.com/jmylchreest/auctionwatch/pkg/fetcher"
)

// New creates a fetcher for mode. When limiter is non-nil every fetch is
// paced per host.
func New(mode fetcher.Mode, cfg Config, limiter *fetcher.HostLimiter) (fetcher.Fetcher, error) {
	var f fetcher.Fetcher

	static := func() fetcher.Fetcher {
		return fetcher.NewStatic(fetcher.StaticConfig{UserAgent: cfg.UserAgent, Timeout: cfg.Timeout})
	}

	switch mode {
	case fetcher.ModeStatic:
		f = static()
	case fetcher.ModeDynamic:
		dynamic, err := NewDynamicFetcher(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamic fetcher: %w", err)
		}
		f = dynamic
	case fetcher.ModeAuto:
		dynamic, err := NewDynamicFetcher(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamic fetcher: %w", err)
		}
		f = fetcher.NewAuto(static(), dynamic)
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", mode)
	}

	if limiter != nil {
		f = fetcher.NewPaced(f, limiter)
	}
	return f, nil
}
