// Package watcher runs the crawl loop: visit every source, keep the dates
// that are new and in the future, persist them, wait, repeat.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/jmylchreest/auctionwatch/internal/auction"
	"github.com/jmylchreest/auctionwatch/internal/dedup"
	"github.com/jmylchreest/auctionwatch/internal/extract"
	"github.com/jmylchreest/auctionwatch/internal/logger"
	"github.com/jmylchreest/auctionwatch/internal/store"
	"github.com/jmylchreest/auctionwatch/pkg/fetcher"
)

// DefaultInterval is the wait between crawl cycles.
const DefaultInterval = 10 * time.Minute

// State is the loop's position in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateCrawling
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCrawling:
		return "crawling"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Recorder persists accepted records.
type Recorder interface {
	Append(ctx context.Context, rec auction.Record) error
}

// Loop owns the known-date set and the records found during a run. It is
// driven by a single goroutine.
type Loop struct {
	sources   []auction.Source
	fetcher   fetcher.Fetcher
	tracker   *dedup.Tracker
	recorder  Recorder
	extractor *extract.Extractor

	interval    time.Duration
	fetchOpts   fetcher.Options
	maxTextSize uint64
	now         func() time.Time
	onState     func(State)

	state atomic.Int32
	found []auction.Record
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the wait between cycles.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithFetchOptions sets the options passed to every fetch.
func WithFetchOptions(opts fetcher.Options) Option {
	return func(l *Loop) {
		l.fetchOpts = opts
	}
}

// WithMaxTextSize caps the page text handed to the extractor. Zero means
// no cap.
func WithMaxTextSize(n uint64) Option {
	return func(l *Loop) {
		l.maxTextSize = n
	}
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(l *Loop) {
		l.extractor = e
	}
}

// WithClock sets the source of "now" for futurity checks.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// WithStateHook registers a function called on every state change, from
// the loop goroutine.
func WithStateHook(fn func(State)) Option {
	return func(l *Loop) {
		l.onState = fn
	}
}

// New creates a loop over sources.
func New(sources []auction.Source, f fetcher.Fetcher, tracker *dedup.Tracker, rec Recorder, opts ...Option) *Loop {
	l := &Loop{
		sources:   sources,
		fetcher:   f,
		tracker:   tracker,
		recorder:  rec,
		extractor: extract.New(),
		interval:  DefaultInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state. Safe to call from any goroutine.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Found returns the records accepted so far, in discovery order.
func (l *Loop) Found() []auction.Record {
	out := make([]auction.Record, len(l.found))
	copy(out, l.found)
	return out
}

// Run crawls until tok is tripped or ctx is done and returns every record
// found. A stop never interrupts a fetch in flight; it takes effect before
// the next source or during the wait.
func (l *Loop) Run(ctx context.Context, tok *Token) []auction.Record {
	l.setState(StateIdle)

	for !l.stopped(ctx, tok) {
		l.Cycle(ctx, tok)
		if l.stopped(ctx, tok) {
			break
		}
		if !l.sleep(ctx, tok) {
			break
		}
	}

	l.setState(StateStopped)
	logger.Info("watcher stopped", "new_auctions", len(l.found))
	return l.Found()
}

// Cycle visits every source once and returns the records it accepted.
func (l *Loop) Cycle(ctx context.Context, tok *Token) []auction.Record {
	l.setState(StateCrawling)
	log := logger.With("cycle", uuid.NewString())
	start := time.Now()

	log.Info("starting crawl cycle", "sources", len(l.sources), "known", l.tracker.Len())

	var added []auction.Record
	for _, src := range l.sources {
		if l.stopped(ctx, tok) {
			log.Info("stop requested, ending cycle early")
			break
		}
		if !src.Crawlable() {
			log.Debug("skipping source without link", "source", src.String(), "link", src.URL)
			continue
		}
		added = append(added, l.visit(ctx, log, src)...)
	}

	log.Info("crawl cycle complete",
		"new", len(added),
		"known", l.tracker.Len(),
		"duration", time.Since(start).Round(time.Millisecond))
	return added
}

// visit fetches one source and processes its candidates in order.
func (l *Loop) visit(ctx context.Context, log *slog.Logger, src auction.Source) []auction.Record {
	log.Info("visiting", "source", src.String(), "url", src.URL)

	content, err := l.fetcher.Fetch(ctx, src.URL, l.fetchOpts)
	if err != nil {
		log.Warn("fetch failed", "source", src.String(), "url", src.URL, "error", err)
		return nil
	}

	text := content.Text
	if l.maxTextSize > 0 && uint64(len(text)) > l.maxTextSize {
		log.Debug("page text truncated",
			"source", src.String(),
			"size", humanize.Bytes(uint64(len(text))),
			"limit", humanize.Bytes(l.maxTextSize))
		text = strings.ToValidUTF8(text[:l.maxTextSize], "")
	}

	var added []auction.Record
	for _, v := range Inspect(l.extractor, text, l.now(), l.tracker) {
		if !v.Accepted() {
			if v.Status != StatusKnown {
				log.Debug("candidate rejected", "candidate", v.Candidate, "status", v.Status, "date", v.Date)
			}
			continue
		}
		raw := v.Candidate
		rec := auction.Record{Source: src, Date: raw}
		l.found = append(l.found, rec)
		l.tracker.Record(raw)
		added = append(added, rec)
		log.Info("new upcoming auction", "source", src.String(), "date", raw, "url", src.URL)

		// A stop must not lose a record that was already accepted.
		if err := l.recorder.Append(context.WithoutCancel(ctx), rec); err != nil {
			if errors.Is(err, store.ErrLocked) {
				log.Warn("record store is locked, will retry on next write", "error", err)
			} else {
				log.Warn("failed to persist record", "source", src.String(), "date", raw, "error", err)
			}
		}
	}
	return added
}

// sleep waits for the interval. It returns false if the wait ended
// because a stop was requested.
func (l *Loop) sleep(ctx context.Context, tok *Token) bool {
	l.setState(StateSleeping)
	logger.Info("waiting for next cycle",
		"interval", l.interval,
		"next", l.now().Add(l.interval).Format(time.Kitchen))

	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-tok.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func (l *Loop) stopped(ctx context.Context, tok *Token) bool {
	return tok.Stopped() || ctx.Err() != nil
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
	if l.onState != nil {
		l.onState(s)
	}
}
