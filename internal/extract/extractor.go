// Package extract mines page text for strings that look like auction dates.
//
// Extraction is deliberately permissive: every matcher runs independently and
// all hits are kept. Deciding which candidates are real dates is the job of
// the dates package.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jmylchreest/auctionwatch/internal/logger"
)

// DefaultTrigger matches lines that announce an upcoming auction.
var DefaultTrigger = regexp.MustCompile(`(?i)(next|upcoming)\s+auction`)

// DefaultWindow is the number of lines, trigger line included, that are
// rescanned around a trigger phrase.
const DefaultWindow = 3

// Extractor runs a matcher list over page text.
type Extractor struct {
	matchers []Matcher
	trigger  *regexp.Regexp
	window   int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMatchers replaces the matcher list.
func WithMatchers(m ...Matcher) Option {
	return func(e *Extractor) {
		e.matchers = m
	}
}

// WithTrigger replaces the trigger-phrase expression. A nil expression
// disables the proximity rescan.
func WithTrigger(re *regexp.Regexp) Option {
	return func(e *Extractor) {
		e.trigger = re
	}
}

// WithWindow sets how many lines are rescanned from a trigger line.
func WithWindow(lines int) Option {
	return func(e *Extractor) {
		if lines > 0 {
			e.window = lines
		}
	}
}

// New creates an Extractor with the default pattern library.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		matchers: DefaultMatchers(),
		trigger:  DefaultTrigger,
		window:   DefaultWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the unique candidates found in text, sorted.
func (e *Extractor) Extract(text string) []string {
	found := make(map[string]struct{})
	e.scan(text, found)

	if e.trigger != nil {
		lines := splitLines(text)
		for i, line := range lines {
			if !e.trigger.MatchString(line) {
				continue
			}
			end := min(i+e.window, len(lines))
			e.scan(strings.Join(lines[i:end], " "), found)
		}
	}

	out := make([]string, 0, len(found))
	for c := range found {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (e *Extractor) scan(text string, found map[string]struct{}) {
	for _, m := range e.matchers {
		for _, c := range m.Match(text) {
			if _, ok := found[c]; !ok {
				logger.Debug("candidate matched", "matcher", m.Name(), "candidate", c)
				found[c] = struct{}{}
			}
		}
	}
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func splitLines(text string) []string {
	return strings.Split(lineBreaks.Replace(text), "\n")
}
