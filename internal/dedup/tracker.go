// Package dedup tracks which raw auction-date strings are already known.
package dedup

import "strings"

// Tracker is the set of known date strings. Entries are never removed.
// Matching is on the exact raw string, so two spellings of the same day
// are tracked separately.
//
// A Tracker is owned by a single goroutine and is not safe for concurrent use.
type Tracker struct {
	known map[string]struct{}
}

// NewTracker creates a tracker seeded with values from persisted state.
// Seed values are trimmed; empty values are ignored.
func NewTracker(seed ...string) *Tracker {
	t := &Tracker{known: make(map[string]struct{}, len(seed))}
	for _, s := range seed {
		if s = strings.TrimSpace(s); s != "" {
			t.known[s] = struct{}{}
		}
	}
	return t
}

// IsNew reports whether candidate has not been seen.
func (t *Tracker) IsNew(candidate string) bool {
	_, ok := t.known[candidate]
	return !ok
}

// Record marks candidate as known.
func (t *Tracker) Record(candidate string) {
	t.known[candidate] = struct{}{}
}

// Filter returns the candidates that are new, preserving order.
func (t *Tracker) Filter(candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if t.IsNew(c) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of known strings.
func (t *Tracker) Len() int {
	return len(t.known)
}
