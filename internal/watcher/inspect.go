package watcher

import (
	"fmt"
	"time"

	"github.com/jmylchreest/auctionwatch/internal/dates"
	"github.com/jmylchreest/auctionwatch/internal/dedup"
	"github.com/jmylchreest/auctionwatch/internal/extract"
)

// Status values reported for a candidate.
const (
	StatusNew     = "new"
	StatusKnown   = "known"
	StatusPast    = "past"
	StatusNotDate = "not a date"
)

// Verdict is the decision taken for one extracted candidate.
type Verdict struct {
	Candidate string `json:"candidate" yaml:"candidate"`
	Kind      string `json:"kind" yaml:"kind"`
	Date      string `json:"date,omitempty" yaml:"date,omitempty"`
	Status    string `json:"status" yaml:"status"`
}

// Accepted reports whether the candidate becomes a record.
func (v Verdict) Accepted() bool {
	return v.Status == StatusNew
}

// Line renders the verdict for console listings.
func (v Verdict) Line() string {
	return fmt.Sprintf("%-32s %-10s %-12s %s", v.Candidate, v.Kind, v.Date, v.Status)
}

// Inspect extracts candidates from text and decides each one against the
// known set and now. Known candidates are not normalized. tracker may be
// nil, in which case nothing is known. Inspect does not record anything.
func Inspect(e *extract.Extractor, text string, now time.Time, tracker *dedup.Tracker) []Verdict {
	candidates := e.Extract(text)
	verdicts := make([]Verdict, 0, len(candidates))

	for _, raw := range candidates {
		v := Verdict{Candidate: raw}
		if tracker != nil && !tracker.IsNew(raw) {
			v.Status = StatusKnown
			verdicts = append(verdicts, v)
			continue
		}

		n, ok := dates.Normalize(raw)
		v.Kind = n.Kind.String()
		switch {
		case !ok:
			v.Status = StatusNotDate
		case dates.IsFuture(n, now):
			v.Status = StatusNew
		default:
			v.Status = StatusPast
		}
		if n.Kind == dates.Calendar {
			v.Date = n.Date.String()
		}
		verdicts = append(verdicts, v)
	}
	return verdicts
}
