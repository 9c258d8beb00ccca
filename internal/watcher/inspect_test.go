package watcher

import (
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/auctionwatch/internal/dedup"
	"github.com/jmylchreest/auctionwatch/internal/extract"
)

func TestInspect(t *testing.T) {
	text := strings.Join([]string{
		"Next Auction",
		"Closing on 7-15-25",
		"Previous sale: June 6, 2001",
		"Starts in 13h 37m",
		"Already listed: 3/9/2031",
	}, "\n")
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

	got := Inspect(extract.New(), text, now, dedup.NewTracker("3/9/2031"))

	want := map[string]Verdict{
		"7-15-25":      {Candidate: "7-15-25", Kind: "calendar", Date: "2025-07-15", Status: StatusNew},
		"June 6, 2001": {Candidate: "June 6, 2001", Kind: "calendar", Date: "2001-06-06", Status: StatusPast},
		"13h 37m":      {Candidate: "13h 37m", Kind: "imminent", Status: StatusNew},
		"3/9/2031":     {Candidate: "3/9/2031", Status: StatusKnown},
	}

	if len(got) != len(want) {
		t.Fatalf("Inspect() returned %d verdicts, want %d: %+v", len(got), len(want), got)
	}
	for _, v := range got {
		w, ok := want[v.Candidate]
		if !ok {
			t.Errorf("unexpected candidate %q", v.Candidate)
			continue
		}
		if v != w {
			t.Errorf("verdict for %q = %+v, want %+v", v.Candidate, v, w)
		}
	}
}

func TestInspect_NilTrackerAndNotADate(t *testing.T) {
	// 13/45/2020 matches the slash pattern but is no calendar date.
	got := Inspect(extract.New(), "Sale 13/45/2020", time.Now(), nil)

	if len(got) != 1 {
		t.Fatalf("expected 1 verdict, got %+v", got)
	}
	if got[0].Status != StatusNotDate || got[0].Accepted() {
		t.Errorf("verdict = %+v, want rejected as not a date", got[0])
	}
	if got[0].Kind != "not-a-date" {
		t.Errorf("Kind = %q", got[0].Kind)
	}
}

func TestVerdict_Line(t *testing.T) {
	v := Verdict{Candidate: "June 6, 2099", Kind: "calendar", Date: "2099-06-06", Status: StatusNew}
	line := v.Line()
	for _, part := range []string{"June 6, 2099", "calendar", "2099-06-06", "new"} {
		if !strings.Contains(line, part) {
			t.Errorf("Line() = %q, missing %q", line, part)
		}
	}
}
