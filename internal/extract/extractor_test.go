package extract

import (
	"reflect"
	"testing"
)

// --- Extract Tests ---

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "long form",
			text: "Auction: June 6, 2099",
			want: []string{"June 6, 2099"},
		},
		{
			name: "closing on prefix",
			text: "Simulcast Begins Closing on 7-15-25",
			want: []string{"7-15-25"},
		},
		{
			name: "closes prefix",
			text: "Lot 14 Closes 06/04/2025",
			want: []string{"06/04/2025"},
		},
		{
			name: "numeric range with to",
			text: "Sale runs 06/6/24 to 06/20/24",
			want: []string{"06/20/24", "06/6/24", "06/6/24 to 06/20/24"},
		},
		{
			name: "numeric range with hyphen",
			text: "Bidding 06/6/24 - 06/20/24",
			want: []string{"06/20/24", "06/6/24", "06/6/24 - 06/20/24"},
		},
		{
			name: "dash range",
			text: "6-6-24 to 6-20-24",
			want: []string{"6-20-24", "6-6-24", "6-6-24 to 6-20-24"},
		},
		{
			name: "long ordinal range",
			text: "June 6th, 2024 - June 20th, 2024",
			want: []string{"June 20th, 2024", "June 6th, 2024", "June 6th, 2024 - June 20th, 2024"},
		},
		{
			name: "platform timestamps",
			text: "Jul 1 @ 12:00pm EDT (Start)\nJul 8 @ 12:00pm EDT (End)",
			want: []string{"Jul 1 @ 12:00pm EDT (Start)", "Jul 8 @ 12:00pm EDT (End)"},
		},
		{
			name: "countdown",
			text: "Next Auction\nEnds in\n13h 37m",
			want: []string{"13h 37m"},
		},
		{
			name: "duplicates collapse",
			text: "June 6, 2099\nReminder: June 6, 2099",
			want: []string{"June 6, 2099"},
		},
		{
			name: "no candidates",
			text: "Welcome to the county tax sale page.",
			want: []string{},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtract_TriggerWindowRecoversWrappedDate(t *testing.T) {
	e := New()

	got := e.Extract("Next Auction:\r\nJune 6,\r\n2099")
	want := []string{"June 6, 2099"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_TriggerIsCaseInsensitive(t *testing.T) {
	e := New()

	got := e.Extract("UPCOMING   AUCTION\nJune 6,\r\n2099")
	want := []string{"June 6, 2099"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_WrappedDateWithoutTrigger(t *testing.T) {
	e := New()

	got := e.Extract("Auction Date:\r\nJune 6,\r\n2099")
	if len(got) != 0 {
		t.Errorf("expected no candidates without a trigger phrase, got %q", got)
	}
}

func TestExtract_TriggerWindowIsBounded(t *testing.T) {
	e := New()

	// The wrapped date starts on the fourth line after the trigger.
	text := "Next Auction\none\ntwo\nJune 6,\r\n2099"
	if got := e.Extract(text); len(got) != 0 {
		t.Errorf("expected window to stop after three lines, got %q", got)
	}

	wide := New(WithWindow(5))
	if got := wide.Extract(text); !reflect.DeepEqual(got, []string{"June 6, 2099"}) {
		t.Errorf("expected wider window to recover date, got %q", got)
	}
}

func TestExtract_TriggerDisabled(t *testing.T) {
	e := New(WithTrigger(nil))

	if got := e.Extract("Next Auction:\r\nJune 6,\r\n2099"); len(got) != 0 {
		t.Errorf("expected no candidates with trigger disabled, got %q", got)
	}
}

func TestExtract_CustomMatchers(t *testing.T) {
	iso := MustPatternMatcher("iso", `\d{4}-\d{2}-\d{2}`)
	e := New(WithMatchers(iso))

	got := e.Extract("Sale on 2099-06-06, deposit by June 1, 2099")
	want := []string{"2099-06-06"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

// --- PatternMatcher Tests ---

func TestNewPatternMatcher_InvalidExpression(t *testing.T) {
	if _, err := NewPatternMatcher("bad", `(`); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestPatternMatcher_UsesFirstGroup(t *testing.T) {
	m := MustPatternMatcher("closes", `Closes\s+(\d{1,2}/\d{1,2}/\d{2,4})`)

	got := m.Match("Closes 06/04/2025 and Closes 7/1/25")
	want := []string{"06/04/2025", "7/1/25"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match() = %q, want %q", got, want)
	}
}

func TestDefaultMatchers_Independent(t *testing.T) {
	matchers := DefaultMatchers()
	if len(matchers) != 13 {
		t.Fatalf("expected 13 default matchers, got %d", len(matchers))
	}

	seen := map[string]bool{}
	for _, m := range matchers {
		if seen[m.Name()] {
			t.Errorf("duplicate matcher name %q", m.Name())
		}
		seen[m.Name()] = true
	}
}

func TestDefaultTrigger(t *testing.T) {
	for _, line := range []string{"Next Auction", "next   auction date", "Our UPCOMING auction"} {
		if !DefaultTrigger.MatchString(line) {
			t.Errorf("expected trigger to match %q", line)
		}
	}
	if DefaultTrigger.MatchString("Auction results") {
		t.Error("trigger should not match plain auction text")
	}
}
