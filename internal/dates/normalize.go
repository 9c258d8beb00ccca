package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PivotYear splits two-digit years: below it they land in the 2000s,
// at or above it in the 1900s.
const PivotYear = 50

var (
	ordinalExpr   = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)`)
	countdownExpr = regexp.MustCompile(`^\d+h\s+\d+m`)
	numericExpr   = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	spaceExpr     = regexp.MustCompile(`\s+`)
	atExpr        = regexp.MustCompile(`\s*@\s*`)
	zoneExpr      = regexp.MustCompile(`(\d(?:am|pm)?)\s*[A-Z]{2,4}\s*\((Start|End)\)$`)
)

type layout struct {
	value     string
	shortYear bool
}

// layouts are tried in order once the positional numeric rule has not
// produced a date. Platform timestamps carry no year and parse to year 0.
var layouts = []layout{
	{value: "January 2, 2006"},
	{value: "Jan 2, 2006"},
	{value: "January 2, 06", shortYear: true},
	{value: "Jan 2, 06", shortYear: true},
	{value: "1/2/2006"},
	{value: "1/2/06", shortYear: true},
	{value: "1-2-2006"},
	{value: "1-2-06", shortYear: true},
	{value: "2006-1-2"},
	{value: "06-1-2", shortYear: true},
	{value: "Jan 2 @ 3:04pm (Start)"},
	{value: "Jan 2 @ 3:04pm (End)"},
	{value: "January 2 @ 3:04pm (Start)"},
	{value: "January 2 @ 3:04pm (End)"},
	{value: "Jan 2 @ 15:04 (Start)"},
	{value: "Jan 2 @ 15:04 (End)"},
}

// Normalize parses a raw candidate. The boolean is false when the candidate
// is not a date; that is not an error, the candidate is simply dropped.
func Normalize(raw string) (Normalized, bool) {
	s := strings.TrimSpace(ordinalExpr.ReplaceAllString(raw, "${1}"))

	if countdownExpr.MatchString(s) {
		return Normalized{Kind: Imminent}, true
	}

	if d, ok := positional(s); ok {
		return Normalized{Kind: Calendar, Date: d}, true
	}

	if d, ok := named(s); ok {
		return Normalized{Kind: Calendar, Date: d}, true
	}

	return Normalized{}, false
}

// positional reads the first M/D/Y or M-D-Y found anywhere in s.
func positional(s string) (Date, bool) {
	m := numericExpr.FindStringSubmatch(s)
	if m == nil {
		return Date{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year = ExpandYear(year)
	}
	if !valid(year, time.Month(month), day) {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}

// named matches the whole of s against the layout list.
func named(s string) (Date, bool) {
	s = spaceExpr.ReplaceAllString(s, " ")
	s = atExpr.ReplaceAllString(s, " @ ")
	s = zoneExpr.ReplaceAllString(s, "${1} (${2})")

	for _, l := range layouts {
		t, err := time.Parse(l.value, s)
		if err != nil {
			continue
		}
		d := DateOf(t)
		if l.shortYear {
			d.Year = ExpandYear(d.Year % 100)
		}
		return d, true
	}
	return Date{}, false
}

// ExpandYear maps a two-digit year onto a full year around PivotYear.
func ExpandYear(yy int) int {
	if yy < PivotYear {
		return 2000 + yy
	}
	return 1900 + yy
}
