package extract

import "regexp"

// Matcher finds raw date-like strings in a block of text.
type Matcher interface {
	Name() string
	Match(text string) []string
}

// PatternMatcher is a Matcher backed by a regular expression. When the
// expression has a capture group, the first group is the candidate;
// otherwise the whole match is.
type PatternMatcher struct {
	name string
	expr *regexp.Regexp
}

// NewPatternMatcher compiles expr into a named matcher.
func NewPatternMatcher(name, expr string) (*PatternMatcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &PatternMatcher{name: name, expr: re}, nil
}

// MustPatternMatcher is like NewPatternMatcher but panics on a bad expression.
func MustPatternMatcher(name, expr string) *PatternMatcher {
	return &PatternMatcher{name: name, expr: regexp.MustCompile(expr)}
}

// Name identifies the matcher in debug logs.
func (m *PatternMatcher) Name() string {
	return m.name
}

// Match returns every non-overlapping match in text.
func (m *PatternMatcher) Match(text string) []string {
	groups := m.expr.FindAllStringSubmatch(text, -1)
	if len(groups) == 0 {
		return nil
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g) > 1 {
			out = append(out, g[1])
		} else {
			out = append(out, g[0])
		}
	}
	return out
}

// Building blocks shared by the default patterns.
const (
	monthWord   = `[A-Za-z]{3,9}`
	ordinal     = `(?:st|nd|rd|th)?`
	slashDate   = `\d{1,2}/\d{1,2}/\d{2,4}`
	dashDate    = `\d{1,2}-\d{1,2}-\d{2,4}`
	longDate    = monthWord + `\s\d{1,2},\s\d{4}`
	longOrdDate = monthWord + `\s\d{1,2}` + ordinal + `,\s\d{4}`
	platformAt  = monthWord + `\s\d{1,2}\s?@\s?\d{1,2}:\d{2}(?:am|pm)?\s?[A-Z]{2,4}\s?`
)

// DefaultMatchers returns the built-in pattern library in evaluation order.
// Order does not affect the result set; it only fixes the debug log order.
func DefaultMatchers() []Matcher {
	return []Matcher{
		MustPatternMatcher("long", `(`+longDate+`)`),
		MustPatternMatcher("long-ordinal", `(`+longOrdDate+`)`),
		MustPatternMatcher("platform-start", `(`+platformAt+`\(Start\))`),
		MustPatternMatcher("platform-end", `(`+platformAt+`\(End\))`),
		MustPatternMatcher("slash", `(`+slashDate+`)`),
		MustPatternMatcher("dash", `(`+dashDate+`)`),
		MustPatternMatcher("slash-range", `(`+slashDate+`\s+to\s+`+slashDate+`)`),
		MustPatternMatcher("dash-range", `(`+dashDate+`\s+to\s+`+dashDate+`)`),
		MustPatternMatcher("closes", `Closes\s+(`+slashDate+`)`),
		MustPatternMatcher("closing-on", `Closing on (`+dashDate+`)`),
		MustPatternMatcher("countdown", `(\d{1,2}h\s\d{1,2}m)`),
		MustPatternMatcher("slash-hyphen-range", `(`+slashDate+`\s*-\s*`+slashDate+`)`),
		MustPatternMatcher("long-range", `(`+longOrdDate+`\s*-\s*`+longOrdDate+`)`),
	}
}
