// Package auction defines the auction sources and records shared between the
// watcher loop, the record store and the report writers.
package auction

import (
	"fmt"
	"regexp"
	"strings"
)

// Column names of the tabular record store.
const (
	ColumnCounty      = "County"
	ColumnState       = "State"
	ColumnLink        = "Auction Link(s)"
	ColumnNextAuction = "Next Auction"
	ColumnNewAuctions = "New Upcoming Auctions"
)

// Source is one monitored page. Row is the zero-based data row in the store
// and is the source's identity.
type Source struct {
	Row    int    `json:"row" yaml:"row"`
	County string `json:"county" yaml:"county"`
	State  string `json:"state" yaml:"state"`
	URL    string `json:"url" yaml:"url"`
}

// Crawlable reports whether the source link is something the fetcher can visit.
func (s Source) Crawlable() bool {
	return strings.HasPrefix(s.URL, "http")
}

// String renders the source for log lines.
func (s Source) String() string {
	return fmt.Sprintf("%s, %s", s.County, s.State)
}

// Record is a newly discovered upcoming auction. Date is the candidate text
// exactly as it was extracted from the page.
type Record struct {
	Source Source `json:"source" yaml:"source"`
	Date   string `json:"date" yaml:"date"`
}

// Line encodes the record as one line of the "New Upcoming Auctions" cell.
// The dict-like layout is the one earlier versions of the sheet already use.
func (r Record) Line() string {
	return fmt.Sprintf("{%s: %s, %s: %s, %s: %s, %s: %s}",
		quote(ColumnCounty), quote(r.Source.County),
		quote(ColumnState), quote(r.Source.State),
		quote(ColumnLink), quote(r.Source.URL),
		quote(ColumnNextAuction), quote(r.Date))
}

var lineDateExpr = regexp.MustCompile(`'Next Auction':\s*(?:'([^']*)'|"([^"]*)")`)

// DatesFromCell returns the date strings encoded in a "New Upcoming Auctions"
// cell, one per record line. Lines that carry no date are ignored.
func DatesFromCell(cell string) []string {
	var dates []string
	for _, line := range strings.Split(cell, "\n") {
		m := lineDateExpr.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		date := m[1]
		if date == "" {
			date = m[2]
		}
		if date = strings.TrimSpace(date); date != "" {
			dates = append(dates, date)
		}
	}
	return dates
}

// AppendLine adds a record line to an existing cell value.
func AppendLine(cell string, r Record) string {
	if strings.TrimSpace(cell) == "" {
		return r.Line()
	}
	return strings.TrimRight(cell, "\n") + "\n" + r.Line()
}

// quote single-quotes a value, switching to double quotes when the value
// itself contains a single quote.
func quote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
