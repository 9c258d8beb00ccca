// Package dates turns raw auction-date candidates into comparable calendar
// days and decides whether they lie in the future.
package dates

import (
	"fmt"
	"time"
)

// Date is a calendar day. Year is zero when the source text did not state one.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// HasYear reports whether the year was present in the source text.
func (d Date) HasYear() bool {
	return d.Year != 0
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	if !d.HasYear() {
		return fmt.Sprintf("--%02d-%02d", int(d.Month), d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// valid reports whether year/month/day name a real day.
func valid(year int, month time.Month, day int) bool {
	if year < 1 || month < time.January || month > time.December || day < 1 {
		return false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Month() == month && t.Day() == day
}

// Kind classifies a normalized candidate.
type Kind uint8

const (
	// NotDate means no rule recognised the candidate.
	NotDate Kind = iota
	// Calendar is a concrete day.
	Calendar
	// Imminent is a countdown with no calendar day, always in the future.
	Imminent
)

func (k Kind) String() string {
	switch k {
	case Calendar:
		return "calendar"
	case Imminent:
		return "imminent"
	default:
		return "not-a-date"
	}
}

// Normalized is the result of normalizing one candidate.
type Normalized struct {
	Kind Kind
	Date Date
}

func (n Normalized) String() string {
	if n.Kind == Calendar {
		return n.Date.String()
	}
	return n.Kind.String()
}
