package dates

import "time"

// IsFuture reports whether n falls strictly after the day containing now.
// Today itself is not in the future. A date without a year is placed in
// whichever of last, this or next year lies closest to today.
func IsFuture(n Normalized, now time.Time) bool {
	switch n.Kind {
	case Imminent:
		return true
	case Calendar:
		today := DateOf(now)
		d := n.Date
		if !d.HasYear() {
			d = nearestYear(d, today)
		}
		return d.After(today)
	default:
		return false
	}
}

// Future normalizes raw and applies IsFuture. Candidates that are not dates
// are never in the future.
func Future(raw string, now time.Time) bool {
	n, ok := Normalize(raw)
	return ok && IsFuture(n, now)
}

func nearestYear(d Date, today Date) Date {
	ref := today.In(time.UTC)
	best := Date{}
	var bestGap time.Duration
	for _, y := range []int{today.Year - 1, today.Year, today.Year + 1} {
		candidate := DateOf(time.Date(y, d.Month, d.Day, 0, 0, 0, 0, time.UTC))
		gap := candidate.In(time.UTC).Sub(ref)
		if gap < 0 {
			gap = -gap
		}
		if best.Year == 0 || gap < bestGap {
			best, bestGap = candidate, gap
		}
	}
	return best
}
