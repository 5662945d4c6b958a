package align

import (
	"slices"
	"time"
)

// MonthLayout formats a month label in continuity reports.
const MonthLayout = "2006-01"

// Continuity compares a timestamp axis with the uniform month-start calendar
// spanning its first and last entries.
type Continuity struct {
	// Empty is set when there was nothing to check.
	Empty bool
	// Continuous is true when the axis equals the expected calendar element-wise.
	Continuous bool
	Expected   []time.Time
	// Missing holds expected months absent from the axis, ascending.
	Missing []time.Time
}

// CheckContinuity builds the month-start sequence covering [min, max] of
// times, keeping the time of day of the earliest entry, and reports whether times matches it exactly. An empty axis yields
// an Empty, Continuous result. The input is not modified.
func CheckContinuity(times []time.Time) Continuity {
	if len(times) == 0 {
		return Continuity{Empty: true, Continuous: true}
	}

	first := slices.MinFunc(times, compareTime)
	last := slices.MaxFunc(times, compareTime)

	expected := monthStarts(first, last)

	present := make(map[int64]struct{}, len(times))
	for _, ts := range times {
		present[ts.UnixNano()] = struct{}{}
	}

	var missing []time.Time

	for _, ts := range expected {
		if _, ok := present[ts.UnixNano()]; !ok {
			missing = append(missing, ts)
		}
	}

	return Continuity{
		Continuous: slices.EqualFunc(expected, times, time.Time.Equal),
		Expected:   expected,
		Missing:    missing,
	}
}

// MissingLabels returns up to limit missing months formatted as YYYY-MM and
// whether the list was truncated. A limit of zero or less returns every month.
func (c Continuity) MissingLabels(limit int) ([]string, bool) {
	shown := c.Missing
	truncated := false

	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
		truncated = true
	}

	labels := make([]string, len(shown))
	for i, ts := range shown {
		labels[i] = ts.Format(MonthLayout)
	}

	return labels, truncated
}

// monthStarts returns every first-of-month in [from, to] at the time of
// day of from.
func monthStarts(from, to time.Time) []time.Time {
	cur := time.Date(from.Year(), from.Month(), 1,
		from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
	if cur.Before(from) {
		cur = cur.AddDate(0, 1, 0)
	}

	var out []time.Time

	for !cur.After(to) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}

	return out
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}
