package series

import (
	"strings"
	"time"
	"unicode"
)

// timeLayouts are tried in order when parsing a timestamp cell.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// ParseTime parses a timestamp cell using the first matching layout.
// Surrounding whitespace is ignored. The result carries the written wall
// clock in UTC; a zone offset is dropped, not applied, so a month-start
// stamp stays in its month.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), true
		}
	}

	return time.Time{}, false
}

// CanonicalName collapses whitespace runs in a column header and title-cases it.
func CanonicalName(header string) string {
	return TitleCase(strings.Join(strings.Fields(header), " "))
}

// TitleCase upper-cases every letter that follows a non-letter and lower-cases
// the rest, so "y2k fashion" becomes "Y2K Fashion".
func TitleCase(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	prevLetter := false

	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			prevLetter = false
		case prevLetter:
			r = unicode.ToLower(r)
		default:
			r = unicode.ToTitle(r)
			prevLetter = true
		}

		b.WriteRune(r)
	}

	return b.String()
}
