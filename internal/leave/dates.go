package leave

import (
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateOnly drops the time of day, keeping the calendar date t has in its own zone.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD and full RFC 3339 timestamps.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return DateOnly(t), true
	}
	return time.Time{}, false
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DayCount is the inclusive number of days in [a, b].
func DayCount(a, b time.Time) int {
	diff := DateOnly(b).Sub(DateOnly(a)).Hours() / 24
	return int(math.Ceil(diff)) + 1
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share a day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !DateOnly(aStart).After(DateOnly(bEnd)) && !DateOnly(aEnd).Before(DateOnly(bStart))
}

// YearBounds returns Jan 1 and Dec 31 of year. Both are whole days, so a
// leave ending on Dec 31 counts that day.
func YearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// clipToYear returns the part of [start, end] inside year and whether any is left.
func clipToYear(start, end time.Time, year int) (time.Time, time.Time, bool) {
	yearStart, yearEnd := YearBounds(year)
	start, end = DateOnly(start), DateOnly(end)
	if start.Before(yearStart) {
		start = yearStart
	}
	if end.After(yearEnd) {
		end = yearEnd
	}
	return start, end, !start.After(end)
}
