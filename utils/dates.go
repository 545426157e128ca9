// utils/dates.go
package utils

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-day format used in requests and reports.
const DayLayout = "2006-01-02"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// DaysBetween counts calendar days from start to end in their own locations.
// DST transitions do not shift the result.
func DaysBetween(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

// DayKey formats the calendar date of t as seen in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// CalendarDays lists every calendar day in loc from the day of from to the
// day of to, inclusive. It returns nil when to is before from.
func CalendarDays(from, to time.Time, loc *time.Location) []string {
	start := BeginningOfDay(from.In(loc))
	end := to.In(loc)
	if end.Before(start) {
		return nil
	}

	days := make([]string, 0, DaysBetween(start, end)+1)
	for d := start; !d.After(end); {
		days = append(days, d.Format(DayLayout))
		y, m, dd := d.Date()
		d = time.Date(y, m, dd+1, 0, 0, 0, 0, loc)
	}
	return days
}

// ParseDate accepts a calendar day (2006-01-02, midnight in loc) or an
// RFC 3339 timestamp.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(DayLayout, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
}
