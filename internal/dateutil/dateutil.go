package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a range's end precedes its start.
var ErrInvalidRange = errors.New("end date before start date")

// Day truncates a time to its calendar date, keeping the location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Range returns every calendar day from start to end inclusive, ascending.
// start == end yields exactly one day. The result is a plain slice and can
// be walked any number of times.
func Range(start, end time.Time) ([]time.Time, error) {
	s := Day(start)
	e := Day(end)
	if e.Before(s) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			s.Format("2006-01-02"), e.Format("2006-01-02"))
	}

	var days []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// SameDay reports whether two times fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DaysApart returns the absolute number of calendar days between two
// dates. The calendar dates are compared in UTC, so a 23-hour
// daylight-saving day still counts as a full day.
func DaysApart(a, b time.Time) int {
	d := utcDay(a).Sub(utcDay(b))
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

// utcDay maps a time to midnight UTC of its local calendar date.
func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
