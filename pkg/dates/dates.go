// Package dates provides the calendar-day type used across the service.
// All days live in a single canonical calendar (UTC), with no time
// component, so "2025-03-01" means the same thing on every code path.
package dates

import (
	"errors"
	"time"
)

const Layout = "2006-01-02"

var ErrBadFormat = errors.New("date must be formatted as YYYY-MM-DD")

// Day is a calendar date pinned to midnight UTC. The zero value is a zero
// time.Time and reports IsZero.
type Day struct {
	t time.Time
}

func FromTime(t time.Time) Day {
	t = t.UTC()
	return Day{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func Today() Day {
	return FromTime(time.Now())
}

func Make(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Parse(s string) (Day, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, ErrBadFormat
	}
	return Day{t: t}, nil
}

func (d Day) String() string {
	return d.t.Format(Layout)
}

// Label is the abbreviated weekday name used by the weekly histogram.
func (d Day) Label() string {
	return d.t.Format("Mon")
}

func (d Day) Time() time.Time { return d.t }
func (d Day) IsZero() bool    { return d.t.IsZero() }

func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }

// DaysSince returns d - other in whole calendar days.
func (d Day) DaysSince(other Day) int {
	return int(d.t.Sub(other.t) / (24 * time.Hour))
}

// WeekStart returns the Monday of d's ISO week.
func (d Day) WeekStart() Day {
	wd := int(d.t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return d.AddDays(1 - wd)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Day) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrBadFormat
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
