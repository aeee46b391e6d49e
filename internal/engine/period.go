package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned when a year/month pair is out of range.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates and builds a Period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Validate checks the year and month ranges.
func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, int(p.Month))
	}
	return nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

// Start returns the first day of the month.
func (p Period) Start() time.Time {
	return Date(p.Year, p.Month, 1)
}

// Days returns the number of days in the month.
func (p Period) Days() int {
	return p.Start().AddDate(0, 1, -1).Day()
}

// Day returns the given day of the month, clamped to the month's last day.
func (p Period) Day(day int) time.Time {
	if last := p.Days(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return Date(p.Year, p.Month, day)
}

// Contains reports whether the calendar date d falls in the month.
func (p Period) Contains(d time.Time) bool {
	return !d.IsZero() && d.Year() == p.Year && d.Month() == p.Month
}

// Date builds a calendar date at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Civil drops the clock and zone of t, keeping its calendar fields.
func Civil(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return Date(t.Year(), t.Month(), t.Day())
}

// daysBetween returns the whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(Civil(b).Sub(Civil(a)).Hours() / 24)
}

// AddMonths moves d forward n calendar months, clamping the day to the
// target month's length (Jan 31 + 1 month is Feb 28 or 29).
func AddMonths(d time.Time, n int) time.Time {
	target := PeriodOf(Date(d.Year(), d.Month(), 1).AddDate(0, n, 0))
	return target.Day(d.Day())
}
