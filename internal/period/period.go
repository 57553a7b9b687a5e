// Package period provides the calendar arithmetic shared by the rental
// billing and reservation engines: monthly period keys, due-day clamping and
// nightly-stay counting. Everything here is pure.
package period

import (
	"errors"
	"fmt"
	"time"
)

// MaxRangePeriods caps a single due-date generation range.
const MaxRangePeriods = 24

var (
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrReversedRange = errors.New("reversed_period_range")
	ErrRangeTooLarge = errors.New("period_range_too_large")
)

// Period identifies one billing month.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func New(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

func (p Period) Valid() bool {
	return p.Year > 0 && p.Month >= time.January && p.Month <= time.December
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Index is a monotonically increasing month counter used for comparisons.
func (p Period) Index() int {
	return p.Year*12 + int(p.Month) - 1
}

// Range expands the inclusive [from, to] bounds into individual periods.
// Reversed bounds and ranges longer than MaxRangePeriods are rejected.
func Range(from, to Period) ([]Period, error) {
	if !from.Valid() || !to.Valid() {
		return nil, ErrInvalidPeriod
	}
	if to.Index() < from.Index() {
		return nil, ErrReversedRange
	}
	count := to.Index() - from.Index() + 1
	if count > MaxRangePeriods {
		return nil, ErrRangeTooLarge
	}

	periods := make([]Period, 0, count)
	for p := from; p.Index() <= to.Index(); p = p.Next() {
		periods = append(periods, p)
	}
	return periods, nil
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps a due-day-of-month to the days the month actually has, so a
// tenant due on the 31st is billed on Feb 28 (or 29 in leap years).
func ClampDay(day, year int, month time.Month) int {
	if day < 1 {
		return 1
	}
	if max := DaysInMonth(year, month); day > max {
		return max
	}
	return day
}

// DueOn resolves the due calendar date for a period given the tenant's
// due-day-of-month.
func DueOn(p Period, dueDay int) time.Time {
	day := ClampDay(dueDay, p.Year, p.Month)
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// Nights counts billable nights between check-in and check-out, rounding
// partial days up. A stay shorter than one day still bills one night.
func Nights(checkIn, checkOut time.Time) int {
	elapsed := checkOut.Sub(checkIn)
	if elapsed <= 0 {
		return 0
	}
	nights := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		nights++
	}
	if nights < 1 {
		nights = 1
	}
	return nights
}
