// Package period resolves export date ranges from named keywords or
// explicit custom boundaries.
package period

import (
	"fmt"
	"time"
)

// Keywords accepted by Resolve.
const (
	CurrentMonth    = "current_month"
	PreviousMonth   = "previous_month"
	CurrentQuarter  = "current_quarter"
	PreviousQuarter = "previous_quarter"
	CurrentYear     = "current_year"
	PreviousYear    = "previous_year"
	Custom          = "custom"
)

// Range is a closed export window. From is anchored at 00:00:00 and To at
// 23:59:59 in local time.
type Range struct {
	From time.Time
	To   time.Time
}

// FromDate returns the start formatted as YYYY-MM-DD.
func (r Range) FromDate() string { return r.From.Format("2006-01-02") }

// ToDate returns the end formatted as YYYY-MM-DD.
func (r Range) ToDate() string { return r.To.Format("2006-01-02") }

func (r Range) String() string {
	return fmt.Sprintf("%s .. %s", r.FromDate(), r.ToDate())
}

// Resolve maps a period keyword to a concrete range relative to now.
// Current periods run through the last day of the period, not through now.
// An unknown keyword resolves to the current month.
func Resolve(keyword string, now time.Time) Range {
	switch keyword {
	case PreviousMonth:
		firstOfMonth := startOfDay(now.AddDate(0, 0, -now.Day()+1))
		return newRange(firstOfMonth.AddDate(0, -1, 0), firstOfMonth.AddDate(0, 0, -1))
	case CurrentQuarter:
		start := quarterStart(now)
		return newRange(start, start.AddDate(0, 3, -1))
	case PreviousQuarter:
		start := quarterStart(now)
		return newRange(quarterStart(start.AddDate(0, 0, -1)), start.AddDate(0, 0, -1))
	case CurrentYear:
		return newRange(
			time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()),
			time.Date(now.Year(), 12, 31, 0, 0, 0, 0, now.Location()),
		)
	case PreviousYear:
		return newRange(
			time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location()),
			time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, now.Location()),
		)
	default:
		start := startOfDay(now.AddDate(0, 0, -now.Day()+1))
		return newRange(start, start.AddDate(0, 1, -1))
	}
}

// CustomRange builds a range from explicit boundaries. A zero from defaults
// to 30 days before now, a zero to defaults to now.
func CustomRange(from, to time.Time, now time.Time) Range {
	if from.IsZero() {
		from = now.AddDate(0, 0, -30)
	}
	if to.IsZero() {
		to = now
	}
	return newRange(from, to)
}

func newRange(from, to time.Time) Range {
	return Range{From: startOfDay(from), To: endOfDay(to)}
}

func quarterStart(t time.Time) time.Time {
	month := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
