package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 14, 30, 0, 0, time.Local)
}

func TestResolve(t *testing.T) {
	now := date(2024, time.May, 17)

	tests := []struct {
		name     string
		keyword  string
		wantFrom string
		wantTo   string
	}{
		{"current month", CurrentMonth, "2024-05-01", "2024-05-31"},
		{"previous month", PreviousMonth, "2024-04-01", "2024-04-30"},
		{"current quarter", CurrentQuarter, "2024-04-01", "2024-06-30"},
		{"previous quarter", PreviousQuarter, "2024-01-01", "2024-03-31"},
		{"current year", CurrentYear, "2024-01-01", "2024-12-31"},
		{"previous year", PreviousYear, "2023-01-01", "2023-12-31"},
		{"unknown keyword falls back to current month", "whatever", "2024-05-01", "2024-05-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.keyword, now)
			assert.Equal(t, tt.wantFrom, r.FromDate())
			assert.Equal(t, tt.wantTo, r.ToDate())
		})
	}
}

func TestResolveBoundaryTimes(t *testing.T) {
	r := Resolve(PreviousMonth, date(2024, time.March, 5))

	assert.Equal(t, 0, r.From.Hour())
	assert.Equal(t, 0, r.From.Minute())
	assert.Equal(t, 23, r.To.Hour())
	assert.Equal(t, 59, r.To.Second())
}

func TestResolvePreviousMonthAcrossYear(t *testing.T) {
	r := Resolve(PreviousMonth, date(2024, time.January, 10))

	assert.Equal(t, "2023-12-01", r.FromDate())
	assert.Equal(t, "2023-12-31", r.ToDate())
}

func TestResolvePreviousQuarterAcrossYear(t *testing.T) {
	r := Resolve(PreviousQuarter, date(2024, time.February, 2))

	assert.Equal(t, "2023-10-01", r.FromDate())
	assert.Equal(t, "2023-12-31", r.ToDate())
}

func TestResolveCurrentMonthLeapFebruary(t *testing.T) {
	r := Resolve(CurrentMonth, date(2024, time.February, 10))

	assert.Equal(t, "2024-02-01", r.FromDate())
	assert.Equal(t, "2024-02-29", r.ToDate())
}

func TestCustomRange(t *testing.T) {
	now := date(2024, time.May, 17)

	t.Run("explicit boundaries", func(t *testing.T) {
		r := CustomRange(date(2024, time.February, 1), date(2024, time.February, 29), now)
		assert.Equal(t, "2024-02-01", r.FromDate())
		assert.Equal(t, "2024-02-29", r.ToDate())
	})

	t.Run("missing from defaults to 30 days back", func(t *testing.T) {
		r := CustomRange(time.Time{}, date(2024, time.May, 10), now)
		assert.Equal(t, "2024-04-17", r.FromDate())
		assert.Equal(t, "2024-05-10", r.ToDate())
	})

	t.Run("missing to defaults to now", func(t *testing.T) {
		r := CustomRange(date(2024, time.April, 1), time.Time{}, now)
		assert.Equal(t, "2024-04-01", r.FromDate())
		assert.Equal(t, "2024-05-17", r.ToDate())
	})
}
