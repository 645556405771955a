package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyTargetIsYesterday(t *testing.T) {
	now := time.Date(2025, 10, 31, 1, 5, 0, 0, time.UTC)
	assert.Equal(t, date(2025, 10, 30), DailyTarget(now))

	// Month boundary.
	now = time.Date(2025, 11, 1, 1, 5, 0, 0, time.UTC)
	assert.Equal(t, date(2025, 10, 31), DailyTarget(now))
}

func TestWeeklyWindowIsPriorMondayToSunday(t *testing.T) {
	// Monday 2025-11-03: prior week is Mon 10-27 .. Sun 11-02.
	start, end := WeeklyWindow(time.Date(2025, 11, 3, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, date(2025, 10, 27), start)
	assert.Equal(t, date(2025, 11, 2), end)

	// Sunday counts as day 7 of its own week, not day 0 of the next.
	start, end = WeeklyWindow(time.Date(2025, 11, 2, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, date(2025, 10, 20), start)
	assert.Equal(t, date(2025, 10, 26), end)
}

func TestMonthlyWindowIsPriorMonth(t *testing.T) {
	year, month := MonthlyWindow(time.Date(2025, 11, 1, 3, 0, 0, 0, time.UTC))
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.October, month)

	// Year boundary.
	year, month = MonthlyWindow(time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC))
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.December, month)
}

func TestYearlyWindowIsPriorYear(t *testing.T) {
	assert.Equal(t, 2025, YearlyWindow(time.Date(2026, 1, 1, 4, 0, 0, 0, time.UTC)))
}

func TestWeekOfMonth(t *testing.T) {
	assert.Equal(t, 1, WeekOfMonth(date(2025, 10, 1)))
	assert.Equal(t, 1, WeekOfMonth(date(2025, 10, 7)))
	assert.Equal(t, 2, WeekOfMonth(date(2025, 10, 8)))
	assert.Equal(t, 5, WeekOfMonth(date(2025, 10, 30)))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2025, time.February)
	assert.Equal(t, date(2025, 2, 1), start)
	assert.Equal(t, date(2025, 2, 28), end)

	start, end = MonthRange(2024, time.February)
	assert.Equal(t, date(2024, 2, 1), start)
	assert.Equal(t, date(2024, 2, 29), end)
}
