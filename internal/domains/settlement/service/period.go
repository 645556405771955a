package service

import "time"

// Period calculations are pure functions of a caller-supplied "now" so every
// window is testable without wall-clock dependence.

// DailyTarget is the date the daily job aggregates: yesterday.
func DailyTarget(now time.Time) time.Time {
	return truncateToDate(now.AddDate(0, 0, -1))
}

// WeeklyWindow is the prior Monday-Sunday week.
func WeeklyWindow(now time.Time) (start, end time.Time) {
	today := truncateToDate(now)

	// Distance back to this week's Monday; Sunday counts as day 7.
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thisMonday := today.AddDate(0, 0, -(weekday - 1))

	start = thisMonday.AddDate(0, 0, -7)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// MonthlyWindow is the prior calendar month.
func MonthlyWindow(now time.Time) (year int, month time.Month) {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	return prev.Year(), prev.Month()
}

// YearlyWindow is the prior calendar year.
func YearlyWindow(now time.Time) int {
	return now.Year() - 1
}

// WeekOfMonth is the 1-based week index of a date within its month, counted
// in 7-day blocks from the 1st.
func WeekOfMonth(date time.Time) int {
	return (date.Day()-1)/7 + 1
}

// MonthRange is the [first, last] day pair of a calendar month.
func MonthRange(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
