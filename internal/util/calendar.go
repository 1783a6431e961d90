package util

import "time"

// PreviousMonth returns the year and month for the previous calendar month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// MonthRange returns the first and last day of a month, both inclusive
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// YearRange returns January 1 and December 31 of a year
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}

// IsLeapYear reports whether a year has 366 days
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years, 365 otherwise
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// ElapsedYearPeriods returns the day/week/month denominators used for rolling
// averages. For the year containing now, the counts cover Jan 1 through now
// inclusive (each at least 1). For any other year the year is treated as
// complete: 365/366 days, 52 weeks, 12 months.
func ElapsedYearPeriods(year int, now time.Time) (days, weeks, months int) {
	if year != now.Year() {
		return DaysInYear(year), 52, 12
	}

	// YearDay is the inclusive elapsed-day count and is immune to DST
	// transitions shortening a wall-clock day
	days = now.YearDay()
	weeks = (days + 6) / 7
	months = int(now.Month())
	return days, weeks, months
}
