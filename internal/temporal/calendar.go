package temporal

import (
	"strconv"
	"time"
)

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear applies the proleptic Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of month in year. A month outside 1..12 is a
// RangeFailure.
func DaysInMonth(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, newToolError(RangeFailure, strconv.Itoa(month), "Invalid month: %d. Must be 1-12.", month)
	}
	if month == 2 && IsLeapYear(year) {
		return 29, nil
	}
	return monthDays[month], nil
}

// ISOCalendar returns the ISO-8601 week-numbering year and week of t. The ISO
// year differs from t.Year() for some days at the edges of a year.
func ISOCalendar(t time.Time) (isoYear, isoWeek int) {
	return t.ISOWeek()
}

// ISOWeekday numbers days 1 (Monday) through 7 (Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DayOfYear is 1 on January 1st.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// SimpleWeekNumber counts seven-day blocks from January 1st. It is not the ISO
// week and the two frequently disagree.
func SimpleWeekNumber(t time.Time) int {
	return (DayOfYear(t)-1)/7 + 1
}

// DaysRemainingInYear is the number of days from t's date to December 31st of
// the same year; 0 on December 31st.
func DaysRemainingInYear(t time.Time) int {
	last := 365
	if IsLeapYear(t.Year()) {
		last = 366
	}
	return last - DayOfYear(t)
}

// Quarter maps months 1-3 to 1, 4-6 to 2 and so on.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// dateOnly truncates t to midnight, keeping its location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
