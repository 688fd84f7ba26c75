// Package model holds the result payloads returned by the tools. JSON field
// names are part of the wire contract.
package model

// CurrentMoment describes "now" in one zone. Which fields are set depends on
// the requested output format; DayOfWeek is always present.
type CurrentMoment struct {
	DayOfWeek string `json:"day_of_week"`

	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
	UTCOffset     string `json:"utc_offset,omitempty"`
	ISO8601       string `json:"iso8601,omitempty"`
	UnixTimestamp *int64 `json:"unix_timestamp,omitempty"`
	HumanReadable string `json:"human_readable,omitempty"`
}

// RelativeTime compares a target date with a reference date.
type RelativeTime struct {
	Target             string `json:"target"`
	TargetDayOfWeek    string `json:"target_day_of_week"`
	Reference          string `json:"reference"`
	ReferenceDayOfWeek string `json:"reference_day_of_week"`
	Relative           string `json:"relative"`
	IsFuture           bool   `json:"is_future"`
	DaysDifference     int64  `json:"days_difference"`
	TotalSeconds       int64  `json:"total_seconds"`
	MagnitudeSeconds   int64  `json:"magnitude_seconds"`
}

// DayRef names a calendar date and its weekday.
type DayRef struct {
	Date      string `json:"date"`
	DayOfWeek string `json:"day_of_week"`
}

// MonthInfo summarizes one calendar month.
type MonthInfo struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	MonthName   string `json:"month_name"`
	DaysInMonth int    `json:"days_in_month"`
	FirstDay    DayRef `json:"first_day"`
	LastDay     DayRef `json:"last_day"`
	IsLeapYear  bool   `json:"is_leap_year"`
}

// ZonedTime is one side of a timezone conversion.
type ZonedTime struct {
	DayOfWeek string `json:"day_of_week"`
	DateTime  string `json:"datetime"`
	Timezone  string `json:"timezone"`
	UTCOffset string `json:"utc_offset"`
}

// Conversion is the same instant expressed in two zones.
type Conversion struct {
	From ZonedTime `json:"from"`
	To   ZonedTime `json:"to"`
}

// WeekInfo holds week and year position facts for a single date.
type WeekInfo struct {
	Date                string `json:"date"`
	DayOfWeek           string `json:"day_of_week"`
	DayOfWeekNumber     int    `json:"day_of_week_number"`
	WeekNumber          int    `json:"week_number"`
	ISOWeek             int    `json:"iso_week"`
	ISOYear             int    `json:"iso_year"`
	DayOfYear           int    `json:"day_of_year"`
	DaysRemainingInYear int    `json:"days_remaining_in_year"`
	IsWeekend           bool   `json:"is_weekend"`
	Quarter             int    `json:"quarter"`
}
