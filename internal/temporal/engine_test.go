package temporal

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datetimeday/internal/clock"
	"datetimeday/internal/model"
)

// Wednesday.
var fixedNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T, now time.Time) *Engine {
	t.Helper()
	e, err := NewEngine(WithClock(clock.Fixed(now)), WithLocalZone("UTC"))
	require.NoError(t, err)
	return e
}

func requireToolError(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	te, ok := AsToolError(err)
	require.True(t, ok, "want *ToolError, got %T", err)
	assert.Equal(t, kind, te.Kind)
	assert.Equal(t, msg, te.Message)
}

func intp(v int) *int { return &v }

func TestNewEngineRejectsUnknownLocalZone(t *testing.T) {
	_, err := NewEngine(WithLocalZone("Nowhere/Land"))
	requireToolError(t, err, ResolutionFailure, "Invalid timezone: Nowhere/Land")
}

func TestCurrentMomentUnix(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.CurrentMoment("UTC", ModeUnix)
	require.NoError(t, err)
	require.NotNil(t, got.UnixTimestamp)
	assert.Equal(t, fixedNow.Unix(), *got.UnixTimestamp)
	assert.Equal(t, "Wednesday", got.DayOfWeek)
	assert.Empty(t, got.ISO8601)
	assert.Empty(t, got.HumanReadable)
}

func TestCurrentMomentUnixSystemClock(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)

	got, err := e.CurrentMoment("UTC", ModeUnix)
	require.NoError(t, err)
	now := time.Now().UTC()
	assert.InDelta(t, now.Unix(), *got.UnixTimestamp, 2)
	assert.Equal(t, now.Weekday().String(), got.DayOfWeek)
}

func TestCurrentMomentFull(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.CurrentMoment("America/New_York", "")
	require.NoError(t, err)

	unix := fixedNow.Unix()
	want := &model.CurrentMoment{
		DayOfWeek:     "Wednesday",
		Date:          "2025-01-15",
		Time:          "05:30:00",
		Timezone:      "America/New_York",
		UTCOffset:     "-0500",
		ISO8601:       "2025-01-15T05:30:00-05:00",
		UnixTimestamp: &unix,
		HumanReadable: "Wednesday, January 15, 2025 at 05:30 AM",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CurrentMoment mismatch (-want +got):\n%s", diff)
	}

	full, err := e.CurrentMoment("America/New_York", ModeFull)
	require.NoError(t, err)
	assert.Equal(t, got, full)
}

func TestCurrentMomentModes(t *testing.T) {
	e := newTestEngine(t, fixedNow.Add(123456789*time.Nanosecond))

	iso, err := e.CurrentMoment("", ModeISO8601)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15T10:30:00.123456+00:00", iso.ISO8601)
	assert.Nil(t, iso.UnixTimestamp)

	human, err := e.CurrentMoment("Asia/Tokyo", ModeHuman)
	require.NoError(t, err)
	assert.Equal(t, "Wednesday, January 15, 2025 at 07:30 PM", human.HumanReadable)
	assert.Equal(t, "Wednesday", human.DayOfWeek)

	full, err := e.CurrentMoment("", "")
	require.NoError(t, err)
	assert.Equal(t, "UTC", full.Timezone)
	assert.Equal(t, "+0000", full.UTCOffset)
}

func TestCurrentMomentLocalZoneAcrossMidnight(t *testing.T) {
	e, err := NewEngine(WithClock(clock.Fixed(fixedNow)), WithLocalZone("Pacific/Kiritimati"))
	require.NoError(t, err)

	got, err := e.CurrentMoment("", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-16", got.Date)
	assert.Equal(t, "Thursday", got.DayOfWeek)
	assert.Equal(t, "Pacific/Kiritimati", got.Timezone)
	assert.Equal(t, "+1400", got.UTCOffset)
}

func TestCurrentMomentErrors(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	_, err := e.CurrentMoment("Mars/Olympus_Mons", "")
	requireToolError(t, err, ResolutionFailure, "Invalid timezone: Mars/Olympus_Mons")

	_, err = e.CurrentMoment("UTC", "rfc2822")
	requireToolError(t, err, RangeFailure, "Invalid format: rfc2822. Use iso8601, unix, human, or full.")
}

func TestRelativeDescription(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.RelativeDescription("2025-01-22", "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, &model.RelativeTime{
		Target:             "2025-01-22",
		TargetDayOfWeek:    "Wednesday",
		Reference:          "2025-01-15",
		ReferenceDayOfWeek: "Wednesday",
		Relative:           "in 1 week",
		IsFuture:           true,
		DaysDifference:     7,
		TotalSeconds:       604800,
		MagnitudeSeconds:   604800,
	}, got)
}

func TestRelativeDescriptionDefaultsToNow(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.RelativeDescription("2025-01-14T10:30:00", "")
	require.NoError(t, err)
	assert.Equal(t, "now", got.Reference)
	assert.Equal(t, "Wednesday", got.ReferenceDayOfWeek)
	assert.Equal(t, "Tuesday", got.TargetDayOfWeek)
	assert.Equal(t, "1 day ago", got.Relative)
	assert.False(t, got.IsFuture)
	assert.Equal(t, int64(-1), got.DaysDifference)
	assert.Equal(t, int64(-86400), got.TotalSeconds)
	assert.Equal(t, int64(86400), got.MagnitudeSeconds)
}

func TestRelativeDescriptionUsesLocalWallClock(t *testing.T) {
	e, err := NewEngine(WithClock(clock.Fixed(fixedNow)), WithLocalZone("Asia/Tokyo"))
	require.NoError(t, err)

	// 10:30 UTC is 19:30 in Tokyo.
	got, err := e.RelativeDescription("2025-01-15 19:30:00", "")
	require.NoError(t, err)
	assert.Equal(t, "now", got.Relative)
}

func TestRelativeDescriptionBoundaries(t *testing.T) {
	e := newTestEngine(t, fixedNow)
	cases := map[string]string{
		"2025-01-01 00:00:00": "now",
		"2025-01-01 00:00:01": "in 1 second",
		"2024-12-31 23:59:59": "1 second ago",
		"2025-01-07T23:59:59": "in 6 days",
		"2025-01-08":          "in 1 week",
	}
	for target, want := range cases {
		got, err := e.RelativeDescription(target, "2025-01-01")
		require.NoError(t, err, target)
		assert.Equal(t, want, got.Relative, target)
	}
}

func TestRelativeDescriptionErrors(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	_, err := e.RelativeDescription("not-a-date", "")
	requireToolError(t, err, ParseFailure, "Invalid date format: not-a-date. Use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS.")

	_, err = e.RelativeDescription("2025-01-01", "yesterday")
	requireToolError(t, err, ParseFailure, "Invalid reference date format: yesterday")
}

func TestMonthInfo(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.MonthInfo(intp(2024), intp(2))
	require.NoError(t, err)
	assert.Equal(t, &model.MonthInfo{
		Year:        2024,
		Month:       2,
		MonthName:   "February",
		DaysInMonth: 29,
		FirstDay:    model.DayRef{Date: "2024-02-01", DayOfWeek: "Thursday"},
		LastDay:     model.DayRef{Date: "2024-02-29", DayOfWeek: "Thursday"},
		IsLeapYear:  true,
	}, got)
}

func TestMonthInfoDefaults(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.MonthInfo(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, 1, got.Month)
	assert.Equal(t, "January", got.MonthName)
	assert.Equal(t, 31, got.DaysInMonth)
	assert.Equal(t, model.DayRef{Date: "2025-01-01", DayOfWeek: "Wednesday"}, got.FirstDay)
	assert.Equal(t, model.DayRef{Date: "2025-01-31", DayOfWeek: "Friday"}, got.LastDay)
	assert.False(t, got.IsLeapYear)

	feb, err := e.MonthInfo(nil, intp(2))
	require.NoError(t, err)
	assert.Equal(t, 2025, feb.Year)
	assert.Equal(t, 28, feb.DaysInMonth)
}

func TestMonthInfoErrors(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	_, err := e.MonthInfo(intp(2025), intp(13))
	requireToolError(t, err, RangeFailure, "Invalid month: 13. Must be 1-12.")

	_, err = e.MonthInfo(intp(2025), intp(0))
	requireToolError(t, err, RangeFailure, "Invalid month: 0. Must be 1-12.")

	_, err = e.MonthInfo(intp(0), intp(1))
	requireToolError(t, err, RangeFailure, "Invalid year: 0. Must be 1-9999.")

	_, err = e.MonthInfo(intp(10000), intp(1))
	requireToolError(t, err, RangeFailure, "Invalid year: 10000. Must be 1-9999.")
}

func TestConvert(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.Convert("2025-01-15 12:00:00", "America/New_York", "Europe/London")
	require.NoError(t, err)
	assert.Equal(t, &model.Conversion{
		From: model.ZonedTime{DayOfWeek: "Wednesday", DateTime: "2025-01-15 12:00:00", Timezone: "America/New_York", UTCOffset: "-0500"},
		To:   model.ZonedTime{DayOfWeek: "Wednesday", DateTime: "2025-01-15 17:00:00", Timezone: "Europe/London", UTCOffset: "+0000"},
	}, got)
}

func TestConvertFormatsAndDayChange(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.Convert("2025-07-01T12:00:00", "UTC", "Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01 21:00:00", got.To.DateTime)
	assert.Equal(t, "+0900", got.To.UTCOffset)
	assert.Equal(t, "Tuesday", got.To.DayOfWeek)

	got, err = e.Convert("2025-03-31", "Asia/Kolkata", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "Monday", got.From.DayOfWeek)
	assert.Equal(t, "+0530", got.From.UTCOffset)
	assert.Equal(t, "2025-03-30 18:30:00", got.To.DateTime)
	assert.Equal(t, "Sunday", got.To.DayOfWeek)
}

func TestConvertHonorsDST(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.Convert("2024-03-10 12:00:00", "America/New_York", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "-0400", got.From.UTCOffset)
	assert.Equal(t, "2024-03-10 16:00:00", got.To.DateTime)

	got, err = e.Convert("2024-03-09 12:00:00", "America/New_York", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "-0500", got.From.UTCOffset)
	assert.Equal(t, "2024-03-09 17:00:00", got.To.DateTime)
}

func TestConvertDSTGapKeepsWallClock(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.Convert("2024-03-10 02:30:00", "America/New_York", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10 02:30:00", got.From.DateTime)
	assert.Equal(t, "-0500", got.From.UTCOffset)
	assert.Equal(t, "2024-03-10 07:30:00", got.To.DateTime)

	got, err = e.Convert("2024-03-31 02:15:00", "Europe/Berlin", "Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31 02:15:00", got.From.DateTime)
	assert.Equal(t, "+0100", got.From.UTCOffset)
	assert.Equal(t, "2024-03-31 10:15:00", got.To.DateTime)
}

func TestConvertErrors(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	_, err := e.Convert("2025-13-01 10:00:00", "UTC", "UTC")
	requireToolError(t, err, ParseFailure, "Invalid time format: 2025-13-01 10:00:00")

	_, err = e.Convert("2025-01-01 10:00:00", "Nowhere/Land", "UTC")
	requireToolError(t, err, ResolutionFailure, "Invalid timezone: Nowhere/Land")

	_, err = e.Convert("2025-01-01 10:00:00", "UTC", "Nowhere/Land")
	requireToolError(t, err, ResolutionFailure, "Invalid timezone: Nowhere/Land")

	_, err = e.Convert("2025-01-01 10:00:00", "", "UTC")
	requireToolError(t, err, ResolutionFailure, "Invalid timezone: ")
}

func TestWeekInfo(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.WeekInfo("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, &model.WeekInfo{
		Date:                "2024-01-01",
		DayOfWeek:           "Monday",
		DayOfWeekNumber:     1,
		WeekNumber:          1,
		ISOWeek:             1,
		ISOYear:             2024,
		DayOfYear:           1,
		DaysRemainingInYear: 365,
		IsWeekend:           false,
		Quarter:             1,
	}, got)
}

func TestWeekInfoISOYearDiffers(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.WeekInfo("2021-01-03")
	require.NoError(t, err)
	assert.Equal(t, 2020, got.ISOYear)
	assert.Equal(t, 53, got.ISOWeek)
	assert.Equal(t, 1, got.WeekNumber)
	assert.Equal(t, 7, got.DayOfWeekNumber)
	assert.True(t, got.IsWeekend)

	got, err = e.WeekInfo("2024-12-30")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.ISOYear)
	assert.Equal(t, 1, got.ISOWeek)
	assert.Equal(t, 53, got.WeekNumber)
	assert.Equal(t, 1, got.DaysRemainingInYear)
	assert.Equal(t, 4, got.Quarter)
}

func TestWeekInfoDefaultsToToday(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	got, err := e.WeekInfo("")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", got.Date)
	assert.Equal(t, "Wednesday", got.DayOfWeek)
	assert.Equal(t, 3, got.DayOfWeekNumber)
	assert.Equal(t, 15, got.DayOfYear)
	assert.Equal(t, 350, got.DaysRemainingInYear)
}

func TestWeekInfoErrors(t *testing.T) {
	e := newTestEngine(t, fixedNow)

	_, err := e.WeekInfo("2024-01-01T00:00:00")
	requireToolError(t, err, ParseFailure, "Invalid date format: 2024-01-01T00:00:00. Use YYYY-MM-DD.")

	_, err = e.WeekInfo("0000-01-01")
	requireToolError(t, err, ParseFailure, "Invalid date format: 0000-01-01. Use YYYY-MM-DD.")
}
