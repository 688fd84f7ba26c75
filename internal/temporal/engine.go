// Package temporal implements the date/time computations behind the tools:
// parsing loosely formatted dates, resolving zones, calendar arithmetic and
// relative-time phrasing.
//
// Every Engine operation returns either a result or a *ToolError. Nothing is
// retained between calls apart from the Resolver's location cache, which
// never changes a result.
package temporal

import (
	"strconv"
	"time"

	"datetimeday/internal/clock"
	"datetimeday/internal/model"
)

// Output formats accepted by CurrentMoment.
const (
	ModeFull    = "full"
	ModeISO8601 = "iso8601"
	ModeUnix    = "unix"
	ModeHuman   = "human"
)

const (
	layoutDate     = "2006-01-02"
	layoutTime     = "15:04:05"
	layoutDateTime = "2006-01-02 15:04:05"
	layoutOffset   = "-0700"
	layoutHuman    = "Monday, January 02, 2006 at 03:04 PM"
	layoutISO      = "2006-01-02T15:04:05-07:00"
	layoutISOMicro = "2006-01-02T15:04:05.000000-07:00"
)

// Engine runs the five tool operations.
type Engine struct {
	clock     clock.Clock
	resolver  *Resolver
	localName string
	local     *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithResolver shares a Resolver (and its cache) with the caller.
func WithResolver(r *Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithLocalZone makes name the zone used when a caller omits one. An empty
// name keeps the system zone.
func WithLocalZone(name string) Option {
	return func(e *Engine) { e.localName = name }
}

// NewEngine builds an Engine. It fails only when WithLocalZone names an
// unknown zone.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		clock: clock.System,
		local: time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = NewResolver()
	}
	if e.localName != "" {
		loc, err := e.resolver.Resolve(e.localName)
		if err != nil {
			return nil, err
		}
		e.local = loc
	}
	return e, nil
}

// Resolver exposes the engine's zone resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// now is the current instant in the local zone.
func (e *Engine) now() time.Time {
	return e.clock.Now().In(e.local)
}

// CurrentMoment reports the current instant in zone (local when empty),
// shaped by mode. An empty mode means ModeFull.
func (e *Engine) CurrentMoment(zone, mode string) (*model.CurrentMoment, error) {
	loc := e.local
	if zone != "" {
		var err error
		if loc, err = e.resolver.Resolve(zone); err != nil {
			return nil, err
		}
	}
	now := e.clock.Now().In(loc)

	out := &model.CurrentMoment{DayOfWeek: now.Weekday().String()}
	switch mode {
	case ModeISO8601:
		out.ISO8601 = isoFormat(now)
	case ModeUnix:
		out.UnixTimestamp = unixPtr(now)
	case ModeHuman:
		out.HumanReadable = now.Format(layoutHuman)
	case "", ModeFull:
		out.Date = now.Format(layoutDate)
		out.Time = now.Format(layoutTime)
		out.Timezone = e.zoneLabel(now, zone)
		out.UTCOffset = now.Format(layoutOffset)
		out.ISO8601 = isoFormat(now)
		out.UnixTimestamp = unixPtr(now)
		out.HumanReadable = now.Format(layoutHuman)
	default:
		return nil, newToolError(RangeFailure, mode, "Invalid format: %s. Use iso8601, unix, human, or full.", mode)
	}
	return out, nil
}

// zoneLabel names the zone now is expressed in: the requested name, the
// configured local name, or the abbreviation of the system zone.
func (e *Engine) zoneLabel(now time.Time, requested string) string {
	switch {
	case requested != "":
		return requested
	case e.localName != "":
		return e.localName
	default:
		abbr, _ := now.Zone()
		return abbr
	}
}

// RelativeDescription phrases target relative to reference. Both are naive
// date or date-time texts; an empty reference means the current local wall
// clock.
func (e *Engine) RelativeDescription(target, reference string) (*model.RelativeTime, error) {
	t, err := Parse(target, DateTimeFormats)
	if err != nil {
		return nil, newToolError(ParseFailure, target,
			"Invalid date format: %s. Use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS.", target)
	}

	var ref time.Time
	refLabel := reference
	if reference == "" {
		ref = naive(e.now())
		refLabel = "now"
	} else if ref, err = Parse(reference, DateTimeFormats); err != nil {
		return nil, newToolError(ParseFailure, reference, "Invalid reference date format: %s", reference)
	}

	rel := Describe(t, ref)
	return &model.RelativeTime{
		Target:             target,
		TargetDayOfWeek:    t.Weekday().String(),
		Reference:          refLabel,
		ReferenceDayOfWeek: ref.Weekday().String(),
		Relative:           rel.Phrase,
		IsFuture:           rel.IsFuture,
		DaysDifference:     rel.DaysDifference,
		TotalSeconds:       rel.TotalSeconds,
		MagnitudeSeconds:   rel.MagnitudeSeconds,
	}, nil
}

// MonthInfo describes a month. Nil year or month default to the current
// local date.
func (e *Engine) MonthInfo(year, month *int) (*model.MonthInfo, error) {
	now := e.now()
	y, m := now.Year(), int(now.Month())
	if year != nil {
		y = *year
	}
	if month != nil {
		m = *month
	}

	days, err := DaysInMonth(y, m)
	if err != nil {
		return nil, err
	}
	if y < 1 || y > 9999 {
		return nil, newToolError(RangeFailure, strconv.Itoa(y), "Invalid year: %d. Must be 1-9999.", y)
	}

	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(y, time.Month(m), days, 0, 0, 0, 0, time.UTC)
	return &model.MonthInfo{
		Year:        y,
		Month:       m,
		MonthName:   first.Month().String(),
		DaysInMonth: days,
		FirstDay:    dayRef(first),
		LastDay:     dayRef(last),
		IsLeapYear:  IsLeapYear(y),
	}, nil
}

// Convert reads text as a wall clock in zone from and re-expresses the same
// instant in zone to.
func (e *Engine) Convert(text, from, to string) (*model.Conversion, error) {
	wall, err := Parse(text, ConvertFormats)
	if err != nil {
		return nil, newToolError(ParseFailure, text, "Invalid time format: %s", text)
	}
	fromLoc, err := e.resolver.Resolve(from)
	if err != nil {
		return nil, err
	}
	toLoc, err := e.resolver.Resolve(to)
	if err != nil {
		return nil, err
	}

	src := attach(wall, fromLoc)
	dst := src.In(toLoc)
	return &model.Conversion{
		From: zoned(src, from),
		To:   zoned(dst, to),
	}, nil
}

// WeekInfo reports week and year position facts for a YYYY-MM-DD date, or
// for today when text is empty.
func (e *Engine) WeekInfo(text string) (*model.WeekInfo, error) {
	var d time.Time
	if text == "" {
		d = dateOnly(naive(e.now()))
	} else {
		var err error
		if d, err = Parse(text, DateFormats); err != nil {
			return nil, newToolError(ParseFailure, text, "Invalid date format: %s. Use YYYY-MM-DD.", text)
		}
	}

	isoYear, isoWeek := ISOCalendar(d)
	weekday := ISOWeekday(d)
	return &model.WeekInfo{
		Date:                d.Format(layoutDate),
		DayOfWeek:           d.Weekday().String(),
		DayOfWeekNumber:     weekday,
		WeekNumber:          SimpleWeekNumber(d),
		ISOWeek:             isoWeek,
		ISOYear:             isoYear,
		DayOfYear:           DayOfYear(d),
		DaysRemainingInYear: DaysRemainingInYear(d),
		IsWeekend:           weekday >= 6,
		Quarter:             Quarter(d),
	}, nil
}

// naive keeps t's wall clock fields and drops its zone.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// attach reinterprets t's wall clock fields in loc. A wall time skipped by a
// forward transition keeps its fields and takes the offset in effect just
// before the transition.
func attach(t time.Time, loc *time.Location) time.Time {
	out := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	wall := naive(t)
	got := naive(out)
	if got.Equal(wall) {
		return out
	}

	before := out
	if got.After(wall) {
		if start, _ := out.ZoneBounds(); !start.IsZero() {
			before = start.Add(-time.Nanosecond)
		}
	}
	name, offset := before.Zone()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone(name, offset))
}

func zoned(t time.Time, name string) model.ZonedTime {
	return model.ZonedTime{
		DayOfWeek: t.Weekday().String(),
		DateTime:  t.Format(layoutDateTime),
		Timezone:  name,
		UTCOffset: t.Format(layoutOffset),
	}
}

func dayRef(t time.Time) model.DayRef {
	return model.DayRef{Date: t.Format(layoutDate), DayOfWeek: t.Weekday().String()}
}

// isoFormat writes RFC 3339 with a numeric offset and microseconds only when
// present.
func isoFormat(t time.Time) string {
	if t.Nanosecond()/1000 == 0 {
		return t.Format(layoutISO)
	}
	return t.Format(layoutISOMicro)
}

func unixPtr(t time.Time) *int64 {
	u := t.Unix()
	return &u
}
