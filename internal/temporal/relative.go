package temporal

import (
	"fmt"
	"time"
)

const secondsPerDay = 86400

// Relative is the outcome of comparing a target instant with a reference.
type Relative struct {
	// Phrase is "in 2 weeks", "3 days ago" or "now".
	Phrase   string
	IsFuture bool
	// MagnitudeSeconds is |target - reference| in whole seconds.
	MagnitudeSeconds int64
	// DaysDifference is the signed whole-day part of the delta, truncated
	// toward zero.
	DaysDifference int64
	// TotalSeconds is the signed delta truncated to whole seconds.
	TotalSeconds int64
}

type tier struct {
	unit string
	days int64
}

var dayTiers = []tier{
	{unit: "year", days: 365},
	{unit: "month", days: 30},
	{unit: "week", days: 7},
	{unit: "day", days: 1},
}

// Describe renders target relative to reference using exactly one unit, the
// largest whose threshold the magnitude reaches. Days are always 86400
// seconds here; no calendar months or DST adjustments are involved. The delta
// is taken in whole seconds so spans across the full 1..9999 year range never
// overflow.
func Describe(target, reference time.Time) Relative {
	total, frac := secondsBetween(target, reference)
	secs := total
	if secs < 0 {
		secs = -secs
	}

	out := Relative{
		IsFuture:         total > 0 || (total == 0 && frac > 0),
		MagnitudeSeconds: secs,
		TotalSeconds:     total,
		DaysDifference:   total / secondsPerDay,
	}

	if secs == 0 {
		out.Phrase = "now"
		return out
	}

	value, unit := pickTier(secs)
	desc := fmt.Sprintf("%d %s", value, pluralize(unit, value))
	if out.IsFuture {
		out.Phrase = "in " + desc
	} else {
		out.Phrase = desc + " ago"
	}
	return out
}

// secondsBetween returns target - reference as whole seconds truncated toward
// zero plus the leftover nanoseconds, which share the sign of the delta.
func secondsBetween(target, reference time.Time) (int64, int64) {
	secs := target.Unix() - reference.Unix()
	nanos := int64(target.Nanosecond()) - int64(reference.Nanosecond())
	switch {
	case secs > 0 && nanos < 0:
		secs--
		nanos += int64(time.Second)
	case secs < 0 && nanos > 0:
		secs++
		nanos -= int64(time.Second)
	}
	return secs, nanos
}

func pickTier(secs int64) (int64, string) {
	days := secs / secondsPerDay
	for _, t := range dayTiers {
		if days >= t.days {
			return days / t.days, t.unit
		}
	}

	hours := (secs % secondsPerDay) / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	switch {
	case hours > 0:
		return hours, "hour"
	case minutes > 0:
		return minutes, "minute"
	default:
		return seconds, "second"
	}
}

func pluralize(unit string, n int64) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
