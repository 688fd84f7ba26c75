package temporal

import (
	"regexp"
	"time"
)

// Format pairs a Go reference layout with the exact shape the input text must
// have. time.Parse alone is too lenient: it accepts fractional seconds the
// layout does not mention.
type Format struct {
	Name   string
	Layout string
	shape  *regexp.Regexp
}

var (
	FormatDate = Format{
		Name:   "YYYY-MM-DD",
		Layout: "2006-01-02",
		shape:  regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	}
	FormatDateTimeT = Format{
		Name:   "YYYY-MM-DDTHH:MM:SS",
		Layout: "2006-01-02T15:04:05",
		shape:  regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`),
	}
	FormatDateTimeSpace = Format{
		Name:   "YYYY-MM-DD HH:MM:SS",
		Layout: "2006-01-02 15:04:05",
		shape:  regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`),
	}
)

// Accepted format sets, in the order they are tried.
var (
	DateFormats     = []Format{FormatDate}
	DateTimeFormats = []Format{FormatDate, FormatDateTimeT, FormatDateTimeSpace}
	ConvertFormats  = []Format{FormatDateTimeSpace, FormatDateTimeT, FormatDate}
)

// Match parses text with this single format. The result is naive: wall clock
// fields carried in time.UTC. Year 0000 parses in Go but is outside the
// supported 1..9999 range, so it is rejected.
func (f Format) Match(text string) (time.Time, bool) {
	if f.shape != nil && !f.shape.MatchString(text) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(f.Layout, text, time.UTC)
	if err != nil || t.Year() < 1 {
		return time.Time{}, false
	}
	return t, true
}

// Parse tries each format in order and returns the first full match.
func Parse(text string, formats []Format) (time.Time, error) {
	for _, f := range formats {
		if t, ok := f.Match(text); ok {
			return t, nil
		}
	}
	return time.Time{}, newToolError(ParseFailure, text, "Invalid date format: %s", text)
}
