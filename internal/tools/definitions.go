package tools

import (
	"context"
	"encoding/json"

	"datetimeday/internal/temporal"
)

const (
	NameGetDatetime  = "get_datetime"
	NameRelativeTime = "relative_time"
	NameDaysInMonth  = "days_in_month"
	NameConvertTime  = "convert_time"
	NameGetWeekYear  = "get_week_year"
)

const getDatetimeSchema = `{
	"type": "object",
	"properties": {
		"tz": {
			"type": ["string", "null"],
			"description": "IANA timezone (e.g. \"America/New_York\", \"UTC\"). Defaults to local."
		},
		"format": {
			"type": ["string", "null"],
			"enum": ["iso8601", "unix", "human", "full", null],
			"description": "Output format. Omit for the full response."
		}
	},
	"additionalProperties": false
}`

const relativeTimeSchema = `{
	"type": "object",
	"properties": {
		"date_str": {
			"type": "string",
			"description": "Target date in YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS format."
		},
		"reference": {
			"type": ["string", "null"],
			"description": "Reference date in the same formats. Defaults to now."
		}
	},
	"required": ["date_str"],
	"additionalProperties": false
}`

const daysInMonthSchema = `{
	"type": "object",
	"properties": {
		"year": {
			"type": ["integer", "null"],
			"description": "Year (e.g. 2025). Defaults to the current year."
		},
		"month": {
			"type": ["integer", "null"],
			"description": "Month (1-12). Defaults to the current month."
		}
	},
	"additionalProperties": false
}`

const convertTimeSchema = `{
	"type": "object",
	"properties": {
		"time_str": {
			"type": "string",
			"description": "Time in YYYY-MM-DD HH:MM:SS or YYYY-MM-DDTHH:MM:SS format."
		},
		"from_tz": {
			"type": "string",
			"description": "Source IANA timezone (e.g. \"America/New_York\", \"UTC\")."
		},
		"to_tz": {
			"type": "string",
			"description": "Target IANA timezone."
		}
	},
	"required": ["time_str", "from_tz", "to_tz"],
	"additionalProperties": false
}`

const getWeekYearSchema = `{
	"type": "object",
	"properties": {
		"date_str": {
			"type": ["string", "null"],
			"description": "Date in YYYY-MM-DD format. Defaults to today."
		}
	},
	"additionalProperties": false
}`

func definitions(engine *temporal.Engine) []definition {
	return []definition{
		{
			name:        NameGetDatetime,
			description: "Get current date and time with day of week. The day of week is always included.",
			schema:      getDatetimeSchema,
			handler: func(_ context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					TZ     string `json:"tz"`
					Format string `json:"format"`
				}
				if err := decode(raw, &args); err != nil {
					return nil, err
				}
				return engine.CurrentMoment(args.TZ, args.Format)
			},
		},
		{
			name:        NameRelativeTime,
			description: "Get a relative time description between two dates (e.g. \"3 days ago\", \"in 2 weeks\").",
			schema:      relativeTimeSchema,
			handler: func(_ context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					DateStr   string `json:"date_str"`
					Reference string `json:"reference"`
				}
				if err := decode(raw, &args); err != nil {
					return nil, err
				}
				return engine.RelativeDescription(args.DateStr, args.Reference)
			},
		},
		{
			name:        NameDaysInMonth,
			description: "Get the number of days in a month, plus first and last day info.",
			schema:      daysInMonthSchema,
			handler: func(_ context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					Year  *int `json:"year"`
					Month *int `json:"month"`
				}
				if err := decode(raw, &args); err != nil {
					return nil, err
				}
				return engine.MonthInfo(args.Year, args.Month)
			},
		},
		{
			name:        NameConvertTime,
			description: "Convert time between timezones, with day of week for both sides.",
			schema:      convertTimeSchema,
			handler: func(_ context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					TimeStr string `json:"time_str"`
					FromTZ  string `json:"from_tz"`
					ToTZ    string `json:"to_tz"`
				}
				if err := decode(raw, &args); err != nil {
					return nil, err
				}
				return engine.Convert(args.TimeStr, args.FromTZ, args.ToTZ)
			},
		},
		{
			name:        NameGetWeekYear,
			description: "Get week number, ISO week, day of year and related info for a date.",
			schema:      getWeekYearSchema,
			handler: func(_ context.Context, raw json.RawMessage) (any, error) {
				var args struct {
					DateStr string `json:"date_str"`
				}
				if err := decode(raw, &args); err != nil {
					return nil, err
				}
				return engine.WeekInfo(args.DateStr)
			},
		},
	}
}
