package core

// convert.go parses the dates people actually type into deadline cells:
//   - day-first numeric dates with -, . or / separators
//   - ISO dates, with or without a time part
//   - two-digit years, resolved with a pivot
// Cells stored as real spreadsheet dates arrive already rendered as dd-MM-yyyy.

import (
	"strings"
	"time"

	"github.com/JonMunkholm/indicators/internal/sheet"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"02-01-06", "2-1-06", "02.01.06", "2.1.06", "02/01/06", "2/1/06",
	}
	fourDigitYearLayouts = []string{
		sheet.DateLayout, "2-1-2006",
		"02.01.2006", "2.1.2006",
		"02/01/2006", "2/1/2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00",
		"2 Jan 2006", "02 Jan 2006",
	}
)

// ParseDate parses a deadline cell. It reports false for empty or
// unrecognized input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return dateOnly(t), true
		}
	}

	return time.Time{}, false
}

// FormatDate renders t as dd-MM-yyyy.
func FormatDate(t time.Time) string {
	return t.Format(sheet.DateLayout)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
