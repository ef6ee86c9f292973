package nlp

import (
	"regexp"
	"strings"
	"time"
)

var dateRules = []rule[time.Time]{
	{
		pattern: regexp.MustCompile(`\btoday\b`),
		extract: func(_ []string, today time.Time) (time.Time, bool) {
			return today, true
		},
	},
	{
		pattern: regexp.MustCompile(`\btomorrow\b`),
		extract: func(_ []string, today time.Time) (time.Time, bool) {
			return today.AddDate(0, 0, 1), true
		},
	},
	{
		pattern: regexp.MustCompile(`\bnext\s+(` + weekdayNames + `)\b`),
		extract: func(m []string, today time.Time) (time.Time, bool) {
			return nextWeekday(today, weekdays[m[1]]), true
		},
	},
	{
		pattern: regexp.MustCompile(`\b(` + weekdayNames + `)\b`),
		extract: func(m []string, today time.Time) (time.Time, bool) {
			return nextWeekday(today, weekdays[m[1]]), true
		},
	},
	{
		// M/D, M/D/YY, M/D/YYYY
		pattern: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`),
		extract: numericDate,
	},
	{
		pattern: regexp.MustCompile(`\bin\s+(\d+)\s+(days?|weeks?|months?)\b`),
		extract: func(m []string, today time.Time) (time.Time, bool) {
			switch {
			case strings.HasPrefix(m[2], "day"):
				n, ok := atoiMax(m[1], maxOffsetDays)
				return today.AddDate(0, 0, n), ok
			case strings.HasPrefix(m[2], "week"):
				n, ok := atoiMax(m[1], maxOffsetWeeks)
				return today.AddDate(0, 0, n*7), ok
			default:
				n, ok := atoiMax(m[1], maxOffsetMonths)
				return today.AddDate(0, n, 0), ok
			}
		},
	},
}

// nextWeekday returns the next occurrence of target strictly after today.
// When today already is the target weekday the result is one week out.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	daysUntil := int(target - today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}

// numericDate builds a date from M/D[/Y] captures, rejecting dates that
// time.Date would silently normalize (13/45, 2/30).
func numericDate(m []string, today time.Time) (time.Time, bool) {
	month, ok := atoi(m[1])
	if !ok {
		return time.Time{}, false
	}
	day, ok := atoi(m[2])
	if !ok {
		return time.Time{}, false
	}

	year := today.Year()
	if m[3] != "" {
		y, ok := atoi(m[3])
		if !ok {
			return time.Time{}, false
		}
		if len(m[3]) == 2 {
			y += 2000
		}
		year = y
	}

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func extractDate(text string, today time.Time) (time.Time, bool) {
	return firstMatch(dateRules, text, today)
}
