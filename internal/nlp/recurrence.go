package nlp

import (
	"regexp"
	"strings"
	"time"
)

func fixedRecurrence(p RecurrencePattern) func([]string, time.Time) (Recurrence, bool) {
	return func(_ []string, _ time.Time) (Recurrence, bool) {
		return Recurrence{Pattern: p, Interval: 1}, true
	}
}

var recurrenceRules = []rule[Recurrence]{
	{
		pattern: regexp.MustCompile(`\b(?:every\s+day|daily)\b`),
		extract: fixedRecurrence(RecurDaily),
	},
	{
		pattern: regexp.MustCompile(`\b(?:every\s+week|weekly)\b`),
		extract: fixedRecurrence(RecurWeekly),
	},
	{
		pattern: regexp.MustCompile(`\b(?:every\s+month|monthly)\b`),
		extract: fixedRecurrence(RecurMonthly),
	},
	{
		pattern: regexp.MustCompile(`\bevery\s+(\d+)\s+(days?|weeks?|months?)\b`),
		extract: func(m []string, _ time.Time) (Recurrence, bool) {
			n, ok := atoiMax(m[1], maxInterval)
			if !ok || n < 1 {
				return Recurrence{}, false
			}
			switch {
			case strings.HasPrefix(m[2], "day"):
				return Recurrence{Pattern: RecurDaily, Interval: n}, true
			case strings.HasPrefix(m[2], "week"):
				return Recurrence{Pattern: RecurWeekly, Interval: n}, true
			default:
				return Recurrence{Pattern: RecurMonthly, Interval: n}, true
			}
		},
	},
	{
		// The weekday itself is not retained.
		pattern: regexp.MustCompile(`\bevery\s+(?:` + weekdayNames + `)\b`),
		extract: fixedRecurrence(RecurWeekly),
	},
}

// untilPattern captures the date expression that bounds a recurrence.
var untilPattern = regexp.MustCompile(`\buntil\s+(.+)$`)

// extractRecurrence finds a repeat rule and, when the text carries an
// "until <date>" clause, resolves its end date with the date rules.
func extractRecurrence(text string, today time.Time) (Recurrence, bool) {
	r, ok := firstMatch(recurrenceRules, text, today)
	if !ok {
		return Recurrence{}, false
	}
	if m := untilPattern.FindStringSubmatch(text); m != nil {
		if end, ok := extractDate(m[1], today); ok {
			r.EndDate = &end
		}
	}
	return r, true
}
