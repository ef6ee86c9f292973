package nlp

import (
	"fmt"
	"regexp"
	"time"
)

// clockMatch is the result of the time-of-day stage. Time is empty when only a
// period word ("morning", "evening") was found.
type clockMatch struct {
	Time   string
	Period Period
}

var clockRules = []rule[clockMatch]{
	{
		// 3:30, 3:30pm, 15:45
		pattern: regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?:\s*(am|pm))?\b`),
		extract: func(m []string, _ time.Time) (clockMatch, bool) {
			return clockFromParts(m[1], m[2], m[3])
		},
	},
	{
		// 3pm, 11 am
		pattern: regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`),
		extract: func(m []string, _ time.Time) (clockMatch, bool) {
			return clockFromParts(m[1], "00", m[2])
		},
	},
	{
		// There is no evening period; it collapses into afternoon.
		pattern: regexp.MustCompile(`\b(morning|afternoon|evening)\b`),
		extract: func(m []string, _ time.Time) (clockMatch, bool) {
			if m[1] == "morning" {
				return clockMatch{Period: PeriodMorning}, true
			}
			return clockMatch{Period: PeriodAfternoon}, true
		},
	},
}

// clockFromParts converts hour/minute captures and an optional meridiem into a
// 24-hour clock match. Out-of-range values are rejected.
func clockFromParts(hourStr, minuteStr, meridiem string) (clockMatch, bool) {
	hour, ok := atoi(hourStr)
	if !ok {
		return clockMatch{}, false
	}
	minute, ok := atoi(minuteStr)
	if !ok || minute > 59 {
		return clockMatch{}, false
	}

	switch meridiem {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return clockMatch{}, false
		}
		if meridiem == "pm" && hour != 12 {
			hour += 12
		}
		if meridiem == "am" && hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return clockMatch{}, false
		}
	}

	period := PeriodMorning
	if hour >= 12 {
		period = PeriodAfternoon
	}
	return clockMatch{
		Time:   fmt.Sprintf("%02d:%02d", hour, minute),
		Period: period,
	}, true
}

func extractClock(text string, today time.Time) (clockMatch, bool) {
	return firstMatch(clockRules, text, today)
}
