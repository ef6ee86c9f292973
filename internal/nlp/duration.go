package nlp

import (
	"regexp"
	"time"
)

func minutesRule(pattern string, hourGroup, minuteGroup int) rule[int] {
	return rule[int]{
		pattern: regexp.MustCompile(pattern),
		extract: func(m []string, _ time.Time) (int, bool) {
			total := 0
			if hourGroup > 0 && m[hourGroup] != "" {
				h, ok := atoiMax(m[hourGroup], maxTimeBlockMinutes/60)
				if !ok {
					return 0, false
				}
				total += h * 60
			}
			if minuteGroup > 0 && m[minuteGroup] != "" {
				mins, ok := atoiMax(m[minuteGroup], maxTimeBlockMinutes)
				if !ok {
					return 0, false
				}
				total += mins
			}
			return total, total > 0 && total <= maxTimeBlockMinutes
		},
	}
}

var durationRules = []rule[int]{
	minutesRule(`\bfor\s+(\d+)\s*(?:hours?|hrs?|h)\b`, 1, 0),
	minutesRule(`\bfor\s+(\d+)\s*(?:minutes?|mins?|m)\b`, 0, 1),
	// 2 hrs, 1 hour 30 mins
	minutesRule(`\b(\d+)\s*(?:hours?|hrs?)(?:\s*(\d+)\s*(?:minutes?|mins?))?\b`, 1, 2),
	// 45 mins
	minutesRule(`\b(\d+)\s*(?:minutes?|mins?)\b`, 0, 1),
}

func extractDuration(text string, today time.Time) (int, bool) {
	return firstMatch(durationRules, text, today)
}
