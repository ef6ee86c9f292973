package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rule pairs a pattern with the extractor that turns its submatches into a value.
// An extractor may reject a syntactic match (e.g. 13/45 is not a date), in which
// case evaluation continues with the next rule.
type rule[T any] struct {
	pattern *regexp.Regexp
	extract func(m []string, today time.Time) (T, bool)
}

// firstMatch evaluates rules in order and returns the first accepted value.
func firstMatch[T any](rules []rule[T], text string, today time.Time) (T, bool) {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := r.extract(m, today); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// keywordGroup is a named list of keywords scored by substring occurrence.
type keywordGroup[K comparable] struct {
	key   K
	words []string
}

// countKeywords returns the number of substring occurrences of each group's keywords.
func countKeywords[K comparable](groups []keywordGroup[K], text string) map[K]int {
	counts := make(map[K]int, len(groups))
	for _, g := range groups {
		for _, w := range g.words {
			counts[g.key] += strings.Count(text, w)
		}
	}
	return counts
}

// atoi converts a regexp digit capture; captures are \d+ so only overflow fails.
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Upper bounds for numeric captures. A capture above its bound is no match.
const (
	maxTimeBlockMinutes = 7 * 24 * 60
	maxOffsetDays       = 3660
	maxOffsetWeeks      = maxOffsetDays / 7
	maxOffsetMonths     = 120
	maxInterval         = 999
)

// atoiMax is atoi that also rejects values above limit.
func atoiMax(s string, limit int) (int, bool) {
	n, ok := atoi(s)
	if !ok || n > limit {
		return 0, false
	}
	return n, true
}

// weekdayNames lists the weekday words recognized by the date and recurrence stages.
const weekdayNames = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}
