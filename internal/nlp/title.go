package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

// titleStrip lists, in application order, every span the stages can consume.
// Patterns run against the original input, so all of them are case-insensitive.
var titleStrip = compileAll(
	// recurrence
	`\bevery\s+\d+\s+(?:days?|weeks?|months?)\b`,
	`\bevery\s+(?:day|week|month|`+weekdayNames+`)\b`,
	`\b(?:daily|weekly|monthly)\b`,

	// date
	`\bnext\s+(?:`+weekdayNames+`)\b`,
	`\b(?:`+weekdayNames+`)\b`,
	`\b(?:today|tomorrow)\b`,
	`\b\d{1,2}/\d{1,2}(?:/(?:\d{4}|\d{2}))?\b`,
	`\bin\s+\d+\s+(?:days?|weeks?|months?)\b`,

	// time
	`\b\d{1,2}:\d{2}(?:\s*(?:am|pm))?\b`,
	`\b\d{1,2}\s*(?:am|pm)\b`,
	`\b(?:(?:in\s+the|this)\s+)?(?:morning|afternoon|evening)\b`,

	// duration
	`\bfor\s+\d+\s*(?:hours?|hrs?|h|minutes?|mins?|m)\b`,
	`\b\d+\s*(?:hours?|hrs?)(?:\s*\d+\s*(?:minutes?|mins?))?\b`,
	`\b\d+\s*(?:minutes?|mins?)\b`,

	// priority
	`\b(?:high|medium|low)\s+priority\b`,
	`\b(?:urgent|asap|critical|important|emergency|medium|normal|standard|low|minor|when\s+possible|eventually|someday)\b`,
	`!+`,

	// explicit tags and contexts
	`#\w[\w-]*`,
	`(?:^|[^\w.])@\w[\w-]*`,

	// leftover prepositions
	`\b(?:at|on|in|for|due|by|until|before|after)\b`,
)

var whitespaceRun = regexp.MustCompile(`\s+`)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// cleanTitle removes consumed spans from the original input. When nothing
// is left the input is returned unchanged.
func cleanTitle(original string) string {
	title := original
	for _, re := range titleStrip {
		title = re.ReplaceAllString(title, " ")
	}
	title = whitespaceRun.ReplaceAllString(title, " ")
	title = strings.TrimFunc(title, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	if title == "" {
		return original
	}
	return title
}
