package nlp

import (
	"regexp"
	"strings"
)

var (
	hashtagPattern  = regexp.MustCompile(`#(\w[\w-]*)`)
	categoryPattern = regexp.MustCompile(`\b(personal|work|home|health|finance|shopping|travel|urgent|meeting|call|email)\b`)

	// The @ must not follow a word character or a dot, so a@b.com is skipped
	// while "(@calls)" and "call,@home" are not.
	contextPattern = regexp.MustCompile(`(?:^|[^\w.])@(\w[\w-]*)`)
)

// impliedContexts maps keyword groups to the context they imply. Keywords
// match at the start of a word, so "calls" and "reading" count.
var impliedContexts = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{"@calls", regexp.MustCompile(`\b(?:call|phone)`)},
	{"@email", regexp.MustCompile(`\b(?:email|message)`)},
	{"@computer", regexp.MustCompile(`\b(?:computer|code|type)`)},
	{"@office", regexp.MustCompile(`\b(?:office|work)`)},
	{"@home", regexp.MustCompile(`\b(?:home|house)`)},
	{"@errands", regexp.MustCompile(`\b(?:errands|shopping|buy)`)},
	{"@waiting", regexp.MustCompile(`\b(?:waiting|wait)`)},
	{"@review", regexp.MustCompile(`\b(?:review|check)`)},
	{"@read", regexp.MustCompile(`\b(?:read|reading)`)},
}

// orderedSet collects strings once each, compared case-insensitively, in
// insertion order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *orderedSet) add(v string) {
	key := strings.ToLower(v)
	if _, ok := s.seen[key]; ok {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, v)
}

// extractTags returns hashtags first, then category words in order of appearance.
func extractTags(text string) ([]string, bool) {
	var set orderedSet
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		set.add(strings.ToLower(m[1]))
	}
	for _, w := range categoryPattern.FindAllString(text, -1) {
		set.add(w)
	}
	return set.items, len(set.items) > 0
}

// extractContexts returns explicit @contexts first, then implied ones in table order.
func extractContexts(text string) ([]string, bool) {
	var set orderedSet
	for _, m := range contextPattern.FindAllStringSubmatch(text, -1) {
		set.add("@" + strings.ToLower(m[1]))
	}
	for _, c := range impliedContexts {
		if c.pattern.MatchString(text) {
			set.add(c.tag)
		}
	}
	return set.items, len(set.items) > 0
}
