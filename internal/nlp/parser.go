// Package nlp turns free-text task descriptions into structured tasks using
// ordered tables of regular expressions.
package nlp

import (
	"fmt"
	"strings"
	"time"
)

// Parser resolves relative dates against a clock in a fixed location.
// A Parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the source of "now". Nil is ignored.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the zone relative dates resolve in. Nil is ignored.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// New returns a Parser using the wall clock and the local zone unless
// overridden by opts.
func New(opts ...Option) *Parser {
	p := &Parser{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// Parse parses input with the wall clock in the local zone.
func Parse(input string) ParsedTask {
	return defaultParser.Parse(input)
}

// Today returns midnight of the current day in the parser's location.
func (p *Parser) Today() time.Time {
	now := p.now().In(p.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.loc)
}

// Location returns the zone relative dates resolve in.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse reads the clock once and parses input relative to today.
func (p *Parser) Parse(input string) ParsedTask {
	return p.ParseOn(input, p.Today())
}

// ParseOn parses input with relative dates resolved against today, which
// should be a midnight in the parser's location.
func (p *Parser) ParseOn(input string, today time.Time) ParsedTask {
	t := ParsedTask{
		Title:         input,
		Type:          TypeBrain,
		Period:        PeriodMorning,
		Priority:      PriorityMedium,
		Tags:          []string{},
		ContextTags:   []string{},
		OriginalInput: input,
		Suggestions:   []string{},
	}

	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		t.Confidence = score(&t)
		return t
	}

	note := func(format string, args ...any) {
		t.Suggestions = append(t.Suggestions, fmt.Sprintf(format, args...))
	}

	if c, ok := extractClock(text, today); ok {
		t.Period = c.Period
		if c.Time != "" {
			clock := c.Time
			t.DueTime = &clock
			note("Time: %s (%s)", clock, c.Period)
		} else {
			note("Period: %s", c.Period)
		}
	}

	if d, ok := extractDate(text, today); ok {
		t.DueDate = &d
		note("Due date: %s", d.Format(time.DateOnly))
	}

	if r, ok := extractRecurrence(text, today); ok {
		t.Recurrence = &r
		note("Repeats: %s", describeRecurrence(r))
	}

	if pr, ok := extractPriority(text); ok {
		t.Priority = pr
		note("Priority: %s", pr)
	}

	if ty, ok := extractType(text); ok {
		t.Type = ty
		note("Type: %s task", ty)
	}

	if tags, ok := extractTags(text); ok {
		t.Tags = tags
		note("Tags: %s", strings.Join(tags, ", "))
	}

	if ctxs, ok := extractContexts(text); ok {
		t.ContextTags = ctxs
		note("Contexts: %s", strings.Join(ctxs, ", "))
	}

	if e, ok := extractEnergy(text); ok {
		t.Energy = &e
		note("Energy: %s", e)
	}

	if f, ok := extractFocus(text); ok {
		t.Focus = &f
		note("Focus: %s", f)
	}

	if mins, ok := extractDuration(text, today); ok {
		t.TimeBlock = &mins
		note("Duration: %s", FormatMinutes(mins))
	}

	t.Title = cleanTitle(input)
	t.Confidence = score(&t)
	return t
}

func describeRecurrence(r Recurrence) string {
	var s string
	if r.Interval == 1 {
		s = string(r.Pattern)
	} else {
		unit := map[RecurrencePattern]string{
			RecurDaily:   "days",
			RecurWeekly:  "weeks",
			RecurMonthly: "months",
		}[r.Pattern]
		s = fmt.Sprintf("every %d %s", r.Interval, unit)
	}
	if r.EndDate != nil {
		s += " until " + r.EndDate.Format(time.DateOnly)
	}
	return s
}

// FormatMinutes renders a duration in minutes as "1h 30m", "2h" or "45m".
func FormatMinutes(mins int) string {
	h, m := mins/60, mins%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
