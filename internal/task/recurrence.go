package task

import (
	"time"

	"github.com/hpungsan/flow/internal/nlp"
)

// NextOccurrence returns the date one interval after from. It reports false
// when that date falls after the recurrence's end date. Monthly steps clamp
// to the last day of a shorter month.
func NextOccurrence(r nlp.Recurrence, from time.Time) (time.Time, bool) {
	n := r.Interval
	if n < 1 {
		n = 1
	}

	var next time.Time
	switch r.Pattern {
	case nlp.RecurDaily:
		next = from.AddDate(0, 0, n)
	case nlp.RecurWeekly:
		next = from.AddDate(0, 0, 7*n)
	case nlp.RecurMonthly:
		next = addMonths(from, n)
	default:
		return time.Time{}, false
	}

	if r.EndDate != nil && next.Format(time.DateOnly) > r.EndDate.Format(time.DateOnly) {
		return time.Time{}, false
	}
	return next, true
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// NextInstance builds the follow-up task for a completed recurring task.
// The new task is scheduled on the first occurrence after today, counting
// from the task's own scheduled date when it has one. It returns nil when the
// task does not recur or the recurrence has ended.
func (t *Task) NextInstance(id string, today, now time.Time) *Task {
	if t.Recurrence == nil {
		return nil
	}

	base := today
	if t.ScheduledFor != nil {
		if d, err := time.ParseInLocation(time.DateOnly, *t.ScheduledFor, today.Location()); err == nil {
			base = d
		}
	}

	next, ok := NextOccurrence(*t.Recurrence, base)
	for ok && !next.After(today) {
		next, ok = NextOccurrence(*t.Recurrence, next)
	}
	if !ok {
		return nil
	}

	out := t.clone()
	out.ID = id
	out.CompletedAt = nil
	out.DeletedAt = nil
	out.CreatedAt = now.Unix()
	out.UpdatedAt = now.Unix()
	scheduled := next.Format(time.DateOnly)
	out.ScheduledFor = &scheduled
	return out
}

func (t *Task) clone() *Task {
	// Round-trip through ParsedTask.Clone for the pointer fields it shares.
	p := nlp.ParsedTask{
		Description: t.Description,
		Tags:        t.Tags,
		ContextTags: t.ContextTags,
		DueTime:     t.DueTime,
		TimeBlock:   t.TimeBlock,
		Energy:      t.Energy,
		Focus:       t.Focus,
		Recurrence:  t.Recurrence,
	}.Clone()

	out := *t
	out.Description = p.Description
	out.Tags = p.Tags
	out.ContextTags = p.ContextTags
	out.DueTime = p.DueTime
	out.TimeBlock = p.TimeBlock
	out.Energy = p.Energy
	out.Focus = p.Focus
	out.Recurrence = p.Recurrence
	return &out
}
