package nlp

import (
	"slices"
	"time"
)

// TaskType is the inferred work category of a task.
type TaskType string

const (
	TypeBrain TaskType = "brain" // default
	TypeAdmin TaskType = "admin"
)

// Period is the coarse time-of-day bucket a task is scheduled into.
type Period string

const (
	PeriodMorning   Period = "morning" // default
	PeriodAfternoon Period = "afternoon"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium" // default
	PriorityHigh   Priority = "high"
)

// Energy is the inferred effort level of a task.
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

// Focus is the inferred concentration depth of a task.
type Focus string

const (
	FocusShallow Focus = "shallow"
	FocusDeep    Focus = "deep"
)

// RecurrencePattern is the unit a recurring task repeats on.
type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
)

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool { return t == TypeBrain || t == TypeAdmin }

// Valid reports whether p is a known period.
func (p Period) Valid() bool { return p == PeriodMorning || p == PeriodAfternoon }

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Valid reports whether e is a known energy level.
func (e Energy) Valid() bool { return e == EnergyLow || e == EnergyMedium || e == EnergyHigh }

// Valid reports whether f is a known focus depth.
func (f Focus) Valid() bool { return f == FocusShallow || f == FocusDeep }

// Valid reports whether p is a known recurrence pattern.
func (p RecurrencePattern) Valid() bool {
	return p == RecurDaily || p == RecurWeekly || p == RecurMonthly
}

// Recurrence describes how often a task repeats.
type Recurrence struct {
	Pattern  RecurrencePattern `json:"pattern" yaml:"pattern"`
	Interval int               `json:"interval" yaml:"interval"`
	EndDate  *time.Time        `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// ParsedTask is the structured result of parsing free text.
// Optional fields are nil when the corresponding stage did not match.
type ParsedTask struct {
	// Title is the cleaned task description, never empty
	Title string `json:"title"`

	// Description is never populated by the parser; downstream consumers may set it
	Description *string `json:"description,omitempty"`

	Type     TaskType `json:"type"`
	Period   Period   `json:"period"`
	Priority Priority `json:"priority"`

	// Tags are lower-cased free-form labels in insertion order
	Tags []string `json:"tags"`

	// ContextTags are GTD-style labels, each prefixed with "@"
	ContextTags []string `json:"context_tags"`

	// DueDate is midnight of the due day in the parser's location
	DueDate *time.Time `json:"due_date,omitempty"`

	// DueTime is a zero-padded 24-hour "HH:MM" clock time
	DueTime *string `json:"due_time,omitempty"`

	// TimeBlock is the estimated duration in minutes
	TimeBlock *int `json:"time_block,omitempty"`

	Energy     *Energy     `json:"energy,omitempty"`
	Focus      *Focus      `json:"focus,omitempty"`
	Recurrence *Recurrence `json:"recurrence,omitempty"`

	// Confidence is derived from the populated fields; see score
	Confidence float64 `json:"confidence"`

	// OriginalInput is the verbatim input
	OriginalInput string `json:"original_input"`

	// Suggestions holds one display note per stage that fired, in stage order
	Suggestions []string `json:"suggestions"`
}

// Clone returns a deep copy so callers sharing a cached result cannot
// observe each other's mutations.
func (t ParsedTask) Clone() ParsedTask {
	out := t
	out.Tags = slices.Clone(t.Tags)
	out.ContextTags = slices.Clone(t.ContextTags)
	out.Suggestions = slices.Clone(t.Suggestions)
	if t.Description != nil {
		d := *t.Description
		out.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	if t.DueTime != nil {
		s := *t.DueTime
		out.DueTime = &s
	}
	if t.TimeBlock != nil {
		n := *t.TimeBlock
		out.TimeBlock = &n
	}
	if t.Energy != nil {
		e := *t.Energy
		out.Energy = &e
	}
	if t.Focus != nil {
		f := *t.Focus
		out.Focus = &f
	}
	if t.Recurrence != nil {
		r := *t.Recurrence
		if r.EndDate != nil {
			end := *r.EndDate
			r.EndDate = &end
		}
		out.Recurrence = &r
	}
	return out
}
