package task

import (
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/flow/internal/nlp"
)

// Status values for list filters and summaries.
const (
	StatusOpen = "open"
	StatusDone = "done"
	StatusAll  = "all"
)

// Task is a parsed task as it is persisted.
type Task struct {
	// ID is a ULID that uniquely identifies this task
	ID string `json:"id" yaml:"id"`

	Title       string  `json:"title" yaml:"title"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`

	Type     nlp.TaskType `json:"type" yaml:"type"`
	Period   nlp.Period   `json:"period" yaml:"period"`
	Priority nlp.Priority `json:"priority" yaml:"priority"`

	Tags        []string `json:"tags" yaml:"tags"`
	ContextTags []string `json:"context_tags" yaml:"context_tags"`

	// TimeBlock is the estimated duration in minutes
	TimeBlock *int `json:"time_block,omitempty" yaml:"time_block,omitempty"`

	// ScheduledFor is the due date as YYYY-MM-DD
	ScheduledFor *string `json:"scheduled_for,omitempty" yaml:"scheduled_for,omitempty"`

	DueTime    *string         `json:"due_time,omitempty" yaml:"due_time,omitempty"`
	Energy     *nlp.Energy     `json:"energy,omitempty" yaml:"energy,omitempty"`
	Focus      *nlp.Focus      `json:"focus,omitempty" yaml:"focus,omitempty"`
	Recurrence *nlp.Recurrence `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`

	Confidence    float64 `json:"confidence" yaml:"confidence"`
	OriginalInput string  `json:"original_input" yaml:"original_input"`

	// CompletedAt is the Unix timestamp when the task was marked done (nullable)
	CompletedAt *int64 `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`

	CreatedAt int64 `json:"created_at" yaml:"created_at"`
	UpdatedAt int64 `json:"updated_at" yaml:"updated_at"`

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64 `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// Status reports whether the task is open or done.
func (t *Task) Status() string {
	if t.CompletedAt != nil {
		return StatusDone
	}
	return StatusOpen
}

// FromParsed builds a new task from a parse result.
func FromParsed(p nlp.ParsedTask, id string, now time.Time) *Task {
	p = p.Clone()
	ts := now.Unix()
	t := &Task{
		ID:            id,
		Title:         strings.TrimSpace(p.Title),
		Description:   p.Description,
		Type:          p.Type,
		Period:        p.Period,
		Priority:      p.Priority,
		Tags:          p.Tags,
		ContextTags:   p.ContextTags,
		TimeBlock:     p.TimeBlock,
		DueTime:       p.DueTime,
		Energy:        p.Energy,
		Focus:         p.Focus,
		Recurrence:    p.Recurrence,
		Confidence:    p.Confidence,
		OriginalInput: p.OriginalInput,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if p.DueDate != nil {
		d := p.DueDate.Format(time.DateOnly)
		t.ScheduledFor = &d
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.ContextTags == nil {
		t.ContextTags = []string{}
	}
	return t
}

// NormalizeTag lower-cases and trims a tag filter and drops a leading '#'.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}

// NormalizeContext lower-cases and trims a context filter and ensures the '@' prefix.
func NormalizeContext(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.HasPrefix(s, "@") {
		return s
	}
	return "@" + s
}

// HasTag reports whether the task carries tag (already normalized).
func (t *Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}
