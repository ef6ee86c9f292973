package task

import "github.com/hpungsan/flow/internal/nlp"

// Summary is the list-view projection of a task.
type Summary struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Status       string       `json:"status"`
	Type         nlp.TaskType `json:"type"`
	Priority     nlp.Priority `json:"priority"`
	Period       nlp.Period   `json:"period"`
	ScheduledFor *string      `json:"scheduled_for,omitempty"`
	DueTime      *string      `json:"due_time,omitempty"`
	TimeBlock    *int         `json:"time_block,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	ContextTags  []string     `json:"context_tags,omitempty"`
	Recurring    bool         `json:"recurring,omitempty"`
	CreatedAt    int64        `json:"created_at"`
	UpdatedAt    int64        `json:"updated_at"`
	DeletedAt    *int64       `json:"deleted_at,omitempty"`
}

// ToSummary strips the parse metadata from a task.
func (t *Task) ToSummary() Summary {
	return Summary{
		ID:           t.ID,
		Title:        t.Title,
		Status:       t.Status(),
		Type:         t.Type,
		Priority:     t.Priority,
		Period:       t.Period,
		ScheduledFor: t.ScheduledFor,
		DueTime:      t.DueTime,
		TimeBlock:    t.TimeBlock,
		Tags:         t.Tags,
		ContextTags:  t.ContextTags,
		Recurring:    t.Recurrence != nil,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		DeletedAt:    t.DeletedAt,
	}
}
