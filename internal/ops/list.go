package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/task"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Status         string // open, done or all (default: all)
	Tag            string // with or without '#'
	Context        string // with or without '@'
	Date           string // YYYY-MM-DD scheduled date
	Limit          int    // default: 20, max: 100
	Offset         int    // default: 0
	IncludeDeleted bool
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []task.Summary `json:"items"`
	Pagination Pagination     `json:"pagination"`
	Sort       string         `json:"sort"`
}

// List retrieves task summaries with optional filters and pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	status := strings.ToLower(strings.TrimSpace(input.Status))
	switch status {
	case "", task.StatusAll:
		status = ""
	case task.StatusOpen, task.StatusDone:
	default:
		return nil, errors.NewInvalidRequest("status must be one of: open, done, all")
	}

	date := strings.TrimSpace(input.Date)
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return nil, errors.NewInvalidRequest("date must be YYYY-MM-DD")
		}
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	filters := db.ListFilters{
		Status:         status,
		Tag:            task.NormalizeTag(input.Tag),
		Context:        task.NormalizeContext(input.Context),
		ScheduledFor:   date,
		IncludeDeleted: input.IncludeDeleted,
	}

	summaries, total, err := db.List(ctx, database, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if summaries == nil {
		summaries = []task.Summary{}
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}
