package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/logging"
	"github.com/hpungsan/flow/internal/task"
)

// CompleteInput contains parameters for the Complete operation.
type CompleteInput struct {
	ID string
}

// CompleteOutput contains the result of the Complete operation.
type CompleteOutput struct {
	ID string `json:"id"`

	// AlreadyCompleted is true when the task was done before this call.
	AlreadyCompleted bool `json:"already_completed"`

	// Next is the follow-up occurrence created for a recurring task.
	Next *task.Summary `json:"next,omitempty"`
}

// Complete marks a task done. Completing a recurring task schedules its next
// occurrence in the same transaction; completing an already-done task is a
// no-op.
func Complete(ctx context.Context, database *sql.DB, parser *Parser, input CompleteInput) (*CompleteOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	t, err := db.GetByID(ctx, tx, id, false)
	if err != nil {
		return nil, err
	}

	changed, err := db.MarkCompleted(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	out := &CompleteOutput{ID: id, AlreadyCompleted: !changed}

	if changed && t.Recurrence != nil {
		nextID, err := generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if next := t.NextInstance(nextID, parser.Today(), time.Now()); next != nil {
			if err := db.Insert(ctx, tx, next); err != nil {
				return nil, err
			}
			summary := next.ToSummary()
			out.Next = &summary
			logging.FromContext(ctx).Debug("scheduled next occurrence", "id", id, "next", nextID, "date", *next.ScheduledFor)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}
