package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/task"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	IncludeDeleted bool
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	task.Task        // embedded (copy, not pointer)
	Status    string `json:"status"`
}

// Fetch retrieves a task by ID.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	t, err := db.GetByID(ctx, database, id, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		Task:   *t,
		Status: t.Status(),
	}, nil
}
