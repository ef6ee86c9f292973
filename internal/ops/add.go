package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/logging"
	"github.com/hpungsan/flow/internal/task"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Text        string  // required
	Description *string // optional markdown
	Force       bool    // store even below min_confidence
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	ID          string     `json:"id"`
	Task        *task.Task `json:"task"`
	Suggestions []string   `json:"suggestions"`
}

// Add parses text and stores the result as a new task.
func Add(ctx context.Context, database *sql.DB, parser *Parser, input AddInput) (*AddOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}
	if err := checkCancelled(ctx, "add"); err != nil {
		return nil, err
	}

	parsed := parser.Parse(ctx, input.Text)
	if !input.Force && parsed.Confidence < parser.minConfidence {
		return nil, errors.NewLowConfidence(parsed.Confidence, parser.minConfidence)
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	t := task.FromParsed(parsed, id, time.Now())
	if input.Description != nil && strings.TrimSpace(*input.Description) != "" {
		desc := strings.TrimSpace(*input.Description)
		t.Description = &desc
	}

	if err := db.Insert(ctx, database, t); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("task added", "id", id, "confidence", parsed.Confidence)

	suggestions := parsed.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return &AddOutput{
		ID:          id,
		Task:        t,
		Suggestions: suggestions,
	}, nil
}
