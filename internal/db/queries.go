package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/nlp"
	"github.com/hpungsan/flow/internal/task"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const taskColumns = `id, title, description, type, period, priority,
	tags_json, context_tags_json, time_block, scheduled_for, due_time,
	energy, focus, recurrence_json, confidence, original_input,
	completed_at, created_at, updated_at, deleted_at`

const insertTask = `INSERT INTO tasks (` + taskColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Insert stores a new task.
func Insert(ctx context.Context, q Querier, t *task.Task) error {
	args, err := taskArgs(t)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, insertTask, args...); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Upsert inserts a task or overwrites every column of the row with the same ID.
func Upsert(ctx context.Context, q Querier, t *task.Task) error {
	args, err := taskArgs(t)
	if err != nil {
		return err
	}
	query := insertTask + `
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			type = excluded.type,
			period = excluded.period,
			priority = excluded.priority,
			tags_json = excluded.tags_json,
			context_tags_json = excluded.context_tags_json,
			time_block = excluded.time_block,
			scheduled_for = excluded.scheduled_for,
			due_time = excluded.due_time,
			energy = excluded.energy,
			focus = excluded.focus,
			recurrence_json = excluded.recurrence_json,
			confidence = excluded.confidence,
			original_input = excluded.original_input,
			completed_at = excluded.completed_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetByID retrieves a task by its ULID.
// If includeDeleted is false, soft-deleted tasks are excluded.
func GetByID(ctx context.Context, q Querier, id string, includeDeleted bool) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	t, err := scanTask(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// Exists reports whether any row, deleted or not, has the given ID.
func Exists(ctx context.Context, q Querier, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// ListFilters narrows List results. Zero values mean "no filter".
type ListFilters struct {
	Status         string // open, done or all (default all)
	Tag            string // normalized tag
	Context        string // normalized @context
	ScheduledFor   string // YYYY-MM-DD
	IncludeDeleted bool
}

func (f ListFilters) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if !f.IncludeDeleted {
		clauses = append(clauses, "deleted_at IS NULL")
	}
	switch f.Status {
	case task.StatusOpen:
		clauses = append(clauses, "completed_at IS NULL")
	case task.StatusDone:
		clauses = append(clauses, "completed_at IS NOT NULL")
	}
	if f.Tag != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(tasks.tags_json) WHERE value = ?)")
		args = append(args, f.Tag)
	}
	if f.Context != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(tasks.context_tags_json) WHERE value = ?)")
		args = append(args, f.Context)
	}
	if f.ScheduledFor != "" {
		clauses = append(clauses, "scheduled_for = ?")
		args = append(args, f.ScheduledFor)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns task summaries ordered by most recently updated, plus the
// total number of matching rows.
func List(ctx context.Context, q Querier, f ListFilters, limit, offset int) ([]task.Summary, int, error) {
	where, args := f.where()

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []task.Summary
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, t.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// MarkCompleted sets completed_at on an active, open task. It reports false
// when the task was already completed.
func MarkCompleted(ctx context.Context, q Querier, id string) (bool, error) {
	now := time.Now().Unix()
	result, err := q.ExecContext(ctx, `
		UPDATE tasks SET completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL AND completed_at IS NULL`,
		now, now, id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	if n > 0 {
		return true, nil
	}

	// Distinguish "already done" from "missing"
	if _, err := GetByID(ctx, q, id, false); err != nil {
		return false, err
	}
	return false, nil
}

// SoftDelete marks a task as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, q Querier, id string) error {
	now := time.Now().Unix()
	result, err := q.ExecContext(ctx, `
		UPDATE tasks SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// PurgeDeleted permanently removes soft-deleted tasks. With olderThanDays set,
// only tasks deleted more than that many days ago are removed.
func PurgeDeleted(ctx context.Context, q Querier, olderThanDays *int) (int, error) {
	query := `DELETE FROM tasks WHERE deleted_at IS NOT NULL`
	var args []any
	if olderThanDays != nil {
		cutoff := time.Now().Add(-time.Duration(*olderThanDays) * 24 * time.Hour).Unix()
		query += ` AND deleted_at < ?`
		args = append(args, cutoff)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// StreamForExport returns rows of every task in creation order. The caller
// must close the rows and scan them with ScanTaskFromRows.
func StreamForExport(ctx context.Context, q Querier, includeDeleted bool) (*sql.Rows, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// ScanTaskFromRows scans the current row of a StreamForExport result.
func ScanTaskFromRows(rows *sql.Rows) (*task.Task, error) {
	return scanTask(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*task.Task, error) {
	var (
		t              task.Task
		description    sql.NullString
		tagsJSON       string
		contextsJSON   string
		timeBlock      sql.NullInt64
		scheduledFor   sql.NullString
		dueTime        sql.NullString
		energy         sql.NullString
		focus          sql.NullString
		recurrenceJSON sql.NullString
		completedAt    sql.NullInt64
		deletedAt      sql.NullInt64
	)

	err := s.Scan(
		&t.ID, &t.Title, &description, &t.Type, &t.Period, &t.Priority,
		&tagsJSON, &contextsJSON, &timeBlock, &scheduledFor, &dueTime,
		&energy, &focus, &recurrenceJSON, &t.Confidence, &t.OriginalInput,
		&completedAt, &t.CreatedAt, &t.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = fromNullString(description)
	t.ScheduledFor = fromNullString(scheduledFor)
	t.DueTime = fromNullString(dueTime)
	t.CompletedAt = fromNullInt64(completedAt)
	t.DeletedAt = fromNullInt64(deletedAt)
	if timeBlock.Valid {
		n := int(timeBlock.Int64)
		t.TimeBlock = &n
	}
	if energy.Valid {
		e := nlp.Energy(energy.String)
		t.Energy = &e
	}
	if focus.Valid {
		f := nlp.Focus(focus.String)
		t.Focus = &f
	}

	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(contextsJSON), &t.ContextTags); err != nil {
		return nil, err
	}
	if recurrenceJSON.Valid && recurrenceJSON.String != "" {
		var r nlp.Recurrence
		if err := json.Unmarshal([]byte(recurrenceJSON.String), &r); err != nil {
			return nil, err
		}
		t.Recurrence = &r
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.ContextTags == nil {
		t.ContextTags = []string{}
	}

	return &t, nil
}

// taskArgs flattens a task into insertTask's column order.
func taskArgs(t *task.Task) ([]any, error) {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	contexts := t.ContextTags
	if contexts == nil {
		contexts = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	contextsJSON, err := json.Marshal(contexts)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var recurrenceJSON sql.NullString
	if t.Recurrence != nil {
		data, err := json.Marshal(t.Recurrence)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		recurrenceJSON = sql.NullString{String: string(data), Valid: true}
	}

	var timeBlock sql.NullInt64
	if t.TimeBlock != nil {
		timeBlock = sql.NullInt64{Int64: int64(*t.TimeBlock), Valid: true}
	}
	var energy, focus sql.NullString
	if t.Energy != nil {
		energy = sql.NullString{String: string(*t.Energy), Valid: true}
	}
	if t.Focus != nil {
		focus = sql.NullString{String: string(*t.Focus), Valid: true}
	}

	return []any{
		t.ID, t.Title, toNullString(t.Description), string(t.Type), string(t.Period), string(t.Priority),
		string(tagsJSON), string(contextsJSON), timeBlock, toNullString(t.ScheduledFor), toNullString(t.DueTime),
		energy, focus, recurrenceJSON, t.Confidence, t.OriginalInput,
		toNullInt64(t.CompletedAt), t.CreatedAt, t.UpdatedAt, toNullInt64(t.DeletedAt),
	}, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func toNullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func fromNullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}
