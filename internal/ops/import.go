package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/nlp"
	"github.com/hpungsan/flow/internal/task"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite on collision
	ImportModeRename  ImportMode = "rename"  // assign a new ID on collision
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required; format follows the extension
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one record that could not be imported.
// Line is the line number in JSONL files and the document number in YAML.
type ImportError struct {
	Line    int    `json:"line,omitempty"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importRecord is a task line or the export header.
type importRecord struct {
	FlowExport bool `json:"_flow_export" yaml:"flow_export"`
	task.Task  `yaml:",inline"`
}

type parsedRecord struct {
	line int
	task *task.Task
}

// Import restores tasks from a JSONL or YAML export file.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace && input.Mode != ImportModeRename {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, rename")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}
	format, _ := FormatFromPath(input.Path)

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	var (
		records     []parsedRecord
		parseErrors []ImportError
	)
	if format == FormatYAML {
		records, parseErrors = parseYAMLExport(file)
	} else {
		records, parseErrors = parseJSONLExport(file)
	}

	// For mode:error, fail on any parse errors
	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		return &ImportOutput{Errors: parseErrors}, nil
	}

	switch input.Mode {
	case ImportModeError:
		return importModeError(ctx, database, records)
	case ImportModeReplace:
		return importModeReplace(ctx, database, records, parseErrors)
	default:
		return importModeRename(ctx, database, records, parseErrors)
	}
}

func parseJSONLExport(r io.Reader) ([]parsedRecord, []ImportError) {
	var (
		records     []parsedRecord
		parseErrors []ImportError
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var rec importRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if rec.FlowExport {
			continue
		}
		if ie := checkRecord(lineNum, &rec.Task); ie != nil {
			parseErrors = append(parseErrors, *ie)
			continue
		}
		t := rec.Task
		records = append(records, parsedRecord{line: lineNum, task: &t})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}
	return records, parseErrors
}

func parseYAMLExport(r io.Reader) ([]parsedRecord, []ImportError) {
	var (
		records     []parsedRecord
		parseErrors []ImportError
	)

	dec := yaml.NewDecoder(r)
	for doc := 1; ; doc++ {
		var rec importRecord
		err := dec.Decode(&rec)
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The decoder cannot resynchronize after a syntax error
			parseErrors = append(parseErrors, ImportError{
				Line:    doc,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid YAML: %v", err),
			})
			break
		}
		if rec.FlowExport {
			continue
		}
		if ie := checkRecord(doc, &rec.Task); ie != nil {
			parseErrors = append(parseErrors, *ie)
			continue
		}
		t := rec.Task
		records = append(records, parsedRecord{line: doc, task: &t})
	}
	return records, parseErrors
}

// checkRecord validates required fields and fills parser defaults for
// hand-edited records.
func checkRecord(line int, t *task.Task) *ImportError {
	if strings.TrimSpace(t.ID) == "" {
		return &ImportError{Line: line, Code: "INVALID_RECORD", Message: "missing id field"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &ImportError{Line: line, ID: t.ID, Code: "INVALID_RECORD", Message: "missing title field"}
	}
	if t.Type == "" {
		t.Type = nlp.TypeBrain
	}
	if t.Period == "" {
		t.Period = nlp.PeriodMorning
	}
	if t.Priority == "" {
		t.Priority = nlp.PriorityMedium
	}
	if t.OriginalInput == "" {
		t.OriginalInput = t.Title
	}

	invalid := func(field string, value any) *ImportError {
		return &ImportError{Line: line, ID: t.ID, Code: "INVALID_RECORD",
			Message: fmt.Sprintf("invalid %s: %v", field, value)}
	}
	switch {
	case !t.Type.Valid():
		return invalid("type", t.Type)
	case !t.Period.Valid():
		return invalid("period", t.Period)
	case !t.Priority.Valid():
		return invalid("priority", t.Priority)
	case t.Energy != nil && !t.Energy.Valid():
		return invalid("energy", *t.Energy)
	case t.Focus != nil && !t.Focus.Valid():
		return invalid("focus", *t.Focus)
	case t.Recurrence != nil && !t.Recurrence.Pattern.Valid():
		return invalid("recurrence pattern", t.Recurrence.Pattern)
	case t.Recurrence != nil && t.Recurrence.Interval < 1:
		return invalid("recurrence interval", t.Recurrence.Interval)
	}
	return nil
}

// importModeError imports all records atomically, rolling back on any collision.
func importModeError(ctx context.Context, database *sql.DB, records []parsedRecord) (*ImportOutput, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	imported := 0
	for _, rec := range records {
		if err := checkCancelled(ctx, "import"); err != nil {
			return nil, err
		}

		exists, err := db.Exists(ctx, tx, rec.task.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			// Abort on first collision
			return &ImportOutput{
				Errors: []ImportError{{
					Line:    rec.line,
					ID:      rec.task.ID,
					Code:    "ID_COLLISION",
					Message: fmt.Sprintf("task with id %q already exists", rec.task.ID),
				}},
			}, nil
		}

		if err := db.Insert(ctx, tx, rec.task); err != nil {
			return nil, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ImportOutput{Imported: imported, Errors: []ImportError{}}, nil
}

// importModeReplace imports records, overwriting existing tasks with the same ID.
func importModeReplace(ctx context.Context, database *sql.DB, records []parsedRecord, parseErrors []ImportError) (*ImportOutput, error) {
	out := &ImportOutput{
		Skipped: len(parseErrors),
		Errors:  append([]ImportError{}, parseErrors...),
	}

	for _, rec := range records {
		if err := checkCancelled(ctx, "import"); err != nil {
			return nil, err
		}
		if err := db.Upsert(ctx, database, rec.task); err != nil {
			return nil, err
		}
		out.Imported++
	}
	return out, nil
}

// importModeRename imports records, assigning a fresh ULID on ID collision.
func importModeRename(ctx context.Context, database *sql.DB, records []parsedRecord, parseErrors []ImportError) (*ImportOutput, error) {
	out := &ImportOutput{
		Skipped: len(parseErrors),
		Errors:  append([]ImportError{}, parseErrors...),
	}

	for _, rec := range records {
		if err := checkCancelled(ctx, "import"); err != nil {
			return nil, err
		}

		exists, err := db.Exists(ctx, database, rec.task.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			id, err := generateULID()
			if err != nil {
				return nil, errors.NewInternal(err)
			}
			rec.task.ID = id
		}

		if err := db.Insert(ctx, database, rec.task); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    rec.line,
				ID:      rec.task.ID,
				Code:    "INSERT_FAILED",
				Message: fmt.Sprintf("failed to insert: %v", err),
			})
			out.Skipped++
			continue
		}
		out.Imported++
	}
	return out, nil
}
