package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/task"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path           string // optional, default: ~/.flow/exports/tasks-<timestamp>.<format>
	Format         string // jsonl or yaml; inferred from Path when empty
	IncludeDeleted bool
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Format     Format `json:"format"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// recordEncoder writes one export record. Close flushes buffered output.
type recordEncoder interface {
	Encode(v any) error
	Close() error
}

type jsonlEncoder struct{ *json.Encoder }

func (jsonlEncoder) Close() error { return nil }

func newRecordEncoder(w io.Writer, format Format) recordEncoder {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return enc
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return jsonlEncoder{enc}
}

// resolveExportFormat reconciles the requested format with the path's extension.
func resolveExportFormat(path, requested string) (Format, error) {
	if requested == "" && path != "" {
		if f, ok := FormatFromPath(path); ok {
			return f, nil
		}
	}
	format, err := ParseFormat(requested)
	if err != nil {
		return "", err
	}
	if path != "" {
		if f, ok := FormatFromPath(path); ok && f != format {
			return "", errors.NewInvalidRequest(fmt.Sprintf("path extension does not match format %q", format))
		}
	}
	return format, nil
}

// Export writes tasks to a JSONL or YAML file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	format, err := resolveExportFormat(input.Path, input.Format)
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(format, now)
		if err != nil {
			return nil, err
		}
	}

	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := newRecordEncoder(file, format)
	if err := enc.Encode(task.NewExportHeader(exportedAt)); err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := db.StreamForExport(ctx, database, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		if err := checkCancelled(ctx, "export"); err != nil {
			return nil, err
		}

		t, err := db.ScanTaskFromRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := enc.Encode(t); err != nil {
			return nil, errors.NewInternal(err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := enc.Close(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows os.Rename fails when the destination exists. The existing file is
	// kept rather than risking a delete+rename that could lose it.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Format:     format,
		Count:      count,
		ExportedAt: exportedAt,
	}, nil
}

// defaultExportPath generates ~/.flow/exports/tasks-<timestamp>.<format>.
func defaultExportPath(format Format, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("tasks-%s.%s", now.Format("2006-01-02T150405"), format)
	return filepath.Join(dir, filename), nil
}
