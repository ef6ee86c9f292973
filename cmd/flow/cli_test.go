package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/logging"
	"github.com/hpungsan/flow/internal/nlp"
	"github.com/hpungsan/flow/internal/ops"
)

// testNow is a Thursday.
var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// testConfig returns a config that allows temp-dir exports.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.AllowUnsafePaths = true
	return cfg
}

func testParser(t *testing.T, cfg *config.Config) *ops.Parser {
	t.Helper()
	p, err := ops.NewParser(cfg, nlp.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	return p
}

// runCLI runs args against app and returns what the command wrote to stdout.
func runCLI(t *testing.T, app *cli.App, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	err := app.Run(append([]string{"flow"}, args...))
	return buf.String(), err
}

// mustRun is runCLI that fails the test on error and decodes the JSON output.
func mustRun(t *testing.T, app *cli.App, out any, args ...string) {
	t.Helper()
	raw, err := runCLI(t, app, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, raw)
	}
}

// TestParseDuration tests the parseDuration helper function.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int
		expectError bool
	}{
		{name: "valid days", input: "7d", expected: 7},
		{name: "zero days", input: "0d", expected: 0},
		{name: "large number", input: "365d", expected: 365},
		{name: "missing suffix", input: "7", expectError: true},
		{name: "wrong suffix", input: "7h", expectError: true},
		{name: "not a number", input: "xd", expectError: true},
		{name: "negative", input: "-1d", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDuration(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q, got %d", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

// TestCLIParse tests the parse command.
func TestCLIParse(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	app := newCLIApp(database, cfg, testParser(t, cfg), logging.Discard())

	var output ops.ParseOutput
	mustRun(t, app, &output, "parse", "Meeting", "with", "John", "tomorrow", "at", "3pm")

	if output.Task.Title != "Meeting with John" {
		t.Errorf("expected title %q, got %q", "Meeting with John", output.Task.Title)
	}
	if output.Task.DueTime == nil || *output.Task.DueTime != "15:00" {
		t.Errorf("expected due_time 15:00, got %v", output.Task.DueTime)
	}
	if !output.AutoApply {
		t.Error("expected auto_apply=true")
	}

	// Nothing stored
	list, err := ops.List(t.Context(), database, ops.ListInput{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Pagination.Total != 0 {
		t.Errorf("parse stored %d tasks", list.Pagination.Total)
	}
}

// TestCLIAdd tests the add command.
func TestCLIAdd(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	cfg.MinConfidence = 0.5
	app := newCLIApp(database, cfg, testParser(t, cfg), logging.Discard())

	t.Run("add with description", func(t *testing.T) {
		var output ops.AddOutput
		mustRun(t, app, &output, "add", "--description=bring the slides", "Code review every Tuesday at 2pm #work")

		if output.ID == "" {
			t.Error("expected non-empty ID")
		}
		if output.Task.Description == nil || *output.Task.Description != "bring the slides" {
			t.Errorf("unexpected description: %v", output.Task.Description)
		}
		if output.Task.ScheduledFor == nil || *output.Task.ScheduledFor != "2026-10-20" {
			t.Errorf("expected scheduled_for 2026-10-20, got %v", output.Task.ScheduledFor)
		}
	})

	t.Run("low confidence refused", func(t *testing.T) {
		_, err := runCLI(t, app, "add", "xyzzy")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "[LOW_CONFIDENCE]") {
			t.Errorf("expected LOW_CONFIDENCE, got %v", err)
		}
	})

	t.Run("low confidence forced", func(t *testing.T) {
		var output ops.AddOutput
		mustRun(t, app, &output, "add", "--force", "xyzzy")
		if output.Task.Title != "xyzzy" {
			t.Errorf("expected title xyzzy, got %q", output.Task.Title)
		}
	})
}

// TestCLIFetch tests the fetch command.
func TestCLIFetch(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	parser := testParser(t, cfg)
	app := newCLIApp(database, cfg, parser, logging.Discard())

	added, err := ops.Add(t.Context(), database, parser, ops.AddInput{Text: "Buy groceries today high priority"})
	if err != nil {
		t.Fatalf("failed to add test task: %v", err)
	}

	var output ops.FetchOutput
	mustRun(t, app, &output, "fetch", added.ID)

	if output.ID != added.ID {
		t.Errorf("expected ID=%s, got %s", added.ID, output.ID)
	}
	if output.Status != "open" {
		t.Errorf("expected status open, got %s", output.Status)
	}
}

// TestCLIList tests the list command.
func TestCLIList(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	parser := testParser(t, cfg)
	app := newCLIApp(database, cfg, parser, logging.Discard())

	for _, text := range []string{
		"Code review every Tuesday at 2pm #work",
		"Buy groceries today high priority",
		"Meeting with John tomorrow at 3pm",
	} {
		if _, err := ops.Add(t.Context(), database, parser, ops.AddInput{Text: text}); err != nil {
			t.Fatalf("failed to add %q: %v", text, err)
		}
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"all", []string{"list"}, 3},
		{"by tag", []string{"list", "--tag=work"}, 1},
		{"by context", []string{"list", "--context=errands"}, 1},
		{"by date", []string{"list", "--date=2026-10-16"}, 1},
		{"with limit", []string{"list", "--limit=2"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output ops.ListOutput
			mustRun(t, app, &output, tt.args...)
			if len(output.Items) != tt.want {
				t.Errorf("expected %d items, got %d", tt.want, len(output.Items))
			}
		})
	}
}

// TestCLIDone tests the done command on a recurring task.
func TestCLIDone(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	parser := testParser(t, cfg)
	app := newCLIApp(database, cfg, parser, logging.Discard())

	added, err := ops.Add(t.Context(), database, parser, ops.AddInput{Text: "Code review every Tuesday at 2pm #work"})
	if err != nil {
		t.Fatalf("failed to add test task: %v", err)
	}

	var output ops.CompleteOutput
	mustRun(t, app, &output, "done", added.ID)

	if output.AlreadyCompleted {
		t.Error("expected first completion")
	}
	if output.Next == nil || output.Next.ScheduledFor == nil || *output.Next.ScheduledFor != "2026-10-27" {
		t.Errorf("expected next occurrence on 2026-10-27, got %+v", output.Next)
	}

	var again ops.CompleteOutput
	mustRun(t, app, &again, "done", added.ID)
	if !again.AlreadyCompleted || again.Next != nil {
		t.Errorf("second done should be a no-op, got %+v", again)
	}
}

// TestCLIDelete tests the delete command.
func TestCLIDelete(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	parser := testParser(t, cfg)
	app := newCLIApp(database, cfg, parser, logging.Discard())

	added, err := ops.Add(t.Context(), database, parser, ops.AddInput{Text: "Water plants every 3 days"})
	if err != nil {
		t.Fatalf("failed to add test task: %v", err)
	}

	var output ops.DeleteOutput
	mustRun(t, app, &output, "delete", added.ID)
	if !output.Deleted {
		t.Error("expected deleted=true")
	}

	if _, err := runCLI(t, app, "fetch", added.ID); err == nil {
		t.Error("deleted task should not be fetched without --include-deleted")
	}

	var fetched ops.FetchOutput
	mustRun(t, app, &fetched, "fetch", "--include-deleted", added.ID)
	if fetched.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}
}

// TestCLIPurge tests the purge command.
func TestCLIPurge(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	parser := testParser(t, cfg)
	app := newCLIApp(database, cfg, parser, logging.Discard())

	added, err := ops.Add(t.Context(), database, parser, ops.AddInput{Text: "Stretch"})
	if err != nil {
		t.Fatalf("failed to add test task: %v", err)
	}
	if _, err := ops.Delete(t.Context(), database, ops.DeleteInput{ID: added.ID}); err != nil {
		t.Fatalf("failed to delete test task: %v", err)
	}

	var kept ops.PurgeOutput
	mustRun(t, app, &kept, "purge", "--older-than=7d")
	if kept.Purged != 0 {
		t.Errorf("expected nothing older than 7d, purged %d", kept.Purged)
	}

	var output ops.PurgeOutput
	mustRun(t, app, &output, "purge")
	if output.Purged != 1 {
		t.Errorf("expected 1 purged, got %d", output.Purged)
	}
}

// TestCLIExportImport tests the export and import commands.
func TestCLIExportImport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	parser := testParser(t, cfg)
	app := newCLIApp(database, cfg, parser, logging.Discard())

	for _, text := range []string{"Stretch", "Meeting with John tomorrow at 3pm"} {
		if _, err := ops.Add(t.Context(), database, parser, ops.AddInput{Text: text}); err != nil {
			t.Fatalf("failed to add %q: %v", text, err)
		}
	}

	exportPath := filepath.Join(t.TempDir(), "export.yaml")

	var exported ops.ExportOutput
	mustRun(t, app, &exported, "export", "--path="+exportPath)
	if exported.Count != 2 {
		t.Errorf("expected 2 exported, got %d", exported.Count)
	}
	if exported.Format != ops.FormatYAML {
		t.Errorf("expected yaml format from extension, got %s", exported.Format)
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Fatalf("export file not created: %v", err)
	}

	database2, cleanup2 := setupTestDB(t)
	defer cleanup2()
	app2 := newCLIApp(database2, cfg, parser, logging.Discard())

	var imported ops.ImportOutput
	mustRun(t, app2, &imported, "import", "--path="+exportPath)
	if imported.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", imported.Imported)
	}

	// Same file again collides in error mode
	var collided ops.ImportOutput
	mustRun(t, app2, &collided, "import", "--path="+exportPath, "--mode=error")
	if collided.Imported != 0 || len(collided.Errors) == 0 {
		t.Errorf("expected collision, got %+v", collided)
	}
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()
	app := newCLIApp(database, cfg, testParser(t, cfg), logging.Discard())

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"fetch not found", []string{"fetch", "01NOPE"}, "[NOT_FOUND]"},
		{"fetch without id", []string{"fetch"}, "[INVALID_REQUEST]"},
		{"delete not found", []string{"delete", "01NOPE"}, "[NOT_FOUND]"},
		{"done not found", []string{"done", "01NOPE"}, "[NOT_FOUND]"},
		{"invalid duration", []string{"purge", "--older-than=invalid"}, "[INVALID_REQUEST]"},
		{"invalid status", []string{"list", "--status=later"}, "[INVALID_REQUEST]"},
		{"invalid import mode", []string{"import", "--path=x.jsonl", "--mode=merge"}, "[INVALID_REQUEST]"},
		{"invalid port", []string{"serve", "--port=0"}, "[INVALID_REQUEST]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, app, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.HasPrefix(err.Error(), tt.code) {
				t.Errorf("expected %s prefix, got %q", tt.code, err.Error())
			}
		})
	}
}

func TestOutputError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"flow error", errors.NewNotFound("01X"), "[NOT_FOUND] task not found: 01X"},
		{"internal keeps cause", errors.NewInternal(os.ErrPermission), "[INTERNAL] an internal error occurred: permission denied"},
		{"plain error", os.ErrClosed, "file already closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := outputError(tt.err)
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
			exitErr, ok := err.(cli.ExitCoder)
			if !ok || exitErr.ExitCode() != 1 {
				t.Errorf("expected exit code 1, got %v", err)
			}
		})
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"flow"}, expected: false},
		{name: "add command", args: []string{"flow", "add"}, expected: true},
		{name: "done command", args: []string{"flow", "done"}, expected: true},
		{name: "serve command", args: []string{"flow", "serve"}, expected: true},
		{name: "help flag", args: []string{"flow", "--help"}, expected: true},
		{name: "version flag", args: []string{"flow", "--version"}, expected: true},
		{name: "short help flag", args: []string{"flow", "-h"}, expected: true},
		{name: "short version flag", args: []string{"flow", "-v"}, expected: true},
		{name: "unknown command", args: []string{"flow", "snooze"}, expected: false},
		{name: "unknown arg defaults to MCP", args: []string{"flow", "--unknown"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isCLIMode(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"flow"}, expected: false},
		{name: "help flag", args: []string{"flow", "--help"}, expected: true},
		{name: "short help flag", args: []string{"flow", "-h"}, expected: true},
		{name: "version flag", args: []string{"flow", "--version"}, expected: true},
		{name: "short version flag", args: []string{"flow", "-v"}, expected: true},
		{name: "help subcommand", args: []string{"flow", "help"}, expected: true},
		{name: "add command is not help", args: []string{"flow", "add"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isHelpOrVersion(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestReadStdinWithLimit tests the readStdin function respects size limits.
func TestReadStdinWithLimit(t *testing.T) {
	pipeStdin := func(t *testing.T, content string) {
		t.Helper()
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		go func() {
			_, _ = w.WriteString(content)
			w.Close()
		}()
		oldStdin := os.Stdin
		os.Stdin = r
		t.Cleanup(func() { os.Stdin = oldStdin })
	}

	t.Run("within limit", func(t *testing.T) {
		pipeStdin(t, "  call mom tomorrow \n")
		result, err := readStdin(1000)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "call mom tomorrow" {
			t.Errorf("expected trimmed text, got %q", result)
		}
	})

	t.Run("exactly at limit", func(t *testing.T) {
		pipeStdin(t, strings.Repeat("x", 50))
		if _, err := readStdin(50); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("exceeds limit", func(t *testing.T) {
		pipeStdin(t, strings.Repeat("x", 100))
		_, err := readStdin(50)
		if !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("expected INVALID_REQUEST for content exceeding limit, got %v", err)
		}
	})

	t.Run("add reads piped text", func(t *testing.T) {
		database, cleanup := setupTestDB(t)
		defer cleanup()
		cfg := testConfig()
		app := newCLIApp(database, cfg, testParser(t, cfg), logging.Discard())

		pipeStdin(t, "Buy groceries today high priority\n")
		var output ops.AddOutput
		mustRun(t, app, &output, "add")
		if output.Task.Title != "Buy groceries" {
			t.Errorf("expected title %q, got %q", "Buy groceries", output.Task.Title)
		}
	})
}
