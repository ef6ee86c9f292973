package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/nlp"
	"github.com/hpungsan/flow/internal/ops"
)

// testNow is a Thursday.
var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

// testSetup creates a temporary database, config and pinned-clock parser.
func testSetup(t *testing.T) (*sql.DB, *config.Config, *ops.Parser, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	parser, err := ops.NewParser(cfg, nlp.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	cleanup := func() {
		database.Close()
	}

	return database, cfg, parser, cleanup
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// addTask stores text through the handler and returns the new ID.
func addTask(t *testing.T, h *Handlers, text string) string {
	t.Helper()
	result, err := h.HandleAdd(context.Background(), makeRequest(map[string]any{"text": text}))
	if err != nil {
		t.Fatalf("add handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	id, ok := output["id"].(string)
	if !ok || id == "" {
		t.Fatalf("add returned no id: %v", output)
	}
	return id
}

func TestHandleParse(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	ctx := context.Background()

	result, err := h.HandleParse(ctx, makeRequest(map[string]any{
		"text": "Meeting with John tomorrow at 3pm",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	output := parseOutput(t, result)
	parsed := output["task"].(map[string]any)
	if parsed["title"] != "Meeting with John" {
		t.Errorf("title = %v, want %q", parsed["title"], "Meeting with John")
	}
	if parsed["due_time"] != "15:00" {
		t.Errorf("due_time = %v, want 15:00", parsed["due_time"])
	}
	if output["auto_apply"] != true {
		t.Errorf("auto_apply = %v, want true", output["auto_apply"])
	}

	// Nothing is stored by a preview
	list, _ := h.HandleList(ctx, makeRequest(map[string]any{}))
	page := parseOutput(t, list)["pagination"].(map[string]any)
	if page["total"].(float64) != 0 {
		t.Errorf("parse stored a task: total = %v", page["total"])
	}
}

func TestHandleParse_BadArguments(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	result, err := h.HandleParse(context.Background(), makeRequest(map[string]any{"text": 42}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleAdd(t *testing.T) {
	database, cfg, _, cleanup := testSetup(t)
	defer cleanup()

	cfg.MinConfidence = 0.5
	parser, err := ops.NewParser(cfg, nlp.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	h := NewHandlers(database, cfg, parser)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "add confident task",
			args:      map[string]any{"text": "Meeting with John tomorrow at 3pm"},
			wantError: false,
		},
		{
			name:      "add with description",
			args:      map[string]any{"text": "Buy groceries today high priority", "description": "- milk\n- eggs"},
			wantError: false,
		},
		{
			name:      "add without text",
			args:      map[string]any{},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "add low confidence",
			args:      map[string]any{"text": "xyzzy"},
			wantError: true,
			errorCode: "LOW_CONFIDENCE",
		},
		{
			name:      "add low confidence with force",
			args:      map[string]any{"text": "xyzzy", "force": true},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleAdd(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

func TestHandleFetch(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	ctx := context.Background()
	id := addTask(t, h, "Code review every Tuesday at 2pm #work")

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "fetch by id",
			args:      map[string]any{"id": id},
			wantError: false,
		},
		{
			name:      "fetch missing id",
			args:      map[string]any{},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "fetch unknown id",
			args:      map[string]any{"id": "01UNKNOWN"},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleFetch(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
				return
			}

			output := parseOutput(t, result)
			if output["id"] != id {
				t.Errorf("id = %v, want %v", output["id"], id)
			}
			if output["status"] != "open" {
				t.Errorf("status = %v, want open", output["status"])
			}
			if output["scheduled_for"] != "2026-10-20" {
				t.Errorf("scheduled_for = %v, want 2026-10-20", output["scheduled_for"])
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	ctx := context.Background()

	addTask(t, h, "Code review every Tuesday at 2pm #work")
	addTask(t, h, "Buy groceries today high priority")
	addTask(t, h, "Meeting with John tomorrow at 3pm")

	tests := []struct {
		name      string
		args      map[string]any
		wantCount int
		wantError bool
	}{
		{name: "all", args: map[string]any{}, wantCount: 3},
		{name: "by tag", args: map[string]any{"tag": "#work"}, wantCount: 1},
		{name: "by context", args: map[string]any{"context": "errands"}, wantCount: 1},
		{name: "by date", args: map[string]any{"date": "2026-10-16"}, wantCount: 1},
		{name: "with limit", args: map[string]any{"limit": 2}, wantCount: 2},
		{name: "bad status", args: map[string]any{"status": "someday"}, wantError: true},
		{name: "bad date", args: map[string]any{"date": "tomorrow"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleList(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				assertErrorCode(t, result, "INVALID_REQUEST")
				return
			}

			output := parseOutput(t, result)
			items := output["items"].([]any)
			if len(items) != tt.wantCount {
				t.Errorf("got %d items, want %d", len(items), tt.wantCount)
			}
			if output["sort"] != "updated_at_desc" {
				t.Errorf("sort = %v, want updated_at_desc", output["sort"])
			}
		})
	}
}

func TestHandleComplete(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	ctx := context.Background()
	id := addTask(t, h, "Code review every Tuesday at 2pm #work")

	result, err := h.HandleComplete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["already_completed"] != false {
		t.Errorf("already_completed = %v, want false", output["already_completed"])
	}
	next, ok := output["next"].(map[string]any)
	if !ok {
		t.Fatalf("expected next occurrence, got %v", output)
	}
	if next["scheduled_for"] != "2026-10-27" {
		t.Errorf("next scheduled_for = %v, want 2026-10-27", next["scheduled_for"])
	}

	// Completing again is a no-op
	result, _ = h.HandleComplete(ctx, makeRequest(map[string]any{"id": id}))
	output = parseOutput(t, result)
	if output["already_completed"] != true {
		t.Errorf("already_completed = %v, want true", output["already_completed"])
	}
	if _, ok := output["next"]; ok {
		t.Error("second completion should not schedule another occurrence")
	}

	result, _ = h.HandleComplete(ctx, makeRequest(map[string]any{"id": "01UNKNOWN"}))
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleDelete(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	ctx := context.Background()
	id := addTask(t, h, "Water plants every 3 days")

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["deleted"] != true {
		t.Errorf("deleted = %v, want true", output["deleted"])
	}

	// Hidden from a normal fetch
	fetchResult, _ := h.HandleFetch(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, fetchResult, "NOT_FOUND")

	// Visible with include_deleted
	fetchResult, _ = h.HandleFetch(ctx, makeRequest(map[string]any{"id": id, "include_deleted": true}))
	if fetchResult.IsError {
		t.Errorf("expected deleted task with include_deleted, got: %v", extractErrorMessage(fetchResult))
	}

	// Deleting twice is not found
	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandlePurge(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	ctx := context.Background()
	id := addTask(t, h, "Water plants every 3 days")

	if _, err := h.HandleDelete(ctx, makeRequest(map[string]any{"id": id})); err != nil {
		t.Fatalf("setup delete failed: %v", err)
	}

	// Deleted just now, so nothing is older than a day
	result, err := h.HandlePurge(ctx, makeRequest(map[string]any{"older_than_days": 1}))
	if err != nil {
		t.Fatalf("purge handler returned error: %v", err)
	}
	if got := parseOutput(t, result)["purged"]; got != float64(0) {
		t.Errorf("purged = %v, want 0", got)
	}

	result, _ = h.HandlePurge(ctx, makeRequest(map[string]any{}))
	if got := parseOutput(t, result)["purged"]; got != float64(1) {
		t.Errorf("purged = %v, want 1", got)
	}

	// Gone even with include_deleted
	fetchResult, _ := h.HandleFetch(ctx, makeRequest(map[string]any{"id": id, "include_deleted": true}))
	if !fetchResult.IsError {
		t.Error("purged task should not be found")
	}

	result, _ = h.HandlePurge(ctx, makeRequest(map[string]any{"older_than_days": -1}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleExportImport(t *testing.T) {
	for _, name := range []string{"export.jsonl", "export.yaml"} {
		t.Run(name, func(t *testing.T) {
			database, cfg, parser, cleanup := testSetup(t)
			defer cleanup()

			h := NewHandlers(database, cfg, parser)
			ctx := context.Background()
			id := addTask(t, h, "Code review every Tuesday at 2pm #work")

			exportPath := filepath.Join(t.TempDir(), name)
			exportResult, err := h.HandleExport(ctx, makeRequest(map[string]any{"path": exportPath}))
			if err != nil {
				t.Fatalf("export handler returned error: %v", err)
			}
			exportOutput := parseOutput(t, exportResult)
			if exportOutput["count"] != float64(1) {
				t.Errorf("count = %v, want 1", exportOutput["count"])
			}

			if _, err := os.Stat(exportPath); os.IsNotExist(err) {
				t.Fatal("export file not created")
			}

			// Import into a fresh database
			database2, cfg2, parser2, cleanup2 := testSetup(t)
			defer cleanup2()
			h2 := NewHandlers(database2, cfg2, parser2)

			importResult, err := h2.HandleImport(ctx, makeRequest(map[string]any{
				"path": exportPath,
				"mode": "error",
			}))
			if err != nil {
				t.Fatalf("import handler returned error: %v", err)
			}
			importOutput := parseOutput(t, importResult)
			if importOutput["imported"] != float64(1) {
				t.Errorf("imported = %v, want 1", importOutput["imported"])
			}

			fetchResult, _ := h2.HandleFetch(ctx, makeRequest(map[string]any{"id": id}))
			if fetchResult.IsError {
				t.Error("imported task not found")
			}
		})
	}
}

func TestHandleExport_FormatMismatch(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	result, err := h.HandleExport(context.Background(), makeRequest(map[string]any{
		"path":   filepath.Join(t.TempDir(), "out.jsonl"),
		"format": "yaml",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleImport_Errors(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, parser)
	ctx := context.Background()

	result, _ := h.HandleImport(ctx, makeRequest(map[string]any{
		"path": filepath.Join(t.TempDir(), "missing.jsonl"),
	}))
	assertErrorCode(t, result, "FILE_NOT_FOUND")

	result, _ = h.HandleImport(ctx, makeRequest(map[string]any{
		"path": filepath.Join(t.TempDir(), "x.jsonl"),
		"mode": "merge",
	}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestServerRegistration(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	s := NewServer(database, cfg, parser, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"task_parse",
		"task_add",
		"task_fetch",
		"task_list",
		"task_complete",
		"task_delete",
		"task_purge",
		"task_export",
		"task_import",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = []string{"task_purge", "task_import"}
	s := NewServer(database, cfg, parser, "test")
	tools := s.ListTools()

	// Should have 7 tools (9 - 2 disabled)
	if len(tools) != 7 {
		t.Errorf("registered tool count = %d, want 7", len(tools))
	}

	for _, name := range []string{"task_purge", "task_import"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}

	for _, name := range []string{"task_add", "task_fetch", "task_list"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("core tool %q should be registered", name)
		}
	}
}

func TestServerRegistration_DisabledType(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTypes = []string{"task"}
	s := NewServer(database, cfg, parser, "test")

	if n := len(s.ListTools()); n != 0 {
		t.Errorf("registered tool count = %d, want 0 (type disabled)", n)
	}
}

func TestServerRegistration_DuplicateDisabled(t *testing.T) {
	database, cfg, parser, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = []string{"task_purge", "task_purge", "task_purge"}
	s := NewServer(database, cfg, parser, "test")
	tools := s.ListTools()

	if len(tools) != 8 {
		t.Errorf("registered tool count = %d, want 8", len(tools))
	}
	if _, ok := tools["task_purge"]; ok {
		t.Error("disabled tool 'task_purge' should not be registered")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{name: "all valid", input: []string{"task_purge", "task_delete"}, wantLen: 0},
		{name: "one unknown", input: []string{"task_purge", "fake_tool"}, wantLen: 1},
		{name: "unprefixed names", input: []string{"add", "snooze"}, wantLen: 2},
		{name: "empty list", input: []string{}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	if unknown := ValidateDisabledTypes([]string{"task"}); len(unknown) != 0 {
		t.Errorf("unexpected unknown types: %v", unknown)
	}
	unknown := ValidateDisabledTypes([]string{"task", "note"})
	if len(unknown) != 1 || unknown[0] != "note" {
		t.Errorf("ValidateDisabledTypes() = %v, want [note]", unknown)
	}
}

func TestGetTypeForTool(t *testing.T) {
	tests := map[string]string{
		"task_add":      "task",
		"task_complete": "task",
		"purge":         "",
		"_hidden":       "",
	}
	for in, want := range tests {
		if got := GetTypeForTool(in); got != want {
			t.Errorf("GetTypeForTool(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandTypesToTools(t *testing.T) {
	if got := ExpandTypesToTools(nil); got != nil {
		t.Errorf("ExpandTypesToTools(nil) = %v, want nil", got)
	}

	got := ExpandTypesToTools([]string{"task"})
	all := AllToolNames()
	sort.Strings(got)
	sort.Strings(all)
	if strings.Join(got, ",") != strings.Join(all, ",") {
		t.Errorf("ExpandTypesToTools([task]) = %v, want %v", got, all)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()

	if len(names) != 9 {
		t.Errorf("AllToolNames() returned %d names, want 9", len(names))
	}

	unknown := ValidateDisabledTools(names)
	if len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(context.Background(), errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
	if strings.Contains(errObj["message"].(string), "secret.db") {
		t.Fatal("internal cause leaked into message")
	}
}

func TestErrorResult_PlainErrorIsInternal(t *testing.T) {
	r := errorResult(context.Background(), fmt.Errorf("boom"))

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if errObj["status"] != float64(500) {
		t.Errorf("status=%v, want 500", errObj["status"])
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrappedErr := fmt.Errorf("line 3: %w", errors.NewInvalidRequest("title is required"))

	r := errorResult(context.Background(), wrappedErr)
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInvalidRequest) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrInvalidRequest)
	}
	if msg := errObj["message"].(string); msg != "line 3: title is required" {
		t.Errorf("message = %q, want wrapper context kept", msg)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(context.Background(), errors.NewNotFound("abc"))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error %s, got success", expectedCode)
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
